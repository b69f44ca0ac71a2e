package middleware

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/zerolog/hlog"
	"opslab/internal/app/logger"
)

// RequestLog wraps next with per-request instrumentation: a process-unique
// request id (mirrored in the X-Request-Id header), wall-clock timing, and
// exactly one access record per request. The record is emitted after the
// handler completes, so recovered panics are observed with their 500.
func RequestLog(l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chain := alice.New(
			hlog.NewHandler(l.Logger),
			hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
				hlog.FromRequest(r).Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status_code", status).
					Float64("duration_ms", float64(duration)/float64(time.Millisecond)).
					Msg("request_completed")
			}),
			hlog.RemoteAddrHandler("client_ip"),
			hlog.RequestIDHandler("request_id", "X-Request-Id"),
		)

		return chain.Then(next)
	}
}
