package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

// Recover converts a handler panic into the JSON 500 response. It sits inside
// RequestLog so the access record still carries the resulting status code.
func Recover() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				hlog.FromRequest(r).Error().
					Interface("panic", rec).
					Msg("unhandled_exception")

				id := ""
				if rid, ok := hlog.IDFromRequest(r); ok {
					id = rid.String()
				}

				body, err := json.Marshal(struct {
					Error     string `json:"error"`
					RequestID string `json:"request_id"`
				}{"Internal Server Error", id})
				if err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write(body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
