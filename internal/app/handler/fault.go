package handler

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"opslab/internal/app/apperr"
	"opslab/internal/app/logger"
)

const defaultTimeoutSeconds = 2

type FaultHandler struct {
	timeoutMax time.Duration
}

func NewFaultHandler(timeoutMax time.Duration) *FaultHandler {
	return &FaultHandler{
		timeoutMax: timeoutMax,
	}
}

// Fail reproduces the unhandled-exception incident class. The panic is
// recovered and converted to a 500 by the middleware chain.
func (h *FaultHandler) Fail(w http.ResponseWriter, r *http.Request) {
	l := logger.Get(r.Context(), "Handler.Fault.Fail")
	l.Debug().Send()

	panic("simulated failure")
}

// Timeout reproduces the slow-dependency incident class: sleep for the
// requested number of seconds, then respond.
func (h *FaultHandler) Timeout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := logger.Get(ctx, "Handler.Fault.Timeout")
	l.Debug().Send()

	seconds := float64(defaultTimeoutSeconds)
	if raw := r.URL.Query().Get("seconds"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			l.Debug().Err(err).Msg("Invalid seconds")
			WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
			return
		}
		seconds = v
	}

	d := time.Duration(seconds * float64(time.Second))
	if math.IsNaN(seconds) || seconds < 0 || d > h.timeoutMax || d < 0 {
		l.Debug().Float64("seconds", seconds).Msg("Seconds out of bounds")
		WriteError(w, apperr.ErrInvalidInput, http.StatusBadRequest)
		return
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
		l.Debug().Msg("Request aborted during sleep")
		return
	}

	WriteResponse(w, struct {
		Slept float64 `json:"slept"`
	}{seconds}, http.StatusOK)
}
