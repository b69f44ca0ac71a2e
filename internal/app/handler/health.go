package handler

import (
	"net/http"
)

// Health liveness probe
func Health(w http.ResponseWriter, r *http.Request) {
	WriteResponse(w, struct {
		Status string `json:"status"`
	}{"ok"}, http.StatusOK)
}
