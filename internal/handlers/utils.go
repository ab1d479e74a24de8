package handlers

import (
	"encoding/json"
	"net/http"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
	statusError   = "error"
	statusOK      = "ok"
)

// StatusResponse is the common response envelope.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeFailed reports a client-side failure (4xx).
func writeFailed(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, StatusResponse{Status: statusFailed, Message: message})
}

// writeServerError reports an unexpected failure. The message is generic;
// details belong in the logs only.
func writeServerError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, StatusResponse{Status: statusError, Message: message})
}

// Health reports service liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: statusOK})
}
