// Package httputil centralizes JSON response writing so handlers stay small
// and error payloads keep a single shape across the service.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the wire shape for error payloads.
type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError writes a JSON error payload. Descriptions are client-facing;
// internal detail belongs in logs and the audit trail, never here. Server-side
// statuses (5xx) omit the description.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	resp := errorResponse{Error: code}
	if status < http.StatusInternalServerError {
		resp.Description = description
	}
	WriteJSON(w, status, resp)
}
