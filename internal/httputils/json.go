package httputils

import (
	"encoding/json"
	"net/http"

	"coffeeshop/internal/observability/logging"
)

// ErrorEnvelope is the body of every failed response
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// WriteJSON encodes body as the JSON response with the given status
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		if logger := logging.LoggerFromContext(r.Context()); logger != nil {
			logger.Error("Failed to write json response", logging.Err(err))
		}
	}
}

// WriteError writes the uniform {success, error, message} envelope
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, ErrorEnvelope{
		Success: false,
		Error:   status,
		Message: message,
	})
}
