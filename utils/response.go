package utils

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body for every endpoint, success or
// failure.
type Envelope struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}

// RespondWithJSON writes any payload as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// WriteEnvelope wraps a payload in the response envelope. A nil result is
// sent as an empty object rather than null.
func WriteEnvelope(w http.ResponseWriter, code int, message string, result any) {
	if result == nil {
		result = map[string]any{}
	}
	RespondWithJSON(w, code, Envelope{
		Code:    code,
		Success: code >= 200 && code < 300,
		Message: message,
		Result:  result,
	})
}
