package server

import (
	"encoding/json"
	"log"
	"net/http"
)

// envelope is the uniform response shape for every API endpoint.
// Exactly one of Data or Error is populated.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes shared across handlers.
const (
	codeValidationError = "VALIDATION_ERROR"
	codeEmailTaken      = "EMAIL_TAKEN"
	codeInvalidLogin    = "INVALID_CREDENTIALS"
	codeAccountRejected = "ACCOUNT_REJECTED"
	codeUnauthorized    = "UNAUTHORIZED"
	codeNotFound        = "NOT_FOUND"
	codeInternalError   = "INTERNAL_ERROR"
)

// respond writes a success envelope
func respond(w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(w, status, envelope{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// respondError writes a failure envelope
func respondError(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, envelope{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Printf("write response: %v", err)
	}
}
