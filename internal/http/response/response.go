// Package response writes the JSON envelope used by every bookshelf
// endpoint. Huma operations get it through the API transformer; plain chi
// handlers such as the 404 fallback write it directly.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Version is the envelope format version, sent as "v".
const Version = 1

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data any) Envelope {
	return Envelope{Version: Version, Success: true, Data: data}
}

// Fail builds an error envelope.
func Fail(code, message string, details any) Envelope {
	return Envelope{Version: Version, Success: false, Error: message, Code: code, Details: details}
}

// JSON writes data in a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	write(w, status, OK(data), logger)
}

// Error writes an error envelope.
func Error(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	write(w, status, Fail(code, message, nil), logger)
}

// NotFound writes a 404 for unknown routes.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message, logger)
}

// MethodNotAllowed writes a 405.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, "BAD_REQUEST", "Method not allowed", logger)
}

// InternalError writes a 500 with a generic message.
func InternalError(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusInternalServerError, "INTERNAL", "Internal server error", logger)
}

func write(w http.ResponseWriter, status int, envelope Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}
