// Package response writes the JSON bodies returned by every API endpoint.
//
// Failures always use the envelope {"success":false,"message":...}; field
// validation adds an "errors" map. Successful endpoints either use the same
// envelope or, where clients expect a bare object (login, cart view), JSON.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// JSON writes body as-is with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with data.
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created sends a 201 envelope with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Message sends a 200 envelope carrying only a human-readable message.
func Message(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, envelope{Success: true, Message: message})
}

// Error sends a failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, envelope{Success: false, Message: message})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	JSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Access denied")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "Not found")
}
