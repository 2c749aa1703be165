// Package response provides shared JSON response helpers for HTTP handlers.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/namkata/imagestore/internal/storage"
)

// Envelope is the standard API response envelope.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo pairs a machine-readable error kind with a human-readable
// message, the same shape used in per-file upload results.
type ErrorInfo struct {
	Kind    storage.ErrKind `json:"kind"`
	Message string          `json:"message"`
}

// JSON writes a JSON-encoded payload with the given HTTP status code.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a 200 response with data.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error writes an error response with the given status, kind and message.
func Error(w http.ResponseWriter, status int, kind storage.ErrKind, message string) {
	JSON(w, status, Envelope{Success: false, Error: &ErrorInfo{Kind: kind, Message: message}})
}

// BadRequest writes a 400 validation error response.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, storage.ErrKindValidation, message)
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, storage.ErrKindNotFound, message)
}

// ReadFailure writes a 502 response for an upstream storage read failure.
func ReadFailure(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadGateway, storage.ErrKindRead, message)
}

// InternalError writes a 500 response with a generic message.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, storage.ErrKindWrite, "internal server error")
}
