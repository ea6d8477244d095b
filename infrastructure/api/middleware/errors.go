package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/internal/database"
)

// APIError is a request-level error carrying its HTTP status code.
type APIError struct {
	code    int
	message string
}

// NewAPIError creates an APIError with the given status code.
func NewAPIError(code int, format string, args ...any) *APIError {
	return &APIError{code: code, message: fmt.Sprintf(format, args...)}
}

// BadRequest creates a 400 APIError.
func BadRequest(format string, args ...any) *APIError {
	return NewAPIError(http.StatusBadRequest, format, args...)
}

// Error implements the error interface.
func (e *APIError) Error() string { return e.message }

// Code returns the HTTP status code.
func (e *APIError) Code() int { return e.code }

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to an HTTP status and writes a JSON error body.
//
// Domain validation failures map to 400, missing entities to 404,
// everything else to 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
	case errors.Is(err, document.ErrUnsupportedFormat),
		errors.Is(err, document.ErrNoChunks):
		status = http.StatusBadRequest
	case errors.Is(err, document.ErrNotFound),
		errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	}

	if logger != nil {
		logger.Error("request error",
			"request_id", GetRequestID(r.Context()),
			"status", status,
			"path", r.URL.Path,
			"error", err.Error(),
		)
	}

	WriteJSON(w, status, ErrorResponse{Error: err.Error()})
}
