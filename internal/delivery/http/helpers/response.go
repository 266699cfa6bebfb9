package helpers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JCHEPO/kiu/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodeInternalError = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteServiceError maps a service error to the envelope. Domain sentinels get
// their canonical status; anything else is logged and becomes a 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidIndex):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrEventFull):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "event is full")
	case errors.Is(err, domain.ErrAlreadyJoined):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "already joined")
	case errors.Is(err, domain.ErrAlreadyClaimed):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "item already claimed")
	case errors.Is(err, domain.ErrCreatorCannotLeave):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "creator cannot leave the event")
	case errors.Is(err, domain.ErrTooCloseToEdit):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "event date is too close to change")
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "email already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}
