package client

import (
	"encoding/json"
	"fmt"

	"github.com/cardsense/cardsense/internal/apperrors"
)

// Response is the result of every domain function.
// Success is true iff Error is nil; Data is only meaningful on success.
// Build values with succeed and fail, never by hand.
type Response[T any] struct {
	Success bool
	Data    T
	Message string
	Error   *ErrorDetail
}

// ErrorDetail describes a failed call.
// Message is safe to show to the end user verbatim, Details keeps whatever structure the backend
// sent (field level validation errors etc).
type ErrorDetail struct {
	Code       apperrors.ErrorCode `json:"code"`
	Message    string              `json:"message"`
	Details    any                 `json:"details,omitempty"`
	StatusCode int                 `json:"-"` // 0 when no HTTP response was received
}

func (e *ErrorDetail) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func succeed[T any](data T, message string) Response[T] {
	return Response[T]{Success: true, Data: data, Message: message}
}

func fail[T any](detail *ErrorDetail) Response[T] {
	return Response[T]{Success: false, Error: detail}
}

// Err returns the failure as an error, or nil on success
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	return r.Error
}

// MarshalJSON writes the tagged union form {success, data, message?} or {success, error}.
func (r Response[T]) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool         `json:"success"`
			Error   *ErrorDetail `json:"error"`
		}{false, r.Error})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Data    T      `json:"data"`
		Message string `json:"message,omitempty"`
	}{true, r.Data, r.Message})
}
