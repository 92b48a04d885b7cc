// Package dto provides Data Transfer Objects for HTTP request/response handling.
package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes for machine-readable error identification.
const (
	// CodeBadUserInput marks a batch of field validation failures.
	CodeBadUserInput = "BAD_USER_INPUT"

	// CodeBadInput marks a single malformed input, such as an unparsable body.
	CodeBadInput = "BAD_INPUT"

	// CodeAlreadyExist indicates a unique key is already taken.
	CodeAlreadyExist = "ALREADY_EXIST"

	// CodeInvalidOrganizationID indicates a malformed or missing organization id.
	CodeInvalidOrganizationID = "INVALID_ORGANIZATION_ID"

	// CodeOrganizationNotFound indicates the organization does not exist.
	CodeOrganizationNotFound = "ORGANIZATION_NOT_FOUND"

	// CodeInvalidUserID indicates a malformed or missing user id.
	CodeInvalidUserID = "INVALID_USER_ID"

	// CodeUserNotFound indicates the user does not exist.
	CodeUserNotFound = "USER_NOT_FOUND"

	CodeNotFound    = "NOT_FOUND"
	CodeForbidden   = "FORBIDDEN"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal    = "INTERNAL_ERROR"
)

// APIError is an error that knows how it should be rendered.
// Handlers create it and forward it with c.Error; the error handler
// middleware renders it exactly once.
type APIError struct {
	// Code is the discriminator, e.g. BAD_USER_INPUT or ALREADY_EXIST.
	Code string

	// Status is the HTTP status. Zero lets the error handler choose.
	Status int

	// Message is the human-readable message.
	Message string

	// Payload is the raw JSON body for BAD_USER_INPUT and BAD_INPUT errors.
	Payload json.RawMessage

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Code
}

// Unwrap returns the wrapped cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// NewUserInputError creates a BAD_USER_INPUT error. payload is usually a
// []FieldError; an object payload is rendered unwrapped.
func NewUserInputError(status int, payload any) *APIError {
	return newPayloadError(CodeBadUserInput, status, "request validation failed", payload)
}

// NewBadInputError creates a BAD_INPUT error. The payload is always rendered
// under the errors key.
func NewBadInputError(status int, payload any) *APIError {
	return newPayloadError(CodeBadInput, status, "bad input", payload)
}

// NewCustomError creates an error with an explicit code, status and message.
func NewCustomError(code string, status int, message string) *APIError {
	return &APIError{Code: code, Status: status, Message: message}
}

// NewForbiddenError creates a 403 FORBIDDEN error.
func NewForbiddenError(message string) *APIError {
	return NewCustomError(CodeForbidden, http.StatusForbidden, message)
}

// NewGenericError wraps an untyped error. Status and code are left for the
// error handler to derive from the cause.
func NewGenericError(err error) *APIError {
	return &APIError{Message: err.Error(), cause: err}
}

// AsAPIError returns err as an *APIError, wrapping untyped errors.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return NewGenericError(err)
}

func newPayloadError(code string, status int, message string, payload any) *APIError {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw, _ = json.Marshal(map[string]string{"message": fmt.Sprintf("unserializable payload: %v", err)})
	}

	return &APIError{Code: code, Status: status, Message: message, Payload: raw}
}

// ErrorResponse is the fallback error envelope: {"errors":{"message":...}}.
type ErrorResponse struct {
	Errors ErrorDetail `json:"errors"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewErrorResponse creates a fallback error response.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Errors: ErrorDetail{Code: code, Message: message}}
}

// FieldErrorsResponse documents the BAD_USER_INPUT body shape.
type FieldErrorsResponse struct {
	Errors []FieldError `json:"errors"`
}
