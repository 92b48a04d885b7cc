package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
)

const internalErrorMessage = "an internal error occurred"

var renderedErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ngo_directory",
	Subsystem: "http",
	Name:      "errors_total",
	Help:      "Error responses rendered by the error handler.",
}, []string{"status", "code"})

// ErrorHandlerOption configures ErrorHandler.
type ErrorHandlerOption func(*errorHandlerOptions)

type errorHandlerOptions struct {
	maskInternal bool
}

// MaskInternalErrors replaces the message of untyped 500 errors with a
// generic one. The cause is still logged.
func MaskInternalErrors() ErrorHandlerOption {
	return func(o *errorHandlerOptions) {
		o.maskInternal = true
	}
}

// ErrorHandler renders the last error forwarded with c.Error.
// It runs after the rest of the chain, so it must be registered ahead of
// recovery and every route handler. If a response was already written
// the error is logged and the response left alone.
func ErrorHandler(opts ...ErrorHandlerOption) gin.HandlerFunc {
	var options errorHandlerOptions
	for _, opt := range opts {
		opt(&options)
	}

	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}

		ctx := c.Request.Context()
		logger := logging.FromContext(ctx)

		if c.Writer.Written() {
			logger.Warn("error after response was written",
				slog.String("error", last.Err.Error()),
				slog.Int("status", c.Writer.Status()),
			)

			return
		}

		apiErr := dto.AsAPIError(last.Err)
		status, code, body := renderError(apiErr, options.maskInternal)

		attrs := []any{
			slog.Int("status", status),
			slog.String("code", code),
			slog.String("error", apiErr.Error()),
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Debug("request rejected", attrs...)
		}

		renderedErrors.WithLabelValues(strconv.Itoa(status), code).Inc()
		c.JSON(status, body)
	}
}

// renderError picks the status, code and body for an API error.
func renderError(e *dto.APIError, maskInternal bool) (int, string, any) {
	switch e.Code {
	case dto.CodeBadUserInput:
		status := statusOr(e.Status, http.StatusUnprocessableEntity)
		if isJSONArray(e.Payload) {
			return status, e.Code, gin.H{"errors": payloadOrEmpty(e.Payload)}
		}

		return status, e.Code, payloadOrEmpty(e.Payload)

	case dto.CodeBadInput:
		return statusOr(e.Status, http.StatusUnprocessableEntity), e.Code, gin.H{"errors": payloadOrEmpty(e.Payload)}
	}

	status, code := e.Status, e.Code
	if status == 0 || code == "" {
		mappedStatus, mappedCode := MapDomainError(e.Unwrap())
		status = statusOr(status, mappedStatus)

		if code == "" {
			code = mappedCode
		}
	}

	message := e.Message
	if maskInternal && status == http.StatusInternalServerError && e.Code == "" {
		message = internalErrorMessage
	}

	return status, code, dto.NewErrorResponse(code, message)
}

// MapDomainError maps a domain error to an HTTP status and error code.
// Unknown errors map to 500.
func MapDomainError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, dto.CodeInternal
	case domain.IsNotFound(err):
		return http.StatusNotFound, dto.CodeNotFound
	case domain.IsConflict(err):
		return http.StatusBadRequest, dto.CodeAlreadyExist
	case domain.IsValidation(err):
		return http.StatusUnprocessableEntity, dto.CodeBadUserInput
	case domain.IsForbidden(err):
		return http.StatusForbidden, dto.CodeForbidden
	case domain.IsUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, dto.CodeUnavailable
	default:
		return http.StatusInternalServerError, dto.CodeInternal
	}
}

func statusOr(status, fallback int) int {
	if status == 0 {
		return fallback
	}

	return status
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) > 0 && trimmed[0] == '['
}

func payloadOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("{}")
	}

	return raw
}
