package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

const internalErrorMessage = "Internal server error"

// APIError implements huma.StatusError so domain errors keep their code,
// message, and details on the wire.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler makes huma build every error through toAPIError.
// Call it after creating the huma.API but before registering routes.
func RegisterErrorHandler(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		return toAPIError(logger, status, message, errs...)
	}
}

func toAPIError(logger *slog.Logger, status int, message string, errs ...error) *APIError {
	var fields []*huma.ErrorDetail

	for _, err := range errs {
		if err == nil {
			continue
		}

		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			if domainerrors.Is(domainErr, domainerrors.ErrInternal) {
				logger.Error("Request failed", "error", err)
				break
			}
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}

		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.HTTPCode() != http.StatusInternalServerError {
			return &APIError{
				status:  storeErr.HTTPCode(),
				Code:    statusToCode(storeErr.HTTPCode()),
				Message: storeErr.Message,
			}
		}

		var detail *huma.ErrorDetail
		if errors.As(err, &detail) {
			fields = append(fields, detail)
			continue
		}

		if status >= http.StatusInternalServerError || status == 0 {
			logger.Error("Request failed", "error", err)
		}
	}

	// Request validation failures from huma.
	if status == http.StatusUnprocessableEntity {
		return validationError(fields)
	}

	if status >= http.StatusInternalServerError || status == 0 {
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status == http.StatusInternalServerError {
			message = internalErrorMessage
		}
	}

	return &APIError{
		status:  status,
		Code:    statusToCode(status),
		Message: message,
	}
}

func validationError(fields []*huma.ErrorDetail) *APIError {
	details := make(map[string]string, len(fields))
	parts := make([]string, 0, len(fields))

	for _, f := range fields {
		loc := strings.TrimPrefix(f.Location, "body.")
		details[loc] = f.Message
		parts = append(parts, loc+" "+f.Message)
	}
	sort.Strings(parts)

	message := "Invalid request"
	if len(parts) > 0 {
		message += ": " + strings.Join(parts, "; ")
	}

	apiErr := &APIError{
		status:  http.StatusBadRequest,
		Code:    string(domainerrors.CodeValidation),
		Message: message,
	}
	if len(details) > 0 {
		apiErr.Details = details
	}
	return apiErr
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
