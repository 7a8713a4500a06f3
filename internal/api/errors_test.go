package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestToAPIError(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name    string
		status  int
		message string
		errs    []error
		want    APIError
	}{
		{
			name:   "domain error keeps code and message",
			status: http.StatusInternalServerError,
			errs:   []error{domainerrors.Forbidden("You can only delete items you added")},
			want:   APIError{status: http.StatusForbidden, Code: "FORBIDDEN", Message: "You can only delete items you added"},
		},
		{
			name:   "wrapped domain error",
			status: http.StatusInternalServerError,
			errs:   []error{fmt.Errorf("create: %w", domainerrors.Conflict("Username already taken"))},
			want:   APIError{status: http.StatusConflict, Code: "CONFLICT", Message: "Username already taken"},
		},
		{
			name:   "store not found",
			status: http.StatusInternalServerError,
			errs:   []error{store.ErrNotFound.WithMessage("item missing")},
			want:   APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "item missing"},
		},
		{
			name:    "unknown error hides cause",
			status:  http.StatusInternalServerError,
			message: "unexpected error occurred",
			errs:    []error{fmt.Errorf("sqlite: disk I/O error")},
			want:    APIError{status: http.StatusInternalServerError, Code: "INTERNAL", Message: internalErrorMessage},
		},
		{
			name:   "internal domain error hides message",
			status: http.StatusInternalServerError,
			errs:   []error{domainerrors.Wrap(fmt.Errorf("disk on fire"), domainerrors.CodeInternal, "secret detail")},
			want:   APIError{status: http.StatusInternalServerError, Code: "INTERNAL", Message: internalErrorMessage},
		},
		{
			name:    "rate limit",
			status:  http.StatusTooManyRequests,
			message: "slow down",
			want:    APIError{status: http.StatusTooManyRequests, Code: "RATE_LIMITED", Message: "slow down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toAPIError(logger, tt.status, tt.message, tt.errs...)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestToAPIError_HumaValidation(t *testing.T) {
	got := toAPIError(slog.New(slog.DiscardHandler), http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "body.title", Message: "expected string"},
		&huma.ErrorDetail{Location: "body.password", Message: "expected length >= 2"},
	)

	require.NotNil(t, got)
	assert.Equal(t, http.StatusBadRequest, got.GetStatus())
	assert.Equal(t, "VALIDATION", got.Code)
	assert.Equal(t, "Invalid request: password expected length >= 2; title expected string", got.Message)
	assert.Equal(t, map[string]string{"title": "expected string", "password": "expected length >= 2"}, got.Details)
}
