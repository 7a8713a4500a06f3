package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Forbidden("You can only delete items you added")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("delete item: %w", err)
	assert.True(t, Is(wrapped, ErrForbidden))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, CodeInternal, "failed to create user")

	assert.Equal(t, "failed to create user: disk full", err.Error())
	assert.True(t, Is(err, cause))
	assert.True(t, Is(err, ErrInternal))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}


func TestError_WrapfFormatsMessage(t *testing.T) {
	err := Wrapf(stderrors.New("database is locked"), CodeInternal, "create %s %q", "tag", "go")

	assert.Equal(t, `create tag "go": database is locked`, err.Error())
	assert.True(t, Is(err, ErrInternal))
}
