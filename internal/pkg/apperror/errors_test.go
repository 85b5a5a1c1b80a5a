package apperror

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrProposalNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrCFPClosed, http.StatusGone},
		{ErrRateExists, http.StatusConflict},
		{New(ErrCodeValidation, "bad"), http.StatusBadRequest},
		{New(ErrCodeUpstream, "sheets"), http.StatusBadGateway},
		{Wrap(sql.ErrConnDone, ErrCodeDatabaseError, "db"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("ctx: %w", ErrForbidden), http.StatusForbidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusOf(tt.err), tt.err.Error())
	}
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", ErrUserNotFound)
	assert.True(t, errors.Is(wrapped, ErrUserNotFound))
	assert.False(t, errors.Is(wrapped, ErrProposalNotFound))
	assert.True(t, IsNotFound(wrapped))

	cause := sql.ErrNoRows
	err := Wrap(cause, ErrCodeDatabaseError, "select")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by")
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(New(ErrCodeBadRequest, "x")))
	assert.True(t, IsValidation(New(ErrCodeValidation, "x")))
	assert.False(t, IsValidation(ErrForbidden))
	assert.False(t, IsValidation(nil))
	assert.True(t, IsForbidden(ErrForbidden))
}
