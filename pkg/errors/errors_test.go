package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidEmail, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeAccountNotFound, http.StatusNotFound},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal(cause, "An error occurred")

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "INTERNAL_ERROR: An error occurred: connection refused", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatusCode())
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", New(ErrCodeInvalidEmail, "Invalid email address"))

	assert.Equal(t, ErrCodeInvalidEmail, GetCode(wrapped))
	assert.True(t, IsCode(wrapped, ErrCodeInvalidEmail))
	assert.False(t, IsCode(wrapped, ErrCodeInternal))
	assert.Equal(t, ErrCodeInternal, GetCode(stderrors.New("plain")))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, Unauthorized().HTTPStatusCode())
	assert.Equal(t, "UNAUTHORIZED: Unauthorized", Unauthorized().Error())
}
