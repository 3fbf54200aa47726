package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"revoked", ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found wrapped", fmt.Errorf("get user: %w", ErrUserNotFound), http.StatusNotFound, "USER_NOT_FOUND"},
		{"conflict", ErrUserAlreadyExists, http.StatusConflict, "USER_ALREADY_EXISTS"},
		{"role", ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
		{"otp", ErrInvalidOTP, http.StatusBadRequest, "INVALID_OTP"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.ToErrorResponse().Code)
		})
	}

	assert.Equal(t, "internal server error", MapErrorToHTTP(fmt.Errorf("secret detail")).Message)
}
