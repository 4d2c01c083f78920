package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		code AuthErrorCode
		want string
	}{
		{
			name: "invalid credentials",
			code: ErrCodeInvalidCredentials,
			want: "Please enter valid username and Password.",
		},
		{
			name: "code mismatch",
			code: ErrCodeCodeMismatch,
			want: "Invalid Verification Code",
		},
		{
			name: "empty code",
			code: ErrCodeEmptyCode,
			want: "Verification code can not be empty",
		},
		{
			name: "password reset required",
			code: ErrCodePasswordResetRequired,
			want: "Password reset required for the user",
		},
		{
			name: "username exists",
			code: ErrCodeUsernameExists,
			want: "User already exists",
		},
		{
			name: "unknown user",
			code: ErrCodeUnknownUser,
			want: "Invalid username",
		},
		{
			name: "attempt limit",
			code: ErrCodeAttemptLimit,
			want: "Attempt limit exceeded, please try again later",
		},
		{
			name: "unknown falls back to generic",
			code: ErrCodeUnknown,
			want: "There was a problem",
		},
		{
			name: "unmapped code falls back to generic",
			code: AuthErrorCode("SOMETHING_ELSE"),
			want: "There was a problem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.code))
		})
	}
}

func TestAuthError_Unwrap(t *testing.T) {
	cause := errors.New("NotAuthorizedException: bad password")
	err := NewAuthError(ErrCodeInvalidCredentials, cause)

	assert.Equal(t, ErrCodeInvalidCredentials, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Please enter valid username and Password.")
}

func TestAsAuthError(t *testing.T) {
	t.Run("unwraps a classified error", func(t *testing.T) {
		classified := NewAuthError(ErrCodeUsernameExists, errors.New("boom"))
		wrapped := fmt.Errorf("sign up: %w", classified)

		got := AsAuthError(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, ErrCodeUsernameExists, got.Code)
	})

	t.Run("wraps an unclassified error as unknown", func(t *testing.T) {
		got := AsAuthError(errors.New("connection reset"))
		require.NotNil(t, got)
		assert.Equal(t, ErrCodeUnknown, got.Code)
		assert.Equal(t, "There was a problem", got.Message)
	})
}
