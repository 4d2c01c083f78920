package cognito

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettracker/app/domain"
)

func apiError(code, message string) error {
	return &smithy.GenericAPIError{Code: code, Message: message}
}

func TestClassifySignInError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode domain.AuthErrorCode
		wantMsg  string
	}{
		{
			name:     "wrong password",
			err:      apiError("NotAuthorizedException", "Incorrect username or password."),
			wantCode: domain.ErrCodeInvalidCredentials,
			wantMsg:  "Please enter valid username and Password.",
		},
		{
			name:     "unknown user maps to the same message",
			err:      apiError("UserNotFoundException", "User does not exist."),
			wantCode: domain.ErrCodeInvalidCredentials,
			wantMsg:  "Please enter valid username and Password.",
		},
		{
			name:     "wrong verification code",
			err:      apiError("CodeMismatchException", "Invalid code provided"),
			wantCode: domain.ErrCodeCodeMismatch,
			wantMsg:  "Invalid Verification Code",
		},
		{
			name:     "blank verification code",
			err:      apiError("InvalidParameterException", "Missing required parameter SMS_MFA_CODE"),
			wantCode: domain.ErrCodeEmptyCode,
			wantMsg:  "Verification code can not be empty",
		},
		{
			name:     "blank username",
			err:      apiError("InvalidParameterException", "Missing required parameter USERNAME"),
			wantCode: domain.ErrCodeInvalidCredentials,
		},
		{
			name:     "password reset required",
			err:      apiError("PasswordResetRequiredException", "Password reset required for the user"),
			wantCode: domain.ErrCodePasswordResetRequired,
			wantMsg:  "Password reset required for the user",
		},
		{
			name:     "throttled",
			err:      apiError("TooManyRequestsException", "Rate exceeded"),
			wantCode: domain.ErrCodeAttemptLimit,
		},
		{
			name:     "untyped error falls back to substring match",
			err:      fmt.Errorf("operation error: NotAuthorizedException: denied"),
			wantCode: domain.ErrCodeInvalidCredentials,
		},
		{
			name:     "transport failure is generic",
			err:      errors.New("dial tcp: connection refused"),
			wantCode: domain.ErrCodeUnknown,
			wantMsg:  "There was a problem",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifySignInError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message)
			}
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyRegistrationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode domain.AuthErrorCode
		wantMsg  string
	}{
		{
			name:     "duplicate username",
			err:      apiError("UsernameExistsException", "User already exists"),
			wantCode: domain.ErrCodeUsernameExists,
			wantMsg:  "User already exists",
		},
		{
			name:     "policy rejects password",
			err:      apiError("InvalidPasswordException", "Password did not conform with policy"),
			wantCode: domain.ErrCodeWeakPassword,
		},
		{
			name:     "password too short",
			err:      apiError("InvalidParameterException", "Value at 'password' failed to satisfy constraint"),
			wantCode: domain.ErrCodeInvalidPassword,
			wantMsg:  "Password must contain at least 8 characters",
		},
		{
			name:     "unknown provider failure",
			err:      errors.New("boom"),
			wantCode: domain.ErrCodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyRegistrationError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message)
			}
		})
	}
}

func TestClassifyResetError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode domain.AuthErrorCode
		wantMsg  string
	}{
		{
			name:     "unknown account",
			err:      apiError("UserNotFoundException", "Username/client id combination not found."),
			wantCode: domain.ErrCodeUnknownUser,
			wantMsg:  "Invalid username",
		},
		{
			name:     "attempt limit",
			err:      apiError("LimitExceededException", "Attempt limit exceeded"),
			wantCode: domain.ErrCodeAttemptLimit,
			wantMsg:  "Attempt limit exceeded, please try again later",
		},
		{
			name:     "no verified contact",
			err:      apiError("InvalidParameterException", "Cannot reset password for the user as there is no registered/verified email or phone_number"),
			wantCode: domain.ErrCodeNoVerifiedContact,
		},
		{
			name:     "stale reset code",
			err:      apiError("ExpiredCodeException", "Invalid code provided, please request a code again."),
			wantCode: domain.ErrCodeCodeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyResetError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message)
			}
		})
	}
}
