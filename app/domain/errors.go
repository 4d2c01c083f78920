package domain

import "errors"

// Session and state machine errors
var (
	ErrNotSignedIn        = errors.New("no active session")
	ErrNoPendingChallenge = errors.New("no multi-factor challenge pending")
	ErrSessionExpired     = errors.New("session expired")

	// Pet errors
	ErrPetNameRequired = errors.New("pet name is required")
	ErrPetNotFound     = errors.New("pet not found")
)

// AuthErrorCode tags a provider failure at the boundary. Classification is
// cosmetic: it selects the user-facing message and never drives the state
// machine, which reacts only to success, failure or MFA-required.
type AuthErrorCode string

const (
	ErrCodeInvalidCredentials    AuthErrorCode = "INVALID_CREDENTIALS"
	ErrCodeCodeMismatch          AuthErrorCode = "CODE_MISMATCH"
	ErrCodeEmptyCode             AuthErrorCode = "EMPTY_CODE"
	ErrCodePasswordResetRequired AuthErrorCode = "PASSWORD_RESET_REQUIRED"
	ErrCodeUserNotConfirmed      AuthErrorCode = "USER_NOT_CONFIRMED"
	ErrCodeUsernameExists        AuthErrorCode = "USERNAME_EXISTS"
	ErrCodeInvalidPassword       AuthErrorCode = "INVALID_PASSWORD"
	ErrCodeWeakPassword          AuthErrorCode = "WEAK_PASSWORD"
	ErrCodeUnknownUser           AuthErrorCode = "UNKNOWN_USER"
	ErrCodeAttemptLimit          AuthErrorCode = "ATTEMPT_LIMIT"
	ErrCodeNoVerifiedContact     AuthErrorCode = "NO_VERIFIED_CONTACT"
	ErrCodeProviderUnavailable   AuthErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeUnknown               AuthErrorCode = "UNKNOWN"
)

// userMessages maps each classification to the single human-readable
// message substituted into the relevant form.
var userMessages = map[AuthErrorCode]string{
	ErrCodeInvalidCredentials:    "Please enter valid username and Password.",
	ErrCodeCodeMismatch:          "Invalid Verification Code",
	ErrCodeEmptyCode:             "Verification code can not be empty",
	ErrCodePasswordResetRequired: "Password reset required for the user",
	ErrCodeUserNotConfirmed:      "User is not confirmed, please verify your account first",
	ErrCodeUsernameExists:        "User already exists",
	ErrCodeInvalidPassword:       "Password must contain at least 8 characters",
	ErrCodeWeakPassword:          "Password must contain at least 8 characters, one lowercase, uppercase, numeric and special character",
	ErrCodeUnknownUser:           "Invalid username",
	ErrCodeAttemptLimit:          "Attempt limit exceeded, please try again later",
	ErrCodeNoVerifiedContact:     "Cannot reset password for the user as there is no registered/verified email or phone number",
	ErrCodeProviderUnavailable:   "There was a problem",
	ErrCodeUnknown:               "There was a problem",
}

// UserMessage returns the form message for a classification, falling back
// to the generic one for codes without a mapping.
func UserMessage(code AuthErrorCode) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[ErrCodeUnknown]
}

// AuthError is a provider failure classified at the boundary: the tagged
// code, the user-facing message and the raw cause for diagnosis.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError builds a classified provider error carrying the user
// message for its code.
func NewAuthError(code AuthErrorCode, cause error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: UserMessage(code),
		Cause:   cause,
	}
}

// AsAuthError unwraps err to its classification, or wraps it as UNKNOWN.
func AsAuthError(err error) *AuthError {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return NewAuthError(ErrCodeUnknown, err)
}
