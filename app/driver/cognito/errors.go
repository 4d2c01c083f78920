package cognito

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"

	"pettracker/app/domain"
)

// Provider failures are classified into a tagged domain.AuthError using
// the SDK's structured error codes; substring matching on the raw
// message is the fallback for untyped errors. First match wins and
// unmatched errors become the generic classification. The tag selects
// user messaging only; it never drives state transitions.

// classifySignInError covers authentication and MFA submission.
func classifySignInError(err error) *domain.AuthError {
	code, message := providerCode(err)

	switch code {
	case "NotAuthorizedException", "UserNotFoundException":
		return domain.NewAuthError(domain.ErrCodeInvalidCredentials, err)
	case "CodeMismatchException", "ExpiredCodeException":
		return domain.NewAuthError(domain.ErrCodeCodeMismatch, err)
	case "PasswordResetRequiredException":
		return domain.NewAuthError(domain.ErrCodePasswordResetRequired, err)
	case "UserNotConfirmedException":
		return domain.NewAuthError(domain.ErrCodeUserNotConfirmed, err)
	case "InvalidParameterException":
		// The parameter name distinguishes a blank username from a
		// blank MFA code.
		if strings.Contains(message, "SMS_MFA_CODE") {
			return domain.NewAuthError(domain.ErrCodeEmptyCode, err)
		}
		if strings.Contains(message, "USERNAME") {
			return domain.NewAuthError(domain.ErrCodeInvalidCredentials, err)
		}
	case "TooManyRequestsException", "LimitExceededException":
		return domain.NewAuthError(domain.ErrCodeAttemptLimit, err)
	}

	return fallbackClassify(err, message)
}

// classifyRegistrationError covers sign-up, distinct from sign-in per
// the contract.
func classifyRegistrationError(err error) *domain.AuthError {
	code, message := providerCode(err)

	switch code {
	case "UsernameExistsException":
		return domain.NewAuthError(domain.ErrCodeUsernameExists, err)
	case "InvalidPasswordException":
		return domain.NewAuthError(domain.ErrCodeWeakPassword, err)
	case "InvalidParameterException":
		return domain.NewAuthError(domain.ErrCodeInvalidPassword, err)
	case "TooManyRequestsException", "LimitExceededException":
		return domain.NewAuthError(domain.ErrCodeAttemptLimit, err)
	}

	return fallbackClassify(err, message)
}

// classifyResetError covers the forgotten-password flow.
func classifyResetError(err error) *domain.AuthError {
	code, message := providerCode(err)

	switch code {
	case "UserNotFoundException":
		return domain.NewAuthError(domain.ErrCodeUnknownUser, err)
	case "LimitExceededException", "TooManyRequestsException":
		return domain.NewAuthError(domain.ErrCodeAttemptLimit, err)
	case "CodeMismatchException", "ExpiredCodeException":
		return domain.NewAuthError(domain.ErrCodeCodeMismatch, err)
	case "InvalidPasswordException":
		return domain.NewAuthError(domain.ErrCodeWeakPassword, err)
	case "InvalidParameterException":
		if strings.Contains(message, "no registered/verified email or phone_number") {
			return domain.NewAuthError(domain.ErrCodeNoVerifiedContact, err)
		}
		if strings.Contains(message, "Cannot reset password") {
			return domain.NewAuthError(domain.ErrCodeUnknownUser, err)
		}
		return domain.NewAuthError(domain.ErrCodeWeakPassword, err)
	}

	return fallbackClassify(err, message)
}

// providerCode extracts the structured error code, falling back to the
// raw message for untyped errors.
func providerCode(err error) (code, message string) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), apiErr.ErrorMessage()
	}
	return "", err.Error()
}

// fallbackClassify is the legacy substring classification for errors the
// SDK did not type. Transport failures surface as the generic message.
func fallbackClassify(err error, message string) *domain.AuthError {
	switch {
	case strings.Contains(message, "NotAuthorizedException"),
		strings.Contains(message, "UserNotFoundException"):
		return domain.NewAuthError(domain.ErrCodeInvalidCredentials, err)
	case strings.Contains(message, "CodeMismatchException"):
		return domain.NewAuthError(domain.ErrCodeCodeMismatch, err)
	case strings.Contains(message, "SMS_MFA_CODE"):
		return domain.NewAuthError(domain.ErrCodeEmptyCode, err)
	case strings.Contains(message, "PasswordResetRequiredException"):
		return domain.NewAuthError(domain.ErrCodePasswordResetRequired, err)
	case strings.Contains(message, "UsernameExistsException"):
		return domain.NewAuthError(domain.ErrCodeUsernameExists, err)
	case strings.Contains(message, "InvalidPasswordException"):
		return domain.NewAuthError(domain.ErrCodeWeakPassword, err)
	case strings.Contains(message, "LimitExceededException"):
		return domain.NewAuthError(domain.ErrCodeAttemptLimit, err)
	}

	return domain.NewAuthError(domain.ErrCodeUnknown, err)
}
