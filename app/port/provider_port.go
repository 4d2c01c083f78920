package port

import (
	"context"

	"pettracker/app/domain"
)

// IdentityProvider is the external identity provider behind the Session
// Manager. Its wire protocol and cryptography are opaque; only the
// request/response contract below is consumed.
type IdentityProvider interface {
	// Authenticate starts a password authentication challenge. The
	// outcome is either an established session or a pending MFA
	// challenge; rejections come back as classified errors.
	Authenticate(ctx context.Context, username, password string) (*domain.AuthOutcome, error)

	// RespondToMFAChallenge completes a pending challenge with the
	// user's one-time code.
	RespondToMFAChallenge(ctx context.Context, challenge *domain.MFAChallenge, code string) (*domain.Session, error)

	// RefreshSession trades a refresh token for a fresh token triple.
	RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error)

	// SignUp registers a new identity.
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SignUpResult, error)

	// ConfirmSignUp submits the verification code sent at registration.
	ConfirmSignUp(ctx context.Context, username, code string) error

	// ResendConfirmationCode requests a new registration code.
	ResendConfirmationCode(ctx context.Context, username string) error

	// ForgotPassword initiates the provider's reset challenge.
	ForgotPassword(ctx context.Context, username string) (*domain.CodeDelivery, error)

	// ConfirmForgotPassword completes the reset challenge.
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error

	// SignOut invalidates the session identified by the access token.
	SignOut(ctx context.Context, accessToken string) error
}
