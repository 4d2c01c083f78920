package port

import (
	"context"
	"io"

	"pettracker/app/domain"
)

// SessionUsecase is the Session Manager contract driven by the HTTP
// surface. A single authentication attempt is assumed in flight at a
// time; the caller prevents duplicate submissions.
type SessionUsecase interface {
	// Init loads any persisted session and installs credentials. It
	// never fails: provider or cache trouble degrades to signed-out
	// with anonymous credentials.
	Init(ctx context.Context)

	SignIn(ctx context.Context, username, password string) (*domain.SignInResult, error)
	SubmitMFACode(ctx context.Context, code string) (*domain.SignInResult, error)

	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SignUpResult, error)
	ConfirmRegistration(ctx context.Context, username, code string) error
	ResendConfirmationCode(ctx context.Context, username string) error

	ForgotPassword(ctx context.Context, username string) (*domain.CodeDelivery, error)
	ResetPassword(ctx context.Context, username, code, newPassword string) error

	// SignOut is idempotent: safe to call with no active session.
	SignOut(ctx context.Context) error

	// IsSignedIn reads the cached flag; it may be stale relative to
	// actual token expiry and never touches the network.
	IsSignedIn() bool

	State() domain.AuthState
}

// PetUsecase is the pets CRUD and photo upload surface.
type PetUsecase interface {
	List(ctx context.Context, userID string) ([]domain.Pet, error)
	Create(ctx context.Context, userID string, req domain.CreatePetRequest) (*domain.Pet, error)
	UploadPhoto(ctx context.Context, userID, filename, contentType string, body io.Reader) (key string, url string, err error)
}
