package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"pettracker/app/domain"
	"pettracker/app/driver/localcache"
	"pettracker/app/port"
)

// SessionUsecase owns the authentication state machine over the external
// identity provider, persisting session material through the cache and
// deriving access credentials through the exchanger.
//
// State transitions depend only on success, failure or MFA-required
// outcomes; error classification is cosmetic. A single authentication
// attempt is assumed in flight at a time.
type SessionUsecase struct {
	provider port.IdentityProvider
	creds    port.CredentialExchanger
	cache    *localcache.Cache
	logger   *slog.Logger

	mu      sync.Mutex
	state   domain.AuthState
	session *domain.Session
	pending *domain.MFAChallenge
}

// NewSessionUsecase creates a session manager in the signed-out state.
func NewSessionUsecase(provider port.IdentityProvider, creds port.CredentialExchanger, cache *localcache.Cache, logger *slog.Logger) *SessionUsecase {
	return &SessionUsecase{
		provider: provider,
		creds:    creds,
		cache:    cache,
		logger:   logger.With("component", "session_usecase"),
		state:    domain.StateSignedOut,
	}
}

// Init synchronizes the cache with its durable store, then restores any
// persisted session: a live one is re-authenticated through credential
// exchange, an expired one refreshed first. Every failure degrades to
// the signed-out state with anonymous credentials; Init never fails.
func (u *SessionUsecase) Init(ctx context.Context) {
	if err := u.cache.Init(ctx); err != nil {
		u.logger.Warn("cache sync failed, starting empty", "error", err)
	}

	session := u.loadPersistedSession()
	if session == nil {
		u.degradeToSignedOut(ctx, nil)
		return
	}

	if session.IsExpired() {
		refreshed, err := u.provider.RefreshSession(ctx, session.RefreshToken)
		if err != nil {
			u.logger.Info("session refresh failed", "error", err)
			u.degradeToSignedOut(ctx, err)
			return
		}
		session = refreshed
	}

	if err := u.establishSession(ctx, session); err != nil {
		u.degradeToSignedOut(ctx, err)
		return
	}

	u.logger.Info("session restored")
}

// SignIn starts an authentication challenge. Three outcomes: a session
// (state AUTHENTICATED), a pending MFA challenge (state MFA_PENDING), or
// a classified error (state back to SIGNED_OUT).
func (u *SessionUsecase) SignIn(ctx context.Context, username, password string) (*domain.SignInResult, error) {
	u.setState(domain.StateAuthenticating)

	outcome, err := u.provider.Authenticate(ctx, username, password)
	if err != nil {
		u.setState(domain.StateSignedOut)
		return nil, domain.AsAuthError(err)
	}

	if outcome.Challenge != nil {
		u.mu.Lock()
		u.state = domain.StateMFAPending
		u.pending = outcome.Challenge
		u.mu.Unlock()

		u.logger.Info("multi-factor challenge pending",
			"destination", outcome.Challenge.Delivery.Destination)

		return &domain.SignInResult{
			State:       domain.StateMFAPending,
			MFARequired: true,
			Delivery:    outcome.Challenge.Delivery,
		}, nil
	}

	if err := u.establishSession(ctx, outcome.Session); err != nil {
		u.setState(domain.StateSignedOut)
		return nil, domain.AsAuthError(err)
	}

	return &domain.SignInResult{
		State:   domain.StateAuthenticated,
		Session: outcome.Session,
	}, nil
}

// SubmitMFACode completes the pending challenge. Rejection keeps the
// challenge pending so the user can retry with a fresh code.
func (u *SessionUsecase) SubmitMFACode(ctx context.Context, code string) (*domain.SignInResult, error) {
	u.mu.Lock()
	challenge := u.pending
	state := u.state
	u.mu.Unlock()

	if state != domain.StateMFAPending || challenge == nil {
		return nil, domain.ErrNoPendingChallenge
	}

	session, err := u.provider.RespondToMFAChallenge(ctx, challenge, code)
	if err != nil {
		// Stay in MFA_PENDING with a refreshed message.
		return nil, domain.AsAuthError(err)
	}

	if err := u.establishSession(ctx, session); err != nil {
		u.setState(domain.StateSignedOut)
		return nil, domain.AsAuthError(err)
	}

	return &domain.SignInResult{
		State:   domain.StateAuthenticated,
		Session: session,
	}, nil
}

// SignUp registers a new identity. Registration errors are classified
// distinctly from sign-in errors.
func (u *SessionUsecase) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.SignUpResult, error) {
	result, err := u.provider.SignUp(ctx, req)
	if err != nil {
		return nil, domain.AsAuthError(err)
	}

	if !result.UserConfirmed {
		u.logger.Info("registration awaiting verification",
			"destination", result.Delivery.Destination)
	}
	return result, nil
}

// ConfirmRegistration is a thin pass-through; errors surface verbatim.
func (u *SessionUsecase) ConfirmRegistration(ctx context.Context, username, code string) error {
	return u.provider.ConfirmSignUp(ctx, username, code)
}

// ResendConfirmationCode is a thin pass-through; errors surface
// verbatim.
func (u *SessionUsecase) ResendConfirmationCode(ctx context.Context, username string) error {
	return u.provider.ResendConfirmationCode(ctx, username)
}

// ForgotPassword initiates the provider's reset challenge.
func (u *SessionUsecase) ForgotPassword(ctx context.Context, username string) (*domain.CodeDelivery, error) {
	delivery, err := u.provider.ForgotPassword(ctx, username)
	if err != nil {
		return nil, domain.AsAuthError(err)
	}
	return delivery, nil
}

// ResetPassword completes the reset challenge.
func (u *SessionUsecase) ResetPassword(ctx context.Context, username, code, newPassword string) error {
	if err := u.provider.ConfirmForgotPassword(ctx, username, code, newPassword); err != nil {
		return domain.AsAuthError(err)
	}
	return nil
}

// SignOut invalidates the provider session and clears cached credential
// material. Idempotent: with no active session it only re-clears the
// local state. Provider rejection of an already-dead token is not an
// error.
func (u *SessionUsecase) SignOut(ctx context.Context) error {
	u.mu.Lock()
	session := u.session
	u.session = nil
	u.pending = nil
	u.state = domain.StateSignedOut
	u.mu.Unlock()

	if session != nil {
		if err := u.provider.SignOut(ctx, session.AccessToken); err != nil {
			u.logger.Info("provider sign-out rejected", "error", err)
		}
	}

	u.creds.Invalidate()
	u.cache.Remove(domain.CacheKeyCredentials)
	u.cache.Remove(domain.CacheKeySession)
	u.cache.Set(domain.CacheKeyIsLoggedIn, "false")

	u.logger.Info("signed out")
	return nil
}

// IsSignedIn reads the cached flag. O(1), no network call; may be stale
// relative to actual token expiry.
func (u *SessionUsecase) IsSignedIn() bool {
	flag, ok := u.cache.Get(domain.CacheKeyIsLoggedIn)
	return ok && flag == "true"
}

// State returns the current position in the authentication lifecycle.
func (u *SessionUsecase) State() domain.AuthState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Session returns the current session, if authenticated.
func (u *SessionUsecase) Session() (*domain.Session, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.session, u.session != nil
}

// Reset drops all in-memory state without touching the provider or the
// cache. For tests and process teardown.
func (u *SessionUsecase) Reset() {
	u.mu.Lock()
	u.session = nil
	u.pending = nil
	u.state = domain.StateSignedOut
	u.mu.Unlock()
}

func (u *SessionUsecase) setState(s domain.AuthState) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
}

// establishSession persists the session, derives access credentials and
// transitions to AUTHENTICATED. Credential failure aborts: the caller
// sees a failed sign-in rather than a session without usable keys.
func (u *SessionUsecase) establishSession(ctx context.Context, session *domain.Session) error {
	blob, _ := json.Marshal(session)
	u.cache.Set(domain.CacheKeySession, string(blob))

	if _, err := u.creds.Exchange(ctx, session); err != nil {
		return err
	}

	u.cache.Set(domain.CacheKeyIsLoggedIn, "true")

	u.mu.Lock()
	u.session = session
	u.pending = nil
	u.state = domain.StateAuthenticated
	u.mu.Unlock()
	return nil
}

// loadPersistedSession decodes the currSession cache entry, if any.
func (u *SessionUsecase) loadPersistedSession() *domain.Session {
	raw, ok := u.cache.Get(domain.CacheKeySession)
	if !ok || raw == "" {
		return nil
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		u.logger.Warn("discarding undecodable persisted session", "error", err)
		return nil
	}
	if session.IDToken == "" || session.AccessToken == "" {
		return nil
	}
	return &session
}

// degradeToSignedOut installs anonymous credentials and marks the user
// logged out. Anonymous exchange failure is logged, not surfaced.
func (u *SessionUsecase) degradeToSignedOut(ctx context.Context, cause error) {
	if cause != nil {
		u.logger.Info("degrading to signed-out", "error", cause)
	}

	if _, err := u.creds.EnsureAnonymous(ctx); err != nil {
		u.logger.Warn("anonymous credentials unavailable", "error", err)
	}
	u.cache.Set(domain.CacheKeyIsLoggedIn, "false")

	u.mu.Lock()
	u.session = nil
	u.pending = nil
	u.state = domain.StateSignedOut
	u.mu.Unlock()
}
