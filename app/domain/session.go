package domain

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the token triple issued by the identity provider on a
// successful authentication or refresh. It is immutable once issued; a
// refresh or re-authentication produces a new Session that supersedes it.
type Session struct {
	IDToken      string `json:"idToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewSession creates a session from the provider's token triple.
func NewSession(idToken, accessToken, refreshToken string) (*Session, error) {
	if idToken == "" {
		return nil, fmt.Errorf("identity token is required")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	return &Session{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ExpiresAt returns the expiry embedded in the identity token. The token
// signature is the provider's concern; only the claims are read here.
func (s *Session) ExpiresAt() (time.Time, error) {
	claims, err := s.idTokenClaims()
	if err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("identity token carries no expiry")
	}
	return exp.Time, nil
}

// IsExpired reports whether the identity token's embedded expiry has
// passed. A token whose claims cannot be read is treated as expired.
func (s *Session) IsExpired() bool {
	expiresAt, err := s.ExpiresAt()
	if err != nil {
		return true
	}
	return time.Now().After(expiresAt)
}

// Subject returns the identity subject embedded in the identity token.
func (s *Session) Subject() (string, error) {
	claims, err := s.idTokenClaims()
	if err != nil {
		return "", err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("identity token carries no subject")
	}
	return sub, nil
}

func (s *Session) idTokenClaims() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.IDToken, claims); err != nil {
		return nil, fmt.Errorf("failed to decode identity token: %w", err)
	}
	return claims, nil
}

// MFAChallenge is the provider's pending multi-factor challenge. The
// continuation token must be echoed back with the user's one-time code.
type MFAChallenge struct {
	Username          string
	ChallengeName     string
	ContinuationToken string
	Delivery          CodeDelivery
}

// CodeDelivery describes where the provider sent a one-time code.
type CodeDelivery struct {
	Destination string `json:"destination,omitempty"`
	Medium      string `json:"medium,omitempty"`
}

// AuthOutcome is the provider's answer to a password authentication:
// exactly one of Session (established) or Challenge (MFA required) is
// set. Rejections are errors, not outcomes.
type AuthOutcome struct {
	Session   *Session
	Challenge *MFAChallenge
}

// SignInResult is the outcome of a sign-in attempt that did not fail
// outright: either a session was established or a multi-factor challenge
// is pending.
type SignInResult struct {
	State       AuthState
	Session     *Session
	MFARequired bool
	Delivery    CodeDelivery
}

// SignUpResult reports whether a new registration still needs a
// confirmation code from the user.
type SignUpResult struct {
	UserConfirmed bool
	Delivery      CodeDelivery
}

// SignUpRequest carries the attributes collected at registration. Email
// and phone are optional; the provider decides which it verifies.
type SignUpRequest struct {
	Username string `json:"username" validate:"required,min=3,max=128"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}
