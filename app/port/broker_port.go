package port

import (
	"context"

	"pettracker/app/domain"
)

// CredentialBroker is the identity pool federation that trades a session
// for time-boxed service-access credentials.
type CredentialBroker interface {
	// Exchange derives access credentials from an authenticated
	// session. Failure propagates; nothing partial is returned.
	Exchange(ctx context.Context, session *domain.Session) (*domain.AccessCredentials, error)

	// AnonymousCredentials derives unauthenticated guest credentials.
	AnonymousCredentials(ctx context.Context) (*domain.AccessCredentials, error)

	// ClearCachedIdentity forgets the broker's cached identity id so
	// the next exchange resolves it afresh.
	ClearCachedIdentity()
}

// CredentialExchanger is the Credential Exchange component: it drives the
// broker and persists the resulting key material for the process.
type CredentialExchanger interface {
	// Exchange derives and persists credentials for a session.
	Exchange(ctx context.Context, session *domain.Session) (*domain.AccessCredentials, error)

	// EnsureAnonymous installs and persists guest credentials.
	EnsureAnonymous(ctx context.Context) (*domain.AccessCredentials, error)

	// Current returns the credentials installed by the last exchange.
	Current() (*domain.AccessCredentials, bool)

	// Invalidate drops the installed credentials and the broker's
	// cached identity.
	Invalidate()
}
