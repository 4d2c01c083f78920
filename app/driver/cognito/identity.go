package cognito

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"

	"pettracker/app/config"
	"pettracker/app/domain"
)

// identityPoolAPI is the subset of the identity pool client used for
// credential federation.
type identityPoolAPI interface {
	GetId(ctx context.Context, params *cognitoidentity.GetIdInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetIdOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *cognitoidentity.GetCredentialsForIdentityInput, optFns ...func(*cognitoidentity.Options)) (*cognitoidentity.GetCredentialsForIdentityOutput, error)
}

// IdentityPool trades sessions for time-boxed access credentials via the
// identity pool trust federation. Implements port.CredentialBroker.
type IdentityPool struct {
	api            identityPoolAPI
	identityPoolID string
	loginsKey      string
	logger         *slog.Logger

	mu         sync.Mutex
	identityID string
}

// NewIdentityPool creates a broker for the configured identity pool. The
// logins map is keyed by the provider host and user pool id.
func NewIdentityPool(cfg *config.Config, api identityPoolAPI, logger *slog.Logger) *IdentityPool {
	return &IdentityPool{
		api:            api,
		identityPoolID: cfg.IdentityPoolID,
		loginsKey:      fmt.Sprintf("cognito-idp.%s.amazonaws.com/%s", cfg.Region, cfg.UserPoolID),
		logger:         logger.With("component", "identity_pool"),
	}
}

// Exchange derives access credentials from an authenticated session.
// Failure propagates without caching anything partial.
func (b *IdentityPool) Exchange(ctx context.Context, session *domain.Session) (*domain.AccessCredentials, error) {
	logins := map[string]string{b.loginsKey: session.IDToken}

	identityID, err := b.resolveIdentity(ctx, logins)
	if err != nil {
		return nil, err
	}

	out, err := b.api.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(identityID),
		Logins:     logins,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to derive credentials: %w", err)
	}
	if out.Credentials == nil {
		return nil, fmt.Errorf("credential exchange returned no key material")
	}

	creds := &domain.AccessCredentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		IdentityID:      aws.ToString(out.IdentityId),
	}
	if out.Credentials.Expiration != nil {
		creds.Expiration = *out.Credentials.Expiration
	}
	return creds, nil
}

// AnonymousCredentials derives unauthenticated guest credentials from
// the pool.
func (b *IdentityPool) AnonymousCredentials(ctx context.Context) (*domain.AccessCredentials, error) {
	identityID, err := b.resolveIdentity(ctx, nil)
	if err != nil {
		return nil, err
	}

	out, err := b.api.GetCredentialsForIdentity(ctx, &cognitoidentity.GetCredentialsForIdentityInput{
		IdentityId: aws.String(identityID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to derive anonymous credentials: %w", err)
	}
	if out.Credentials == nil {
		return nil, fmt.Errorf("credential exchange returned no key material")
	}

	creds := &domain.AccessCredentials{
		AccessKeyID:     aws.ToString(out.Credentials.AccessKeyId),
		SecretAccessKey: aws.ToString(out.Credentials.SecretKey),
		SessionToken:    aws.ToString(out.Credentials.SessionToken),
		IdentityID:      aws.ToString(out.IdentityId),
	}
	if out.Credentials.Expiration != nil {
		creds.Expiration = *out.Credentials.Expiration
	}
	return creds, nil
}

// ClearCachedIdentity forgets the cached identity id; the next exchange
// resolves it again. Called on sign-out so a different user does not
// inherit the previous identity.
func (b *IdentityPool) ClearCachedIdentity() {
	b.mu.Lock()
	b.identityID = ""
	b.mu.Unlock()
}

// resolveIdentity returns the cached identity id or asks the pool for
// one scoped to the given logins.
func (b *IdentityPool) resolveIdentity(ctx context.Context, logins map[string]string) (string, error) {
	b.mu.Lock()
	cached := b.identityID
	b.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	out, err := b.api.GetId(ctx, &cognitoidentity.GetIdInput{
		IdentityPoolId: aws.String(b.identityPoolID),
		Logins:         logins,
	})
	if err != nil {
		return "", fmt.Errorf("failed to resolve identity: %w", err)
	}

	identityID := aws.ToString(out.IdentityId)
	b.mu.Lock()
	b.identityID = identityID
	b.mu.Unlock()

	b.logger.Debug("identity resolved", "identity_id", identityID)
	return identityID, nil
}
