package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"pettracker/app/domain"
	"pettracker/app/driver/localcache"
	"pettracker/app/port"
)

// CredentialGateway is the Credential Exchange component: it drives the
// identity pool broker and persists the raw key material to the cache
// under awsCredentials. Concurrent exchanges for the same session are
// collapsed; the cache's last writer wins, acceptable because the state
// machine allows one sign-in flow at a time.
// Implements port.CredentialExchanger.
type CredentialGateway struct {
	broker port.CredentialBroker
	cache  *localcache.Cache
	logger *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	current *domain.AccessCredentials
}

// NewCredentialGateway creates a credential gateway over the broker and
// cache.
func NewCredentialGateway(broker port.CredentialBroker, cache *localcache.Cache, logger *slog.Logger) *CredentialGateway {
	return &CredentialGateway{
		broker: broker,
		cache:  cache,
		logger: logger.With("component", "credential_gateway"),
	}
}

// Exchange derives credentials for the session and persists them. On
// failure nothing is cached and the error propagates to the caller.
func (g *CredentialGateway) Exchange(ctx context.Context, session *domain.Session) (*domain.AccessCredentials, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}

	v, err, _ := g.group.Do(session.IDToken, func() (interface{}, error) {
		creds, err := g.broker.Exchange(ctx, session)
		if err != nil {
			return nil, err
		}
		g.install(creds)
		return creds, nil
	})
	if err != nil {
		g.logger.Error("credential exchange failed", "error", err)
		return nil, fmt.Errorf("credential exchange failed: %w", err)
	}

	return v.(*domain.AccessCredentials), nil
}

// EnsureAnonymous installs guest credentials for unauthenticated access.
func (g *CredentialGateway) EnsureAnonymous(ctx context.Context) (*domain.AccessCredentials, error) {
	v, err, _ := g.group.Do("anonymous", func() (interface{}, error) {
		creds, err := g.broker.AnonymousCredentials(ctx)
		if err != nil {
			return nil, err
		}
		g.install(creds)
		return creds, nil
	})
	if err != nil {
		g.logger.Error("anonymous credential exchange failed", "error", err)
		return nil, fmt.Errorf("anonymous credential exchange failed: %w", err)
	}

	return v.(*domain.AccessCredentials), nil
}

// Current returns the credentials installed by the last exchange.
func (g *CredentialGateway) Current() (*domain.AccessCredentials, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.current.Valid() {
		return nil, false
	}
	return g.current, true
}

// Invalidate drops the installed credentials and the broker's cached
// identity. The awsCredentials cache entry is the session manager's to
// remove; it owns the sign-out sequence.
func (g *CredentialGateway) Invalidate() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()

	g.broker.ClearCachedIdentity()
	g.group.Forget("anonymous")
}

// install records the credentials in memory and enqueues the cache
// write. Marshal of the flat credential struct cannot fail.
func (g *CredentialGateway) install(creds *domain.AccessCredentials) {
	g.mu.Lock()
	g.current = creds
	g.mu.Unlock()

	blob, _ := json.Marshal(creds)
	g.cache.Set(domain.CacheKeyCredentials, string(blob))

	g.logger.Info("access credentials installed",
		"identity_id", creds.IdentityID,
		"expires_at", creds.Expiration)
}
