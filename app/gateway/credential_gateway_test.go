package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pettracker/app/domain"
	"pettracker/app/driver/localcache"
)

// stubBroker answers exchanges with canned credentials.
type stubBroker struct {
	mu             sync.Mutex
	exchangeCalls  int
	anonymousCalls int
	clearCalls     int
	creds          *domain.AccessCredentials
	err            error
}

func (b *stubBroker) Exchange(ctx context.Context, session *domain.Session) (*domain.AccessCredentials, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exchangeCalls++
	return b.creds, b.err
}

func (b *stubBroker) AnonymousCredentials(ctx context.Context) (*domain.AccessCredentials, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.anonymousCalls++
	return b.creds, b.err
}

func (b *stubBroker) ClearCachedIdentity() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearCalls++
}

type memoryStore struct {
	mu   sync.Mutex
	blob []byte
}

func (s *memoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blob, nil
}

func (s *memoryStore) Save(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	return nil
}

func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

func newTestCache(t *testing.T) *localcache.Cache {
	t.Helper()
	cache := localcache.New(&memoryStore{}, slog.Default())
	t.Cleanup(func() { cache.Close() })
	return cache
}

func validCreds() *domain.AccessCredentials {
	return &domain.AccessCredentials{
		AccessKeyID:     "AKIA_TEST",
		SecretAccessKey: "secret",
		SessionToken:    "token",
		Expiration:      time.Now().Add(time.Hour),
		IdentityID:      "us-east-1:identity-abc",
	}
}

func TestCredentialGateway_Exchange(t *testing.T) {
	broker := &stubBroker{creds: validCreds()}
	cache := newTestCache(t)
	gw := NewCredentialGateway(broker, cache, slog.Default())

	session := &domain.Session{IDToken: "id-token", AccessToken: "access"}
	creds, err := gw.Exchange(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, "AKIA_TEST", creds.AccessKeyID)

	// Raw key material lands in the cache under awsCredentials.
	raw, ok := cache.Get(domain.CacheKeyCredentials)
	require.True(t, ok)

	var persisted domain.AccessCredentials
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, "AKIA_TEST", persisted.AccessKeyID)
	assert.Equal(t, "secret", persisted.SecretAccessKey)

	current, ok := gw.Current()
	require.True(t, ok)
	assert.Equal(t, creds, current)
}

func TestCredentialGateway_ExchangeFailureCachesNothing(t *testing.T) {
	broker := &stubBroker{err: errors.New("pool unavailable")}
	cache := newTestCache(t)
	gw := NewCredentialGateway(broker, cache, slog.Default())

	session := &domain.Session{IDToken: "id-token", AccessToken: "access"}
	_, err := gw.Exchange(context.Background(), session)
	require.Error(t, err)

	_, ok := cache.Get(domain.CacheKeyCredentials)
	assert.False(t, ok)

	_, ok = gw.Current()
	assert.False(t, ok)
}

func TestCredentialGateway_ExchangeNilSession(t *testing.T) {
	gw := NewCredentialGateway(&stubBroker{}, newTestCache(t), slog.Default())

	_, err := gw.Exchange(context.Background(), nil)
	assert.Error(t, err)
}

func TestCredentialGateway_ConcurrentExchangesCollapse(t *testing.T) {
	broker := &stubBroker{creds: validCreds()}
	cache := newTestCache(t)
	gw := NewCredentialGateway(broker, cache, slog.Default())

	session := &domain.Session{IDToken: "same-token", AccessToken: "access"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gw.Exchange(context.Background(), session)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	broker.mu.Lock()
	calls := broker.exchangeCalls
	broker.mu.Unlock()
	assert.LessOrEqual(t, calls, 8)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestCredentialGateway_EnsureAnonymous(t *testing.T) {
	broker := &stubBroker{creds: validCreds()}
	cache := newTestCache(t)
	gw := NewCredentialGateway(broker, cache, slog.Default())

	creds, err := gw.EnsureAnonymous(context.Background())
	require.NoError(t, err)
	assert.True(t, creds.Valid())

	_, ok := cache.Get(domain.CacheKeyCredentials)
	assert.True(t, ok)
}

func TestCredentialGateway_Invalidate(t *testing.T) {
	broker := &stubBroker{creds: validCreds()}
	cache := newTestCache(t)
	gw := NewCredentialGateway(broker, cache, slog.Default())

	session := &domain.Session{IDToken: "id-token", AccessToken: "access"}
	_, err := gw.Exchange(context.Background(), session)
	require.NoError(t, err)

	gw.Invalidate()

	_, ok := gw.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, broker.clearCalls)
}
