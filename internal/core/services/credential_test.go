package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven/mocks"
)

type credentialFixture struct {
	manager *CredentialManager
	store   *mocks.MockCredentialStore
	oauth   *mocks.MockOAuthProvider
	lock    *mocks.MockDistributedLock
}

func newCredentialFixture(t *testing.T) *credentialFixture {
	t.Helper()

	f := &credentialFixture{
		store: mocks.NewMockCredentialStore(),
		oauth: mocks.NewMockOAuthProvider(),
		lock:  mocks.NewMockDistributedLock(),
	}
	f.manager = NewCredentialManager(CredentialManagerConfig{
		Store:         f.store,
		OAuth:         f.oauth,
		Lock:          f.lock,
		RetryInterval: 5 * time.Millisecond,
	})
	return f
}

func (f *credentialFixture) seed(t *testing.T, key string, expiresAt time.Time) {
	t.Helper()
	require.NoError(t, f.store.Save(context.Background(), &domain.Credential{
		Key:          key,
		AccessToken:  "original-access",
		RefreshToken: "original-refresh",
		ExpiresAt:    expiresAt,
	}))
}

func TestGetValidCredential_StillValid(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(time.Hour))

	cred, err := f.manager.GetValidCredential(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "original-access", cred.AccessToken)
	assert.Equal(t, 0, f.oauth.RefreshCalls())
}

func TestGetValidCredential_RefreshesExpired(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(-time.Minute))

	cred, err := f.manager.GetValidCredential(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "access-1", cred.AccessToken)
	assert.Equal(t, "original-refresh", cred.RefreshToken, "refresh token kept when not rotated")
	assert.True(t, cred.ExpiresAt.After(time.Now()))
	assert.Equal(t, 1, f.oauth.RefreshCalls())

	stored, err := f.store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", stored.AccessToken, "refreshed token is persisted")
	assert.False(t, f.lock.IsHeld("credential-refresh:user-1"), "lock released after refresh")
}

func TestGetValidCredential_RefreshesInsideWindow(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(domain.RefreshWindow/2))

	_, err := f.manager.GetValidCredential(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.oauth.RefreshCalls())
}

func TestGetValidCredential_ConcurrentRefreshOnce(t *testing.T) {
	f := newCredentialFixture(t)
	f.oauth.RefreshDelay = 20 * time.Millisecond
	f.seed(t, "user-1", time.Now().Add(-time.Minute))

	var wg sync.WaitGroup
	tokens := make([]string, 10)
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cred, err := f.manager.GetValidCredential(context.Background(), "user-1")
			errs[i] = err
			if err == nil {
				tokens[i] = cred.AccessToken
			}
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
		assert.Equal(t, "access-1", tokens[i])
	}
	assert.Equal(t, 1, f.oauth.RefreshCalls(), "only one refresh per expiry")
}

func TestGetValidCredential_WaitsForOtherInstance(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(-time.Minute))
	f.lock.SetLockHeld("credential-refresh:user-1", 40*time.Millisecond)

	start := time.Now()
	cred, err := f.manager.GetValidCredential(context.Background(), "user-1")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, "access-1", cred.AccessToken)
}

func TestGetValidCredential_LockWaitHonoursContext(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(-time.Minute))
	f.lock.SetLockHeld("credential-refresh:user-1", time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := f.manager.GetValidCredential(ctx, "user-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, f.oauth.RefreshCalls())
}

func TestGetValidCredential_LockBackendDown(t *testing.T) {
	f := newCredentialFixture(t)
	f.lock.AcquireFn = func(string, time.Duration) (bool, error) {
		return false, errors.New("redis: connection refused")
	}
	f.seed(t, "user-1", time.Now().Add(-time.Minute))

	cred, err := f.manager.GetValidCredential(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", cred.AccessToken)
}

func TestGetValidCredential_RefreshFailure(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(-time.Minute))
	f.oauth.SetRefreshError(errors.New("invalid_grant"))

	_, err := f.manager.GetValidCredential(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
}

func TestGetValidCredential_MissingRefreshToken(t *testing.T) {
	f := newCredentialFixture(t)
	require.NoError(t, f.store.Save(context.Background(), &domain.Credential{
		Key:         "user-1",
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Hour),
	}))

	_, err := f.manager.GetValidCredential(context.Background(), "user-1")
	assert.ErrorIs(t, err, domain.ErrCredentialInvalid)
	assert.Equal(t, 0, f.oauth.RefreshCalls())
}

func TestGetValidCredential_NotConnected(t *testing.T) {
	f := newCredentialFixture(t)

	_, err := f.manager.GetValidCredential(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.manager.GetValidCredential(context.Background(), "temp_abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBind(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "temp_123", time.Now().Add(time.Hour))

	bound, err := f.manager.Bind(context.Background(), "temp_123", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", bound.Key)
	assert.Equal(t, "original-access", bound.AccessToken)

	assert.False(t, f.store.Has("temp_123"), "temporary record is removed")
	assert.True(t, f.store.Has("user-1"))

	_, err = f.manager.Bind(context.Background(), "temp_123", "user-2")
	assert.ErrorIs(t, err, domain.ErrNotFound, "a temporary key binds once")
	assert.False(t, f.store.Has("user-2"))
}

func TestBind_ConcurrentClaimsSucceedOnce(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "temp_race", time.Now().Add(time.Hour))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.manager.Bind(context.Background(), "temp_race", "user-"+string(rune('a'+i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrNotFound):
				notFound++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 7, notFound)
}

func TestBind_FailedMoveKeepsTemporaryRecord(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "temp_x", time.Now().Add(time.Hour))
	f.store.SetMoveError(errors.New("db down"))

	_, err := f.manager.Bind(context.Background(), "temp_x", "alice")
	require.Error(t, err)
	assert.True(t, f.store.Has("temp_x"), "grant survives a failed bind")
	assert.False(t, f.store.Has("alice"))

	f.store.SetMoveError(nil)
	bound, err := f.manager.Bind(context.Background(), "temp_x", "alice")
	require.NoError(t, err)
	assert.Equal(t, "original-access", bound.AccessToken)
	assert.False(t, f.store.Has("temp_x"))
}

func TestBind_ReplacesExistingUserCredential(t *testing.T) {
	f := newCredentialFixture(t)
	require.NoError(t, f.store.Save(context.Background(), &domain.Credential{
		Key:          "user-1",
		AccessToken:  "stale-access",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	f.seed(t, "temp_new", time.Now().Add(time.Hour))

	_, err := f.manager.Bind(context.Background(), "temp_new", "user-1")
	require.NoError(t, err)

	cred, err := f.store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "original-access", cred.AccessToken)
}

func TestBind_InvalidInput(t *testing.T) {
	f := newCredentialFixture(t)

	_, err := f.manager.Bind(context.Background(), "user-9", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.manager.Bind(context.Background(), "temp_1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreAndExists(t *testing.T) {
	f := newCredentialFixture(t)
	ctx := context.Background()

	ok, err := f.manager.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.manager.Store(ctx, "user-1", &domain.OAuthToken{
		AccessToken:  "a",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	ok, err = f.manager.Exists(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.manager.Store(ctx, "user-1", &domain.OAuthToken{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTokenProvider(t *testing.T) {
	f := newCredentialFixture(t)
	f.seed(t, "user-1", time.Now().Add(-time.Minute))

	token, err := f.manager.TokenProvider("user-1").GetAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)

	_, err = f.manager.TokenProvider("nobody").GetAccessToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
