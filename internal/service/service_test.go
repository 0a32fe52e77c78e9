package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/testutil"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

func eventOfType(typ string) any {
	return mock.MatchedBy(func(e map[string]any) bool { return e["type"] == typ })
}

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (d *memDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.revoked == nil {
		d.revoked = map[string]time.Duration{}
	}
	d.revoked[jti] = ttl
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[jti]
	return ok, nil
}

type testEnv struct {
	Repo    *repo.GormRepo
	Auth    *AuthService
	Catalog *CatalogService
	Clock   *testutil.Clock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.OpenInMemoryDB(t)}
	v := validate.New()
	clock := &testutil.Clock{T: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	tm := tokens.NewManager([]byte("test-jwt-secret"), time.Hour)
	tm.Now = clock.Now

	return &testEnv{
		Repo:    r,
		Auth:    &AuthService{Repo: r, Tokens: tm, Validator: v, AllowRoleSignup: true},
		Catalog: &CatalogService{Repo: r, Validator: v},
		Clock:   clock,
	}
}
