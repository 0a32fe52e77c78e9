package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/apperr"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/storage"
	"github.com/Skotchmaster/pharmacy_shop/internal/testutil"
	"github.com/Skotchmaster/pharmacy_shop/pkg/tokens"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func issue(t *testing.T) string {
	t.Helper()
	m := tokens.NewManager([]byte("server-secret"), time.Hour)
	m.Now = func() time.Time { return t0 }
	tok, _, err := m.Issue(7, "alice", models.RoleUser)
	require.NoError(t, err)
	return tok
}

func newManager() (*Manager, *testutil.Clock) {
	clock := &testutil.Clock{T: t0}
	m := NewManager(storage.NewMemory())
	m.Now = clock.Now
	return m, clock
}

func TestSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()

	s, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	want := Session{Token: "tok", User: models.PublicUser{ID: 7, Username: "alice", Role: models.RoleUser}}
	require.NoError(t, m.Save(ctx, want))

	s, err = m.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok", s.Token)
	assert.Equal(t, "alice", s.User.Username)

	require.NoError(t, m.Clear(ctx))
	s, err = m.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	m, clock := newManager()

	_, err := m.Require(ctx)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)

	require.NoError(t, m.Save(ctx, Session{Token: issue(t)}))

	clock.Advance(59 * time.Minute)
	s, err := m.Require(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)

	clock.Advance(2 * time.Minute)
	_, err = m.Require(ctx)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, "Session expired, please log in again", apperr.Message(err))
}

func TestExpired_GarbageToken(t *testing.T) {
	m, _ := newManager()
	assert.True(t, m.Expired(&Session{Token: "not-a-jwt"}))
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()
	require.NoError(t, m.Store.Set(ctx, StorageKey, []byte("{")))

	_, err := m.Load(ctx)
	require.Error(t, err)
}
