package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/storefront/storage"
	"github.com/Skotchmaster/pharmacy_shop/internal/testutil"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newCart(t *testing.T) (*Cart, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	c := New(store)
	clock := &testutil.Clock{T: t0}
	c.Now = clock.Now
	return c, store
}

type failingStore struct {
	storage.Storage
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestAddToCart_SameProductAccumulates(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)
	aspirin := testutil.Product(1, "Aspirin", 5.99)

	for _, qty := range []int{1, 3, 2} {
		require.NoError(t, c.AddToCart(ctx, aspirin, qty))
	}

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].Quantity)
	assert.Equal(t, t0, lines[0].AddedAt)
}

func TestAddToCart_ClampsQuantity(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)

	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5), 0))
	require.NoError(t, c.AddToCart(ctx, testutil.Product(2, "Advil", 5), -4))

	for _, l := range c.Lines() {
		assert.Equal(t, 1, l.Quantity, "product %d", l.ID)
	}
}

func TestAddToCart_KeepsSnapshotAndOrder(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)

	require.NoError(t, c.AddToCart(ctx, testutil.Product(2, "Advil", 9.99), 1))
	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5.99), 1))
	changed := testutil.Product(2, "Advil", 12.00)
	require.NoError(t, c.AddToCart(ctx, changed, 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].ID)
	assert.Equal(t, 1, lines[1].ID)
	assert.InDelta(t, 9.99, lines[0].Price, 1e-9, "price snapshot taken at first add")
}

func TestRemoveFromCart_Idempotent(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)
	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5), 2))
	require.NoError(t, c.AddToCart(ctx, testutil.Product(2, "Advil", 5), 1))

	require.NoError(t, c.RemoveFromCart(ctx, 1))
	after := c.Lines()
	require.NoError(t, c.RemoveFromCart(ctx, 1))
	require.NoError(t, c.RemoveFromCart(ctx, 99))

	assert.Equal(t, after, c.Lines())
	_, ok := c.Line(1)
	assert.False(t, ok)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		qty     int
		present bool
		want    int
	}{
		{name: "overwrite", qty: 7, present: true, want: 7},
		{name: "one", qty: 1, present: true, want: 1},
		{name: "zero removes", qty: 0},
		{name: "negative removes", qty: -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newCart(t)
			require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5), 3))

			require.NoError(t, c.UpdateQuantity(ctx, 1, tc.qty))

			l, ok := c.Line(1)
			assert.Equal(t, tc.present, ok)
			if tc.present {
				assert.Equal(t, tc.want, l.Quantity)
			}
		})
	}
}

func TestUpdateQuantity_UnknownProductIsNoop(t *testing.T) {
	c, _ := newCart(t)
	require.NoError(t, c.UpdateQuantity(context.Background(), 42, 3))
	assert.True(t, c.IsEmpty())
}

func TestCountAndTotal_TrackEveryMutation(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)

	assert.Equal(t, 0, c.Count())
	assert.Zero(t, c.Total())

	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5.99), 2))
	require.NoError(t, c.AddToCart(ctx, testutil.Product(2, "Advil", 10), 1))
	assert.Equal(t, 3, c.Count())
	assert.InDelta(t, 21.98, c.Total(), 1e-9)

	require.NoError(t, c.UpdateQuantity(ctx, 2, 4))
	assert.Equal(t, 6, c.Count())
	assert.InDelta(t, 51.98, c.Total(), 1e-9)

	require.NoError(t, c.RemoveFromCart(ctx, 1))
	assert.Equal(t, 4, c.Count())
	assert.InDelta(t, 40.0, c.Total(), 1e-9)

	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Count())
	assert.Zero(t, c.Total())
}

func TestMerge(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)
	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5), 2))

	incoming := []Line{
		{Product: testutil.Product(1, "Aspirin", 5), Quantity: 3},
		{Product: testutil.Product(3, "Claritin", 12), Quantity: 1},
		{Product: testutil.Product(4, "Zyrtec", 18), Quantity: 0},
	}
	require.NoError(t, c.Merge(ctx, incoming))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 3, lines[1].ID)
	assert.Equal(t, t0, lines[1].AddedAt)
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, store := newCart(t)
	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5.99), 2))
	require.NoError(t, c.AddToCart(ctx, testutil.Product(7, "Zyrtec", 18.99), 1))

	reloaded, err := Load(ctx, store)
	require.NoError(t, err)

	got := map[int]int{}
	for _, l := range reloaded.Lines() {
		got[l.ID] = l.Quantity
	}
	assert.Equal(t, map[int]int{1: 2, 7: 1}, got)
	assert.InDelta(t, c.Total(), reloaded.Total(), 1e-9)
}

func TestPersistence_BlobShape(t *testing.T) {
	ctx := context.Background()
	c, store := newCart(t)
	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5.99), 2))

	data, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":1`)
	assert.Contains(t, string(data), `"quantity":2`)
	assert.Contains(t, string(data), `"addedAt":"2025-03-01T09:00:00Z"`)

	require.NoError(t, c.Clear(ctx))
	data, err = store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestLoad_Missing(t *testing.T) {
	c, err := Load(context.Background(), storage.NewMemory())
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestLoad_Corrupt(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, StorageKey, []byte(`{"not":"a list"}`)))

	_, err := Load(ctx, store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode stored cart")
}

func TestSaveFailure_LeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	c, _ := newCart(t)
	require.NoError(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5), 1))

	c.store = failingStore{Storage: c.store}
	require.Error(t, c.AddToCart(ctx, testutil.Product(1, "Aspirin", 5), 1))
	require.Error(t, c.Clear(ctx))

	assert.Equal(t, 1, c.Count())
}
