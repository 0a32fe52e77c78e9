package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/testutil"
	"github.com/Skotchmaster/pharmacy_shop/internal/validate"
)

func TestReadProducts_SeedFile(t *testing.T) {
	reqs, err := readProducts(filepath.Join("..", "..", "data", "products.json"))
	require.NoError(t, err)
	require.Len(t, reqs, 10)
	assert.Equal(t, 1, reqs[0].ID)
	assert.Equal(t, "Aspirin", reqs[0].Brand)
	require.NotNil(t, reqs[0].Price)
	assert.InDelta(t, 5.99, *reqs[0].Price, 1e-9)
}

func TestReadProducts_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0o600))

	_, err := readProducts(path)
	require.Error(t, err)
}

func TestSeedFile_ImportsCleanly(t *testing.T) {
	db := testutil.OpenInMemoryDB(t)
	svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}, Validator: validate.New()}

	reqs, err := readProducts(filepath.Join("..", "..", "data", "products.json"))
	require.NoError(t, err)

	n, err := svc.Import(context.Background(), reqs)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 10)
}
