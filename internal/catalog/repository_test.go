package catalog_test

import (
	"context"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *catalog.Repository {
	repo, err := catalog.NewRepository(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test repository: %v", err)
	}

	if err := repo.RunMigrations(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return repo
}

func TestList_ReturnsSeedInOrder(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 8)

	assert.Equal(t, "gd46g23h", products[0].ID)
	assert.Equal(t, "Potato 500g", products[0].Name)
	assert.Equal(t, 20.0, products[0].OfferPrice)
	assert.Equal(t, []string{"potato_image_1.png", "potato_image_2.png"}, products[0].Images)
	for _, p := range products {
		assert.NoError(t, p.Validate())
	}
}

func TestList_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx)
	assert.ErrorContains(t, err, "context canceled")
}

func TestGet(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	p, err := repo.Get(context.Background(), "ek52j23k")
	require.NoError(t, err)
	assert.Equal(t, "Banana 1 kg", p.Name)
	assert.False(t, p.InStock)

	_, err = repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpsertAndDelete(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()
	ctx := context.Background()

	updated := domain.Product{ID: "gd46g23h", Name: "Potato 1kg", Category: "Vegetables", Price: 45, OfferPrice: 38, InStock: true, Images: []string{"p.png"}}
	require.NoError(t, repo.Upsert(ctx, updated))
	require.NoError(t, repo.Upsert(ctx, domain.Product{ID: "new1", Name: "Eggs 12", Category: "Dairy", Price: 80, OfferPrice: 80}))

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 9)
	assert.Equal(t, updated, products[0], "upsert keeps catalog position")
	assert.Equal(t, "new1", products[8].ID)

	require.NoError(t, repo.Delete(ctx, "new1"))
	assert.ErrorIs(t, repo.Delete(ctx, "new1"), catalog.ErrProductNotFound)
}

func TestUpsert_RejectsInvalidPrice(t *testing.T) {
	repo := setupTestDB(t)
	defer repo.Close()

	err := repo.Upsert(context.Background(), domain.Product{ID: "x", Price: 10, OfferPrice: 12})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}
