package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCatalog(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func useTempCatalog(t *testing.T) {
	t.Helper()
	t.Setenv("CATALOG_DB_PATH", filepath.Join(t.TempDir(), "catalog.db"))
}

func listProducts(t *testing.T) []domain.Product {
	t.Helper()
	out, err := runCatalog(t, "list", "--json")
	require.NoError(t, err)
	var products []domain.Product
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	return products
}

func TestCatalogList(t *testing.T) {
	useTempCatalog(t)

	out, err := runCatalog(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Potato 500g")
	assert.Contains(t, out, "out of stock")

	products := listProducts(t)
	require.Len(t, products, 8)
	assert.Equal(t, "gd46g23h", products[0].ID)
}

func TestCatalogSet_CreatesAndUpdates(t *testing.T) {
	useTempCatalog(t)

	out, err := runCatalog(t, "set", "zz01", "--name", "Oat Milk 1L", "--category", "Dairy",
		"--price", "80", "--offer-price", "72.5", "--image", "oat.png")
	require.NoError(t, err)
	assert.Contains(t, out, "saved zz01")

	_, err = runCatalog(t, "set", "gd46g23h", "--name", "Potato 500g", "--category", "Vegetables",
		"--price", "25", "--offer-price", "18", "--out-of-stock")
	require.NoError(t, err)

	products := listProducts(t)
	require.Len(t, products, 9)
	assert.Equal(t, "gd46g23h", products[0].ID, "update keeps catalog position")
	assert.Equal(t, 18.0, products[0].OfferPrice)
	assert.False(t, products[0].InStock)

	last := products[len(products)-1]
	assert.Equal(t, "zz01", last.ID)
	assert.Equal(t, 72.5, last.OfferPrice)
	assert.Equal(t, []string{"oat.png"}, last.Images)
}

func TestCatalogSet_RejectsInvalidPrice(t *testing.T) {
	useTempCatalog(t)

	_, err := runCatalog(t, "set", "zz01", "--name", "Odd", "--price", "10", "--offer-price", "12")
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestCatalogSet_RequiresFlags(t *testing.T) {
	useTempCatalog(t)

	_, err := runCatalog(t, "set", "zz01", "--price", "10")
	require.Error(t, err)
}

func TestCatalogDelete(t *testing.T) {
	useTempCatalog(t)

	out, err := runCatalog(t, "delete", "ek52j23k")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted ek52j23k")
	assert.Len(t, listProducts(t), 7)

	_, err = runCatalog(t, "delete", "ek52j23k")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}
