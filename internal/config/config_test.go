package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.CartBackend)
	assert.Equal(t, 100.0, cfg.Pricing.FreeDeliveryThreshold)
	assert.Equal(t, 20.0, cfg.Pricing.FlatDeliveryFee)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := `
http_port: "9090"
cart_backend: redis
cart_ttl: 720h
pricing:
  currency_symbol: "₹"
  free_delivery_threshold: 500
  flat_delivery_fee: 40
kafka_brokers: ["k1:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("FLAT_DELIVERY_FEE", "35.5")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.CartBackend)
	assert.Equal(t, 720*time.Hour, cfg.CartTTL)
	assert.Equal(t, "₹", cfg.Pricing.CurrencySymbol)
	assert.Equal(t, 500.0, cfg.Pricing.FreeDeliveryThreshold)
	assert.Equal(t, 35.5, cfg.Pricing.FlatDeliveryFee)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("FREE_DELIVERY_THRESHOLD", "0")
	_, err := Load("")
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
}

func TestLoad_NegativeFee(t *testing.T) {
	t.Setenv("FLAT_DELIVERY_FEE", "-1")
	_, err := Load("")
	assert.ErrorIs(t, err, domain.ErrInvalidDeliveryFee)
}

func TestLoad_BadNumber(t *testing.T) {
	t.Setenv("FREE_DELIVERY_THRESHOLD", "lots")
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid FREE_DELIVERY_THRESHOLD")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("CART_BACKEND", "localstorage")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestLoad_SessionAndPoolSettings(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, uint64(50), cfg.MongoMaxPool)
	assert.Equal(t, uint64(2), cfg.MongoMinPool)

	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("MONGO_MAX_POOL_SIZE", "20")
	t.Setenv("MONGO_MIN_POOL_SIZE", "4")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, uint64(20), cfg.MongoMaxPool)
	assert.Equal(t, uint64(4), cfg.MongoMinPool)
}

func TestLoad_InvertedMongoPool(t *testing.T) {
	t.Setenv("MONGO_MAX_POOL_SIZE", "2")
	t.Setenv("MONGO_MIN_POOL_SIZE", "8")
	_, err := Load("")
	assert.ErrorContains(t, err, "mongo min pool size")
}
