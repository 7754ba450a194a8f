package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

var ErrUnknownBackend = errors.New("unknown cart backend")

type Config struct {
	HTTPPort        string        `yaml:"http_port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Pricing domain.PricingConfig `yaml:"pricing"`

	CartBackend     string        `yaml:"cart_backend"`
	CartTTL         time.Duration `yaml:"cart_ttl"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDBName   string `yaml:"mongo_db_name"`
	MongoMaxPool  uint64 `yaml:"mongo_max_pool_size"`
	MongoMinPool  uint64 `yaml:"mongo_min_pool_size"`

	CatalogDBPath          string        `yaml:"catalog_db_path"`
	CatalogRefreshInterval time.Duration `yaml:"catalog_refresh_interval"`
	// SessionIdleTimeout evicts in-memory sessions; zero keeps them.
	SessionIdleTimeout     time.Duration `yaml:"session_idle_timeout"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
}

func Default() *Config {
	return &Config{
		HTTPPort:        "8080",
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Pricing: domain.PricingConfig{
			CurrencySymbol:        "$",
			FreeDeliveryThreshold: 100,
			FlatDeliveryFee:       20,
		},
		CartBackend:            BackendMemory,
		BreakerFailures:        5,
		BreakerCooldown:        30 * time.Second,
		RedisAddr:              "localhost:6379",
		MongoURI:               "mongodb://localhost:27017",
		MongoDBName:            "cartdb",
		MongoMaxPool:           50,
		MongoMinPool:           2,
		CatalogDBPath:          "catalog.db",
		CatalogRefreshInterval: time.Minute,
		SessionIdleTimeout:     30 * time.Minute,
	}
}

// Load applies, in order, defaults, the YAML file at path (if path is not
// empty) and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Pricing.Validate(); err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}
	switch c.CartBackend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.CartBackend)
	}
	if c.CatalogRefreshInterval <= 0 {
		return errors.New("catalog refresh interval must be positive")
	}
	if c.SessionIdleTimeout < 0 {
		return errors.New("session idle timeout must not be negative")
	}
	if c.MongoMinPool > c.MongoMaxPool {
		return fmt.Errorf("mongo min pool size %d exceeds max %d", c.MongoMinPool, c.MongoMaxPool)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.CartBackend = getEnv("CART_BACKEND", c.CartBackend)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.MongoDBName = getEnv("MONGO_DB_NAME", c.MongoDBName)
	c.CatalogDBPath = getEnv("CATALOG_DB_PATH", c.CatalogDBPath)
	c.Pricing.CurrencySymbol = getEnv("CURRENCY_SYMBOL", c.Pricing.CurrencySymbol)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.KafkaBrokers = strings.Split(brokers, ",")
	}

	var err error
	if c.Pricing.FreeDeliveryThreshold, err = getEnvFloat("FREE_DELIVERY_THRESHOLD", c.Pricing.FreeDeliveryThreshold); err != nil {
		return err
	}
	if c.Pricing.FlatDeliveryFee, err = getEnvFloat("FLAT_DELIVERY_FEE", c.Pricing.FlatDeliveryFee); err != nil {
		return err
	}
	if c.CartTTL, err = getEnvDuration("CART_TTL", c.CartTTL); err != nil {
		return err
	}
	if c.CatalogRefreshInterval, err = getEnvDuration("CATALOG_REFRESH_INTERVAL", c.CatalogRefreshInterval); err != nil {
		return err
	}
	if c.SessionIdleTimeout, err = getEnvDuration("SESSION_IDLE_TIMEOUT", c.SessionIdleTimeout); err != nil {
		return err
	}
	if c.MongoMaxPool, err = getEnvUint("MONGO_MAX_POOL_SIZE", c.MongoMaxPool); err != nil {
		return err
	}
	if c.MongoMinPool, err = getEnvUint("MONGO_MIN_POOL_SIZE", c.MongoMinPool); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
