package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("JWT_TTL", "")

	cfg, err := LoadServer()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.MigrateOnStart)
}

func TestLoadServer_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("JWT_TTL", "1h")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("PRODUCT_CACHE_TTL", "not-a-duration")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadServer()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadServer_JWTSecretRules(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadServer()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)

	t.Setenv("JWT_SECRET", "short")
	_, err = LoadServer()
	assert.ErrorIs(t, err, ErrShortJWTSecret)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("STOREFRONT_STATE_DIR", "/tmp/shopper")
	t.Setenv("CART_SYNC_DEBOUNCE", "250ms")
	t.Setenv("STOREFRONT_EPHEMERAL", "true")

	cfg := LoadClient()

	assert.Equal(t, "/tmp/shopper", cfg.StateDir)
	assert.Equal(t, 250*time.Millisecond, cfg.SyncDebounce)
	assert.Equal(t, 2*time.Second, cfg.FlushTimeout)
	assert.True(t, cfg.Ephemeral)
}

func TestLoadNotifier(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	_, err := LoadNotifier()
	assert.ErrorIs(t, err, ErrMissingBrokers)

	t.Setenv("KAFKA_BROKERS", "kafka:9092")
	t.Setenv("NOTIFY_EMAIL", "ops@shop.test")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := LoadNotifier()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "storefront-events", cfg.KafkaTopic)
	assert.Equal(t, "ops@shop.test", cfg.NotifyEmail)
	assert.Equal(t, "console", cfg.LogFormat)
}
