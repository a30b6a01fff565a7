package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsAndEnvExpansion(t *testing.T) {
	t.Setenv("HARBORHOP_TEST_STRIPE_KEY", "sk_test_123")

	path := writeConfig(t, `
database:
  host: db
  user: harbor
  password: secret
  name: harborhop
payment:
  stripe_secret_key: ${HARBORHOP_TEST_STRIPE_KEY}
booking:
  timezone: Asia/Manila
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sk_test_123", cfg.Payment.StripeSecretKey)
	assert.Equal(t, "php", cfg.Payment.Currency)
	assert.Equal(t, "HH", cfg.Booking.ReferencePrefix)
	assert.Equal(t, 2*time.Hour, cfg.Booking.ReserveLead())
	assert.Equal(t, 48*time.Hour, cfg.Booking.Hold())
	assert.Equal(t, 90*time.Minute, cfg.Booking.Cutoff())
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres://harbor:secret@db:5432/harborhop?sslmode=disable", cfg.Database.URL())

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Manila", loc.String())
}

func TestLoadConfig_BadTimezone(t *testing.T) {
	path := writeConfig(t, "booking:\n  timezone: Mars/Olympus\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLogConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{}.SlogLevel())
}

func TestVoyagesConfig_Durations(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, 10*time.Minute, cfg.Voyages.RoutesCacheTTL())
	assert.Equal(t, 5*time.Minute, cfg.Voyages.SearchCacheTTL())
	assert.Equal(t, 25*time.Second, cfg.Voyages.Timeout())
	assert.Equal(t, 3, cfg.Kafka.PublishRetries)
}
