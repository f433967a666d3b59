package config

import (
	"log/slog"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "jornada", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionCookieTTL)
	assert.Equal(t, 30, cfg.JoinRatePerMinute)
	assert.True(t, cfg.EnableAchievementConsumer)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Empty(t, cfg.TrustedProxyPrefixes())
	assert.Empty(t, cfg.DashboardToken)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "jornada-test")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092,")
	t.Setenv("DRAFT_TTL", "90m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENABLE_ACHIEVEMENT_CONSUMER", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "jornada-test", cfg.ServiceName)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Minute, cfg.DraftTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.False(t, cfg.EnableAchievementConsumer)
}

func TestLoadParsesTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7,")
	t.Setenv("DASHBOARD_TOKEN", " operator ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.7/32"),
	}, cfg.TrustedProxyPrefixes())
	assert.Equal(t, "operator", cfg.DashboardToken)

	t.Setenv("TRUSTED_PROXIES", "not-an-ip")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("JOIN_RATE_PER_MINUTE", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JOIN_RATE_PER_MINUTE", "10")
	t.Setenv("DRAFT_TTL", "soon")
	_, err = Load()
	assert.Error(t, err)
}
