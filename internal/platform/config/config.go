package config

import (
	"fmt"
	"log/slog"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `env:"SERVICE_NAME" envDefault:"jornada"`
	HTTPPort     string   `env:"HTTP_PORT" envDefault:"8080"`
	PostgresDSN  string   `env:"POSTGRES_DSN"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	DraftTTL      time.Duration `env:"DRAFT_TTL" envDefault:"24h"`

	SessionCookieTTL  time.Duration `env:"SESSION_COOKIE_TTL" envDefault:"24h"`
	CookieSecure      bool          `env:"COOKIE_SECURE" envDefault:"false"`
	JoinRatePerMinute int           `env:"JOIN_RATE_PER_MINUTE" envDefault:"30"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For header is
	// honored when resolving the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	// DashboardToken, when set, lets operators read any meeting dashboard with
	// an Authorization bearer token.
	DashboardToken string `env:"DASHBOARD_TOKEN"`

	OutboxPollInterval        time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	EnableAchievementConsumer bool          `env:"ENABLE_ACHIEVEMENT_CONSUMER" envDefault:"true"`

	trustedProxies []netip.Prefix
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	brokers := make([]string, 0, len(cfg.KafkaBrokers))
	for _, value := range cfg.KafkaBrokers {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	cfg.KafkaBrokers = brokers

	for _, value := range cfg.TrustedProxies {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		prefix, err := parseProxy(value)
		if err != nil {
			return Config{}, fmt.Errorf("TRUSTED_PROXIES entry %q: %w", value, err)
		}
		cfg.trustedProxies = append(cfg.trustedProxies, prefix)
	}
	cfg.DashboardToken = strings.TrimSpace(cfg.DashboardToken)

	if cfg.JoinRatePerMinute <= 0 {
		return Config{}, fmt.Errorf("JOIN_RATE_PER_MINUTE must be positive, got %d", cfg.JoinRatePerMinute)
	}
	if cfg.OutboxPollInterval <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive, got %s", cfg.OutboxPollInterval)
	}
	return cfg, nil
}

// TrustedProxyPrefixes returns the parsed TRUSTED_PROXIES entries.
func (c Config) TrustedProxyPrefixes() []netip.Prefix {
	return c.trustedProxies
}

func parseProxy(value string) (netip.Prefix, error) {
	if strings.Contains(value, "/") {
		prefix, err := netip.ParsePrefix(value)
		if err != nil {
			return netip.Prefix{}, err
		}
		return prefix.Masked(), nil
	}
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// SlogLevel maps LOG_LEVEL onto slog levels; unknown values fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
