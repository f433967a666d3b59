package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	catalogservice "jornada/contexts/strategy-journey/catalog-service"
	catalogpostgres "jornada/contexts/strategy-journey/catalog-service/adapters/postgres"
	rankingengine "jornada/contexts/strategy-journey/ranking-engine"
	rankingmemory "jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	rankingpostgres "jornada/contexts/strategy-journey/ranking-engine/adapters/postgres"
	rankingredis "jornada/contexts/strategy-journey/ranking-engine/adapters/redis"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
	sessionservice "jornada/contexts/strategy-journey/session-service"
	sessionpostgres "jornada/contexts/strategy-journey/session-service/adapters/postgres"
	"jornada/internal/platform/cache"
	"jornada/internal/platform/config"
	"jornada/internal/platform/db"
	"jornada/internal/platform/httpserver"
	"jornada/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const (
	outboxBatchSize = 100
	dedupTTL        = 7 * 24 * time.Hour
	dashboardTopN   = 10
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *cache.Redis
	logger   *slog.Logger
	// background runs next to the server in single-process deployments.
	background *WorkerApp
}

type WorkerApp struct {
	postgres     *db.Postgres
	bus          *messaging.Bus
	outboxRelay  outboxRunner
	journeys     consumerStarter
	pollInterval time.Duration
	logger       *slog.Logger
}

type outboxRunner interface {
	RunOnce(ctx context.Context) (int, error)
}

type consumerStarter interface {
	Start(ctx context.Context) error
}

func newLogger(cfg config.Config, process string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return slog.New(handler).With("service", cfg.ServiceName, "process", process)
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}

	var (
		drafts ports.DraftStore
		rdb    *cache.Redis
	)
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rdb, err = cache.Connect(cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		drafts = rankingredis.NewDraftStore(rdb.Client, cfg.DraftTTL, logger)
	} else {
		logger.Warn("redis not configured, drafts are process local",
			"event", "bootstrap_drafts_in_memory",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		drafts = rankingmemory.NewStore(rankingmemory.Seed{})
	}

	sessionRepo := sessionpostgres.NewRepository(pg.DB, logger)
	sessions := sessionservice.NewModule(sessionservice.Dependencies{
		Sessions: sessionRepo,
		Admin:    sessionRepo,
		Clock:    sessionpostgres.SystemClock{},
		IDGen:    sessionpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	catalogRepo := catalogpostgres.NewRepository(pg.DB, logger)
	catalog := catalogservice.NewModule(catalogservice.Dependencies{
		Catalog: catalogRepo,
		Writer:  catalogRepo,
		Logger:  logger,
	})

	rankings := newPostgresRankingModule(pg, drafts, nil, nil, cfg, logger)

	server := httpserver.New(sessions, catalog, rankings, httpserver.Options{
		Addr:              normalizeAddr(cfg.HTTPPort),
		CookieTTL:         cfg.SessionCookieTTL,
		CookieSecure:      cfg.CookieSecure,
		JoinRatePerMinute: cfg.JoinRatePerMinute,
		TrustedProxies:    cfg.TrustedProxyPrefixes(),
		DashboardToken:    cfg.DashboardToken,
		Logger:            logger,
	})
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    rdb,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	rankings := newPostgresRankingModule(pg, nil, bus, bus, cfg, logger)
	return &WorkerApp{
		postgres:     pg,
		bus:          bus,
		outboxRelay:  rankings.OutboxRelay,
		journeys:     rankings.JourneyConsumer,
		pollInterval: cfg.OutboxPollInterval,
		logger:       logger,
	}, nil
}

func newPostgresRankingModule(
	pg *db.Postgres,
	drafts ports.DraftStore,
	publisher ports.EventPublisher,
	subscriber ports.EventSubscriber,
	cfg config.Config,
	logger *slog.Logger,
) rankingengine.Module {
	repo := rankingpostgres.NewRepository(pg.DB, logger)
	return rankingengine.NewModule(rankingengine.Dependencies{
		Catalog:                    repo,
		Rankings:                   repo,
		Confessionals:              repo,
		Achievements:               repo,
		Dashboard:                  repo,
		Drafts:                     drafts,
		Outbox:                     repo,
		Dedup:                      repo,
		Clock:                      rankingpostgres.SystemClock{},
		IDGen:                      rankingpostgres.UUIDGenerator{},
		ShareCodes:                 rankingpostgres.ShareCodeGenerator{},
		Publisher:                  publisher,
		Subscriber:                 subscriber,
		Gestures:                   ranking.DefaultGestureConfig(),
		DashboardTopN:              dashboardTopN,
		OutboxBatchSize:            outboxBatchSize,
		DedupTTL:                   dedupTTL,
		DisableAchievementConsumer: !cfg.EnableAchievementConsumer,
		Logger:                     logger,
	})
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	if a.background != nil {
		go func() { errCh <- a.background.Run(runCtx) }()
	}
	go func() { errCh <- a.server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return a.server.Shutdown(shutdownCtx)
}

func (a *APIApp) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		errs = append(errs, a.postgres.Close())
	}
	return errors.Join(errs...)
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.journeys.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if _, err := w.outboxRelay.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("outbox relay cycle failed",
				"event", "bootstrap_outbox_cycle_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			if w.bus != nil {
				w.bus.Wait()
			}
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
