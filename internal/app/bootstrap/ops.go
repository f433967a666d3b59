package bootstrap

import (
	"errors"
	"log/slog"
	"strings"

	catalogservice "jornada/contexts/strategy-journey/catalog-service"
	catalogpostgres "jornada/contexts/strategy-journey/catalog-service/adapters/postgres"
	sessionservice "jornada/contexts/strategy-journey/session-service"
	sessionpostgres "jornada/contexts/strategy-journey/session-service/adapters/postgres"
	"jornada/internal/platform/config"
	"jornada/internal/platform/db"
)

// OpsApp backs the operator CLI: schema migrations, catalog seeding and
// meeting codes.
type OpsApp struct {
	Postgres *db.Postgres
	Catalog  catalogservice.Module
	Sessions sessionservice.Module
	Logger   *slog.Logger
}

func BuildOps() (*OpsApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, "ops")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return nil, err
	}

	catalogRepo := catalogpostgres.NewRepository(pg.DB, logger)
	sessionRepo := sessionpostgres.NewRepository(pg.DB, logger)
	return &OpsApp{
		Postgres: pg,
		Catalog: catalogservice.NewModule(catalogservice.Dependencies{
			Catalog: catalogRepo,
			Writer:  catalogRepo,
			Logger:  logger,
		}),
		Sessions: sessionservice.NewModule(sessionservice.Dependencies{
			Sessions: sessionRepo,
			Admin:    sessionRepo,
			Clock:    sessionpostgres.SystemClock{},
			IDGen:    sessionpostgres.UUIDGenerator{},
			Logger:   logger,
		}),
		Logger: logger,
	}, nil
}

func (o *OpsApp) Close() error {
	if o.Postgres != nil {
		return o.Postgres.Close()
	}
	return nil
}
