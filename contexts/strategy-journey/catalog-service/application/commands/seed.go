package commands

import (
	"context"
	"log/slog"
	"strings"

	application "jornada/contexts/strategy-journey/catalog-service/application"
	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/catalog-service/domain/errors"
	"jornada/contexts/strategy-journey/catalog-service/ports"
)

type SeedCatalogCommand struct {
	Pillars []entities.Pillar
	Actions []entities.Action
}

type SeedResult struct {
	Pillars int
	Actions int
}

type SeedCatalogUseCase struct {
	Writer ports.CatalogWriter
	Logger *slog.Logger
}

// SeedCatalog validates the whole catalog before writing any of it. Pillar
// and action ids must be unique and every action must belong to a listed
// pillar.
func (uc SeedCatalogUseCase) SeedCatalog(ctx context.Context, cmd SeedCatalogCommand) (SeedResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := validateCatalog(cmd); err != nil {
		logger.Warn("catalog seed rejected",
			"event", "catalog_seed_rejected",
			"module", "strategy-journey/catalog-service",
			"layer", "application",
			"error", err.Error(),
		)
		return SeedResult{}, err
	}
	for _, pillar := range cmd.Pillars {
		if err := uc.Writer.UpsertPillar(ctx, pillar); err != nil {
			return SeedResult{}, err
		}
	}
	for _, action := range cmd.Actions {
		if err := uc.Writer.UpsertAction(ctx, action); err != nil {
			return SeedResult{}, err
		}
	}
	logger.Info("catalog seeded",
		"event", "catalog_seeded",
		"module", "strategy-journey/catalog-service",
		"layer", "application",
		"pillars", len(cmd.Pillars),
		"actions", len(cmd.Actions),
	)
	return SeedResult{Pillars: len(cmd.Pillars), Actions: len(cmd.Actions)}, nil
}

func validateCatalog(cmd SeedCatalogCommand) error {
	if len(cmd.Pillars) == 0 {
		return domainerrors.ErrInvalidCatalog
	}
	pillars := make(map[string]struct{}, len(cmd.Pillars))
	for _, pillar := range cmd.Pillars {
		id := strings.TrimSpace(pillar.PillarID)
		if id == "" || strings.TrimSpace(pillar.Name) == "" {
			return domainerrors.ErrInvalidCatalog
		}
		if _, dup := pillars[id]; dup {
			return domainerrors.ErrInvalidCatalog
		}
		pillars[id] = struct{}{}
	}
	actions := make(map[string]struct{}, len(cmd.Actions))
	for _, action := range cmd.Actions {
		id := strings.TrimSpace(action.ActionID)
		if id == "" || strings.TrimSpace(action.Title) == "" {
			return domainerrors.ErrInvalidCatalog
		}
		if _, ok := pillars[strings.TrimSpace(action.PillarID)]; !ok {
			return domainerrors.ErrInvalidCatalog
		}
		if _, dup := actions[id]; dup {
			return domainerrors.ErrInvalidCatalog
		}
		actions[id] = struct{}{}
	}
	return nil
}
