package ports

import (
	"context"

	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
)

type CatalogRepository interface {
	ListPillars(ctx context.Context) ([]entities.Pillar, error)
	GetPillar(ctx context.Context, pillarID string) (entities.Pillar, error)
	ListActions(ctx context.Context, pillarID string) ([]entities.Action, error)
	// ListSessionPillars returns only pillars with a session_pillars row.
	ListSessionPillars(ctx context.Context, sessionID string) ([]entities.PillarStatus, error)
}

type CatalogWriter interface {
	UpsertPillar(ctx context.Context, pillar entities.Pillar) error
	UpsertAction(ctx context.Context, action entities.Action) error
}
