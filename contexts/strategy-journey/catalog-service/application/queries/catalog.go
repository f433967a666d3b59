package queries

import (
	"context"
	"sort"
	"strings"

	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/catalog-service/domain/errors"
	"jornada/contexts/strategy-journey/catalog-service/ports"
)

type CatalogUseCase struct {
	Catalog ports.CatalogRepository
}

// ListPillars returns every pillar ordered by name with the session's
// completion flags.
func (uc CatalogUseCase) ListPillars(ctx context.Context, sessionID string) ([]entities.PillarWithStatus, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domainerrors.ErrInvalidSessionID
	}
	pillars, err := uc.Catalog.ListPillars(ctx)
	if err != nil {
		return nil, err
	}
	statuses, err := uc.Catalog.ListSessionPillars(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	byPillar := make(map[string]entities.PillarStatus, len(statuses))
	for _, status := range statuses {
		byPillar[status.PillarID] = status
	}

	sort.SliceStable(pillars, func(i, j int) bool {
		return pillars[i].Name < pillars[j].Name
	})
	items := make([]entities.PillarWithStatus, 0, len(pillars))
	for _, pillar := range pillars {
		status, ok := byPillar[pillar.PillarID]
		if !ok {
			status = entities.PillarStatus{PillarID: pillar.PillarID}
		}
		items = append(items, entities.PillarWithStatus{Pillar: pillar, Status: status})
	}
	return items, nil
}

func (uc CatalogUseCase) GetPillar(ctx context.Context, pillarID string) (entities.Pillar, error) {
	pillarID = strings.TrimSpace(pillarID)
	if pillarID == "" {
		return entities.Pillar{}, domainerrors.ErrPillarNotFound
	}
	return uc.Catalog.GetPillar(ctx, pillarID)
}

// ListActions returns the actions of an existing pillar ordered by title.
func (uc CatalogUseCase) ListActions(ctx context.Context, pillarID string) ([]entities.Action, error) {
	pillar, err := uc.GetPillar(ctx, pillarID)
	if err != nil {
		return nil, err
	}
	actions, err := uc.Catalog.ListActions(ctx, pillar.PillarID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Title < actions[j].Title
	})
	return actions, nil
}

func (uc CatalogUseCase) GetSessionPillarStatus(ctx context.Context, sessionID string, pillarID string) (entities.PillarStatus, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.PillarStatus{}, domainerrors.ErrInvalidSessionID
	}
	pillar, err := uc.GetPillar(ctx, pillarID)
	if err != nil {
		return entities.PillarStatus{}, err
	}
	statuses, err := uc.Catalog.ListSessionPillars(ctx, sessionID)
	if err != nil {
		return entities.PillarStatus{}, err
	}
	for _, status := range statuses {
		if status.PillarID == pillar.PillarID {
			return status, nil
		}
	}
	return entities.PillarStatus{PillarID: pillar.PillarID}, nil
}
