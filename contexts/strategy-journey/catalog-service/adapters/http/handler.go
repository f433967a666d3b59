package httpadapter

import (
	"context"
	"log/slog"

	"jornada/contexts/strategy-journey/catalog-service/application/queries"
	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
	httptransport "jornada/contexts/strategy-journey/catalog-service/transport/http"
)

type Handler struct {
	Catalog queries.CatalogUseCase
	Logger  *slog.Logger
}

func (h Handler) ListPillarsHandler(ctx context.Context, sessionID string) (httptransport.ListPillarsResponse, error) {
	pillars, err := h.Catalog.ListPillars(ctx, sessionID)
	if err != nil {
		return httptransport.ListPillarsResponse{}, err
	}
	items := make([]httptransport.PillarResponse, 0, len(pillars))
	for _, pillar := range pillars {
		item := mapPillar(pillar.Pillar)
		item.IsCompleted = pillar.Status.IsCompleted
		item.CompletedAt = pillar.Status.CompletedAt
		items = append(items, item)
	}
	return httptransport.ListPillarsResponse{Items: items}, nil
}

func (h Handler) GetPillarHandler(ctx context.Context, pillarID string) (httptransport.PillarResponse, error) {
	pillar, err := h.Catalog.GetPillar(ctx, pillarID)
	if err != nil {
		return httptransport.PillarResponse{}, err
	}
	return mapPillar(pillar), nil
}

func (h Handler) ListActionsHandler(ctx context.Context, pillarID string) (httptransport.ListActionsResponse, error) {
	actions, err := h.Catalog.ListActions(ctx, pillarID)
	if err != nil {
		return httptransport.ListActionsResponse{}, err
	}
	items := make([]httptransport.ActionResponse, 0, len(actions))
	for _, action := range actions {
		items = append(items, httptransport.ActionResponse{
			ActionID:    action.ActionID,
			PillarID:    action.PillarID,
			Title:       action.Title,
			Description: action.Description,
		})
	}
	return httptransport.ListActionsResponse{Items: items}, nil
}

func (h Handler) PillarStatusHandler(ctx context.Context, sessionID string, pillarID string) (httptransport.PillarStatusResponse, error) {
	status, err := h.Catalog.GetSessionPillarStatus(ctx, sessionID, pillarID)
	if err != nil {
		return httptransport.PillarStatusResponse{}, err
	}
	return httptransport.PillarStatusResponse{
		PillarID:    status.PillarID,
		IsCompleted: status.IsCompleted,
		CompletedAt: status.CompletedAt,
	}, nil
}

func mapPillar(pillar entities.Pillar) httptransport.PillarResponse {
	return httptransport.PillarResponse{
		PillarID:    pillar.PillarID,
		Name:        pillar.Name,
		Description: pillar.Description,
		Color:       pillar.Color,
		Icon:        pillar.Icon,
	}
}
