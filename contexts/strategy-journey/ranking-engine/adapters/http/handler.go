package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"jornada/contexts/strategy-journey/ranking-engine/application/commands"
	"jornada/contexts/strategy-journey/ranking-engine/application/queries"
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	httptransport "jornada/contexts/strategy-journey/ranking-engine/transport/http"
)

type Handler struct {
	Rankings      commands.RankingUseCase
	Confessionals commands.ConfessionalUseCase
	Achievements  queries.AchievementUseCase
	Dashboard     queries.DashboardUseCase
	Logger        *slog.Logger
}

func (h Handler) GetRankingHandler(ctx context.Context, sessionID string, pillarID string) (httptransport.RankingResponse, error) {
	view, err := h.Rankings.OpenRanking(ctx, sessionID, pillarID)
	if err != nil {
		return httptransport.RankingResponse{}, err
	}
	return mapRanking(view), nil
}

func (h Handler) ApplyOperationHandler(
	ctx context.Context,
	sessionID string,
	pillarID string,
	req httptransport.OperationRequest,
) (httptransport.OperationResponse, error) {
	result, err := h.Rankings.ApplyOperation(ctx, commands.ApplyOperationCommand{
		SessionID: sessionID,
		PillarID:  pillarID,
		Operation: ranking.Operation{
			Kind:      ranking.OperationKind(strings.TrimSpace(req.Kind)),
			ActionID:  req.ActionID,
			Direction: entities.Direction(strings.ToLower(strings.TrimSpace(req.Direction))),
			Position:  req.Position,
			FromIndex: req.FromIndex,
			ToIndex:   req.ToIndex,
		},
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return httptransport.OperationResponse{}, err
	}
	return mapOperation(result), nil
}

func (h Handler) ApplyGestureHandler(
	ctx context.Context,
	sessionID string,
	pillarID string,
	req httptransport.GestureRequest,
) (httptransport.OperationResponse, error) {
	events := make([]ranking.GestureEvent, 0, len(req.Events))
	for _, event := range req.Events {
		events = append(events, ranking.GestureEvent{
			Type:  ranking.GestureEventType(strings.TrimSpace(event.Type)),
			Index: event.Index,
			Y:     event.Y,
			At:    event.At,
		})
	}
	result, err := h.Rankings.ApplyGestureTrace(ctx, commands.GestureTraceCommand{
		SessionID:       sessionID,
		PillarID:        pillarID,
		Modality:        ranking.Modality(strings.TrimSpace(req.Modality)),
		Events:          events,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return httptransport.OperationResponse{}, err
	}
	return mapOperation(result), nil
}

func (h Handler) ApplySlotPickHandler(
	ctx context.Context,
	sessionID string,
	pillarID string,
	req httptransport.SlotPickRequest,
) (httptransport.OperationResponse, error) {
	result, err := h.Rankings.ApplySlotPick(ctx, commands.SlotPickCommand{
		SessionID:       sessionID,
		PillarID:        pillarID,
		ActionID:        req.ActionID,
		Position:        req.Position,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return httptransport.OperationResponse{}, err
	}
	return mapOperation(result), nil
}

func (h Handler) FinalizeRankingHandler(ctx context.Context, sessionID string, pillarID string) (httptransport.FinalizeResponse, error) {
	result, err := h.Rankings.FinalizeRanking(ctx, commands.FinalizeRankingCommand{
		SessionID: sessionID,
		PillarID:  pillarID,
	})
	if err != nil {
		return httptransport.FinalizeResponse{}, err
	}
	order := make([]httptransport.RankedActionItem, 0, len(result.Order))
	for _, item := range result.Order {
		order = append(order, httptransport.RankedActionItem{ActionID: item.ActionID, Rank: item.Rank})
	}
	return httptransport.FinalizeResponse{
		Ranking:          mapRanking(result.View),
		Order:            order,
		JourneyCompleted: result.JourneyCompleted,
	}, nil
}

func (h Handler) SaveConfessionalHandler(
	ctx context.Context,
	sessionID string,
	pillarID string,
	req httptransport.ConfessionalRequest,
) (httptransport.ConfessionalResponse, error) {
	saved, err := h.Confessionals.SaveConfessional(ctx, commands.SaveConfessionalCommand{
		SessionID:  sessionID,
		PillarID:   pillarID,
		Confession: req.Confession,
	})
	if err != nil {
		return httptransport.ConfessionalResponse{}, err
	}
	return httptransport.ConfessionalResponse{
		ConfessionalID: saved.ConfessionalID,
		PillarID:       saved.PillarID,
		TopAction:      saved.TopAction,
		Confession:     saved.Confession,
		SubmittedAt:    saved.SubmittedAt,
	}, nil
}

func (h Handler) GetAchievementHandler(ctx context.Context, sessionID string) (httptransport.AchievementResponse, error) {
	achievement, err := h.Achievements.GetAchievement(ctx, sessionID)
	if err != nil {
		return httptransport.AchievementResponse{}, err
	}
	return mapAchievement(achievement), nil
}

func (h Handler) SharedAchievementHandler(ctx context.Context, shareCode string) (httptransport.AchievementResponse, error) {
	achievement, err := h.Achievements.SharedAchievement(ctx, shareCode)
	if err != nil {
		return httptransport.AchievementResponse{}, err
	}
	return mapAchievement(achievement), nil
}

func (h Handler) MeetingDashboardHandler(ctx context.Context, meetingID string) (httptransport.DashboardResponse, error) {
	dashboard, err := h.Dashboard.MeetingDashboard(ctx, meetingID)
	if err != nil {
		return httptransport.DashboardResponse{}, err
	}
	standings := make([]httptransport.ActionStandingItem, 0, len(dashboard.TopActions))
	for _, item := range dashboard.TopActions {
		standings = append(standings, httptransport.ActionStandingItem{
			ActionID:    item.ActionID,
			PillarID:    item.PillarID,
			Title:       item.Title,
			TotalRank1:  item.TotalRank1,
			AvgRank:     item.AvgRank,
			TotalPoints: item.TotalPoints,
			Rankings:    item.Rankings,
		})
	}
	insights := make([]httptransport.PillarInsightsItem, 0, len(dashboard.Confessionals))
	for _, item := range dashboard.Confessionals {
		insights = append(insights, httptransport.PillarInsightsItem{
			PillarID: item.PillarID,
			Name:     item.Name,
			Insights: item.Insights,
		})
	}
	return httptransport.DashboardResponse{
		MeetingID:     dashboard.MeetingID,
		Title:         dashboard.Title,
		TotalSessions: dashboard.TotalSessions,
		TopActions:    standings,
		Confessionals: insights,
	}, nil
}

func mapOperation(result commands.OperationResult) httptransport.OperationResponse {
	return httptransport.OperationResponse{
		Ranking: mapRanking(result.View),
		Changed: result.Outcome.Changed,
		Reason:  string(result.Outcome.Reason),
	}
}

func mapRanking(view commands.RankingView) httptransport.RankingResponse {
	animating := make(map[string]struct{}, len(view.Markers))
	for _, marker := range view.Markers {
		animating[marker.ActionID] = struct{}{}
	}
	ranked := make([]httptransport.RankedItem, 0, len(view.Ranked))
	for i, action := range view.Ranked {
		_, active := animating[action.ActionID]
		ranked = append(ranked, httptransport.RankedItem{
			Position:  i + 1,
			Action:    mapAction(action),
			Animating: active,
		})
	}
	unranked := make([]httptransport.ActionItem, 0, len(view.Unranked))
	for _, action := range view.Unranked {
		unranked = append(unranked, mapAction(action))
	}
	return httptransport.RankingResponse{
		SessionID: view.SessionID,
		Pillar: httptransport.PillarSummary{
			PillarID:    view.Pillar.PillarID,
			Name:        view.Pillar.Name,
			Description: view.Pillar.Description,
			Color:       view.Pillar.Color,
			Icon:        view.Pillar.Icon,
		},
		Phase:    string(view.Phase),
		Version:  view.Version,
		Total:    view.Total,
		Ranked:   ranked,
		Unranked: unranked,
	}
}

func mapAction(action entities.Action) httptransport.ActionItem {
	return httptransport.ActionItem{
		ActionID:    action.ActionID,
		PillarID:    action.PillarID,
		Title:       action.Title,
		Description: action.Description,
	}
}

func mapAchievement(achievement entities.Achievement) httptransport.AchievementResponse {
	pillars := make([]httptransport.PillarProgressItem, 0, len(achievement.Pillars))
	for _, pillar := range achievement.Pillars {
		item := httptransport.PillarProgressItem{
			PillarID:        pillar.PillarID,
			Name:            pillar.Name,
			Color:           pillar.Color,
			Icon:            pillar.Icon,
			IsCompleted:     pillar.IsCompleted,
			CompletedAt:     pillar.CompletedAt,
			HasConfessional: pillar.HasConfessional,
		}
		if pillar.TopAction != nil {
			top := mapAction(*pillar.TopAction)
			item.TopAction = &top
		}
		pillars = append(pillars, item)
	}
	return httptransport.AchievementResponse{
		SessionID:  achievement.SessionID,
		MeetingID:  achievement.MeetingID,
		Nickname:   achievement.Nickname,
		Unlocked:   achievement.Unlocked,
		UnlockedAt: achievement.UnlockedAt,
		ShareCode:  achievement.ShareCode,
		Pillars:    pillars,
	}
}
