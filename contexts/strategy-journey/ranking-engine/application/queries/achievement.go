package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "jornada/contexts/strategy-journey/ranking-engine/application"
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

type AchievementUseCase struct {
	Catalog       ports.ActionCatalog
	Rankings      ports.RankingRepository
	Confessionals ports.ConfessionalRepository
	Achievements  ports.AchievementRepository
	// ShareCodes, when set, lets the query issue a missing share code for an
	// unlocked journey whose completion event was never consumed.
	ShareCodes ports.ShareCodeGenerator
	Logger     *slog.Logger
}

// GetAchievement builds the per-pillar progress card of a session. The card is
// unlocked once every pillar is completed; the share code appears after the
// worker issued it, or on the first read of an unlocked card the worker missed.
func (uc AchievementUseCase) GetAchievement(ctx context.Context, sessionID string) (entities.Achievement, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.Achievement{}, domainerrors.ErrInvalidRankingInput
	}
	session, err := uc.Rankings.GetSession(ctx, sessionID)
	if err != nil {
		return entities.Achievement{}, err
	}
	pillars, err := uc.Catalog.ListPillars(ctx)
	if err != nil {
		return entities.Achievement{}, err
	}
	completions, err := uc.Rankings.ListPillarCompletions(ctx, sessionID)
	if err != nil {
		return entities.Achievement{}, err
	}
	confessionals, err := uc.Confessionals.ListConfessionals(ctx, sessionID)
	if err != nil {
		return entities.Achievement{}, err
	}

	completedAt := make(map[string]time.Time, len(completions))
	for _, completion := range completions {
		completedAt[completion.PillarID] = completion.CompletedAt
	}
	confessed := make(map[string]struct{}, len(confessionals))
	for _, confessional := range confessionals {
		confessed[confessional.PillarID] = struct{}{}
	}

	achievement := entities.Achievement{
		SessionID: session.SessionID,
		MeetingID: session.MeetingID,
		Nickname:  session.Nickname,
		Pillars:   make([]entities.PillarProgress, 0, len(pillars)),
	}
	var lastCompletion time.Time
	completedCount := 0
	for _, pillar := range pillars {
		progress := entities.PillarProgress{
			PillarID: pillar.PillarID,
			Name:     pillar.Name,
			Color:    pillar.Color,
			Icon:     pillar.Icon,
		}
		_, progress.HasConfessional = confessed[pillar.PillarID]
		if at, ok := completedAt[pillar.PillarID]; ok {
			completedCount++
			progress.IsCompleted = true
			progress.CompletedAt = &at
			if at.After(lastCompletion) {
				lastCompletion = at
			}
			top, found, err := uc.topAction(ctx, sessionID, pillar.PillarID)
			if err != nil {
				return entities.Achievement{}, err
			}
			if found {
				progress.TopAction = &top
			}
		}
		achievement.Pillars = append(achievement.Pillars, progress)
	}

	achievement.Unlocked = len(pillars) > 0 && completedCount == len(pillars)
	if achievement.Unlocked {
		achievement.UnlockedAt = &lastCompletion
	}
	record, found, err := uc.Achievements.GetAchievementRecord(ctx, sessionID)
	if err != nil {
		return entities.Achievement{}, err
	}
	if !found && achievement.Unlocked && uc.ShareCodes != nil {
		record, err = application.AchievementIssuer{
			Achievements: uc.Achievements,
			ShareCodes:   uc.ShareCodes,
			Logger:       uc.Logger,
		}.Issue(ctx, ports.AchievementRecord{
			SessionID:  session.SessionID,
			MeetingID:  session.MeetingID,
			Nickname:   session.Nickname,
			UnlockedAt: lastCompletion,
		})
		if err != nil {
			return entities.Achievement{}, err
		}
		found = true
		application.ResolveLogger(uc.Logger).Warn("achievement issued on read",
			"event", "ranking_achievement_issued_on_read",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", session.SessionID,
		)
	}
	if found {
		achievement.ShareCode = record.ShareCode
		unlockedAt := record.UnlockedAt
		achievement.UnlockedAt = &unlockedAt
	}
	return achievement, nil
}

// SharedAchievement resolves a public share code to its achievement card.
func (uc AchievementUseCase) SharedAchievement(ctx context.Context, shareCode string) (entities.Achievement, error) {
	shareCode = strings.ToUpper(strings.TrimSpace(shareCode))
	if shareCode == "" {
		return entities.Achievement{}, domainerrors.ErrAchievementNotFound
	}
	record, err := uc.Achievements.GetAchievementByShareCode(ctx, shareCode)
	if err != nil {
		return entities.Achievement{}, err
	}
	return uc.GetAchievement(ctx, record.SessionID)
}

func (uc AchievementUseCase) topAction(ctx context.Context, sessionID string, pillarID string) (entities.Action, bool, error) {
	actions, err := uc.Catalog.ListActions(ctx, pillarID)
	if err != nil {
		return entities.Action{}, false, err
	}
	byID := make(map[string]entities.Action, len(actions))
	ids := make([]string, 0, len(actions))
	for _, action := range actions {
		byID[action.ActionID] = action
		ids = append(ids, action.ActionID)
	}
	priorities, err := uc.Rankings.ListPriorities(ctx, sessionID, ids)
	if err != nil {
		return entities.Action{}, false, err
	}
	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].Rank < priorities[j].Rank
	})
	for _, priority := range priorities {
		if action, ok := byID[priority.ActionID]; ok {
			return action, true, nil
		}
	}
	return entities.Action{}, false, nil
}
