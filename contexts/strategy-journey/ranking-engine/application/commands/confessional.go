package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	application "jornada/contexts/strategy-journey/ranking-engine/application"
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

const MaxConfessionLength = 500

type SaveConfessionalCommand struct {
	SessionID  string
	PillarID   string
	Confession string
}

// ConfessionalUseCase records the written justification for the top-ranked
// action of a completed pillar.
type ConfessionalUseCase struct {
	Catalog       ports.ActionCatalog
	Rankings      ports.RankingRepository
	Confessionals ports.ConfessionalRepository
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

func (uc ConfessionalUseCase) SaveConfessional(ctx context.Context, cmd SaveConfessionalCommand) (entities.Confessional, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID, pillarID := strings.TrimSpace(cmd.SessionID), strings.TrimSpace(cmd.PillarID)
	confession := strings.TrimSpace(cmd.Confession)
	if sessionID == "" || pillarID == "" {
		return entities.Confessional{}, domainerrors.ErrInvalidRankingInput
	}
	if confession == "" || utf8.RuneCountInString(confession) > MaxConfessionLength {
		logger.Warn("confessional validation failed",
			"event", "ranking_confessional_validation_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", sessionID,
			"pillar_id", pillarID,
		)
		return entities.Confessional{}, domainerrors.ErrInvalidConfessional
	}

	if _, completed, err := uc.Rankings.GetPillarCompletion(ctx, sessionID, pillarID); err != nil {
		return entities.Confessional{}, err
	} else if !completed {
		return entities.Confessional{}, domainerrors.ErrPillarNotCompleted
	}

	topAction, err := uc.topAction(ctx, sessionID, pillarID)
	if err != nil {
		return entities.Confessional{}, err
	}

	now := uc.now()
	confessionalID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Confessional{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Confessional{}, err
	}
	event, err := newRankingEnvelope(eventID, EventConfessionalSubmitted, sessionID, now, map[string]any{
		"session_id":   sessionID,
		"pillar_id":    pillarID,
		"top_action":   topAction.Title,
		"submitted_at": now.Format(time.RFC3339),
	})
	if err != nil {
		return entities.Confessional{}, err
	}

	saved, err := uc.Confessionals.SaveConfessional(ctx, entities.Confessional{
		ConfessionalID: confessionalID,
		SessionID:      sessionID,
		PillarID:       pillarID,
		TopAction:      topAction.Title,
		Confession:     confession,
		SubmittedAt:    now,
	}, event)
	if err != nil {
		logger.Error("confessional persistence failed",
			"event", "ranking_confessional_persist_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", sessionID,
			"pillar_id", pillarID,
			"error", err.Error(),
		)
		return entities.Confessional{}, err
	}
	logger.Info("confessional saved",
		"event", "ranking_confessional_saved",
		"module", "strategy-journey/ranking-engine",
		"layer", "application",
		"session_id", sessionID,
		"pillar_id", pillarID,
		"confessional_id", saved.ConfessionalID,
	)
	return saved, nil
}

func (uc ConfessionalUseCase) topAction(ctx context.Context, sessionID string, pillarID string) (entities.Action, error) {
	actions, err := uc.Catalog.ListActions(ctx, pillarID)
	if err != nil {
		return entities.Action{}, err
	}
	byID := make(map[string]entities.Action, len(actions))
	ids := make([]string, 0, len(actions))
	for _, action := range actions {
		byID[action.ActionID] = action
		ids = append(ids, action.ActionID)
	}
	priorities, err := uc.Rankings.ListPriorities(ctx, sessionID, ids)
	if err != nil {
		return entities.Action{}, err
	}
	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].Rank < priorities[j].Rank
	})
	for _, priority := range priorities {
		if action, ok := byID[priority.ActionID]; ok {
			return action, nil
		}
	}
	return entities.Action{}, domainerrors.ErrPillarNotCompleted
}

func (uc ConfessionalUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
