package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "jornada/contexts/strategy-journey/ranking-engine/application"
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

const maxDraftAttempts = 3

// RankingView is the read model returned after every ranking command.
type RankingView struct {
	SessionID string
	Pillar    ports.PillarProjection
	Phase     entities.Phase
	Version   int64
	Total     int
	Ranked    []entities.Action
	Unranked  []entities.Action
	Markers   []entities.Marker
}

type OperationResult struct {
	View    RankingView
	Outcome ranking.Outcome
}

type ApplyOperationCommand struct {
	SessionID       string
	PillarID        string
	Operation       ranking.Operation
	ExpectedVersion *int64
}

type GestureTraceCommand struct {
	SessionID       string
	PillarID        string
	Modality        ranking.Modality
	Events          []ranking.GestureEvent
	ExpectedVersion *int64
}

type SlotPickCommand struct {
	SessionID       string
	PillarID        string
	ActionID        string
	Position        int
	ExpectedVersion *int64
}

type FinalizeRankingCommand struct {
	SessionID string
	PillarID  string
}

type FinalizeRankingResult struct {
	View             RankingView
	Order            []entities.RankedAction
	JourneyCompleted bool
}

// RankingUseCase runs every ranking interaction as one load-apply-save cycle
// over the cached draft, and hands finalized orders to the persistence writer.
type RankingUseCase struct {
	Catalog  ports.ActionCatalog
	Rankings ports.RankingRepository
	Drafts   ports.DraftStore
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Gestures ranking.GestureConfig
	Logger   *slog.Logger
}

type rankingState struct {
	pillar  ports.PillarProjection
	engine  *ranking.Engine
	version int64
}

// OpenRanking returns the current draft, building it from the catalog and
// persisted priorities when no draft is cached.
func (uc RankingUseCase) OpenRanking(ctx context.Context, sessionID string, pillarID string) (RankingView, error) {
	sessionID, pillarID = strings.TrimSpace(sessionID), strings.TrimSpace(pillarID)
	if sessionID == "" || pillarID == "" {
		return RankingView{}, domainerrors.ErrInvalidRankingInput
	}
	state, err := uc.load(ctx, sessionID, pillarID)
	if err != nil {
		return RankingView{}, err
	}
	return buildView(sessionID, state), nil
}

func (uc RankingUseCase) ApplyOperation(ctx context.Context, cmd ApplyOperationCommand) (OperationResult, error) {
	return uc.mutate(ctx, "operation", cmd.SessionID, cmd.PillarID, cmd.ExpectedVersion, func(engine *ranking.Engine) (ranking.Outcome, error) {
		return ranking.Apply(engine, cmd.Operation)
	})
}

// ApplyGestureTrace replays a recorded drag gesture against the draft.
func (uc RankingUseCase) ApplyGestureTrace(ctx context.Context, cmd GestureTraceCommand) (OperationResult, error) {
	if len(cmd.Events) == 0 {
		return OperationResult{}, domainerrors.ErrInvalidGesture
	}
	return uc.mutate(ctx, "gesture", cmd.SessionID, cmd.PillarID, cmd.ExpectedVersion, func(engine *ranking.Engine) (ranking.Outcome, error) {
		return ranking.ReplayGesture(engine, cmd.Modality, uc.Gestures, cmd.Events)
	})
}

func (uc RankingUseCase) ApplySlotPick(ctx context.Context, cmd SlotPickCommand) (OperationResult, error) {
	return uc.mutate(ctx, "slot_pick", cmd.SessionID, cmd.PillarID, cmd.ExpectedVersion, func(engine *ranking.Engine) (ranking.Outcome, error) {
		return ranking.PickSlot(engine, cmd.ActionID, cmd.Position)
	})
}

// FinalizeRanking persists a complete ranking and freezes the draft. The
// draft is frozen only after the persistence write succeeded, so a failed
// write leaves the ranking editable for a retry.
func (uc RankingUseCase) FinalizeRanking(ctx context.Context, cmd FinalizeRankingCommand) (FinalizeRankingResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID, pillarID := strings.TrimSpace(cmd.SessionID), strings.TrimSpace(cmd.PillarID)
	if sessionID == "" || pillarID == "" {
		return FinalizeRankingResult{}, domainerrors.ErrInvalidRankingInput
	}
	logger.Info("ranking finalize started",
		"event", "ranking_finalize_started",
		"module", "strategy-journey/ranking-engine",
		"layer", "application",
		"session_id", sessionID,
		"pillar_id", pillarID,
	)

	state, err := uc.load(ctx, sessionID, pillarID)
	if err != nil {
		return FinalizeRankingResult{}, err
	}
	if state.engine.Frozen() {
		return FinalizeRankingResult{}, domainerrors.ErrRankingFrozen
	}
	order, err := state.engine.Finalize()
	if err != nil {
		logger.Warn("ranking finalize rejected",
			"event", "ranking_finalize_rejected",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", sessionID,
			"pillar_id", pillarID,
			"ranked", state.engine.Count(),
			"total", state.engine.Total(),
			"error", err.Error(),
		)
		return FinalizeRankingResult{}, err
	}

	session, err := uc.Rankings.GetSession(ctx, sessionID)
	if err != nil {
		return FinalizeRankingResult{}, err
	}
	journeyCompleted, err := uc.completesJourney(ctx, sessionID, pillarID)
	if err != nil {
		return FinalizeRankingResult{}, err
	}

	now := uc.now()
	events, err := uc.finalizeEvents(ctx, session, pillarID, order, journeyCompleted, now)
	if err != nil {
		return FinalizeRankingResult{}, err
	}
	actionIDs := make([]string, 0, state.engine.Total())
	for _, action := range append(state.engine.Ranked(), state.engine.Unranked()...) {
		actionIDs = append(actionIDs, action.ActionID)
	}
	if err := uc.Rankings.SaveRanking(ctx, ports.SaveRankingInput{
		SessionID:   sessionID,
		PillarID:    pillarID,
		ActionIDs:   actionIDs,
		Order:       order,
		CompletedAt: now,
		Events:      events,
	}); err != nil {
		logger.Error("ranking persistence failed",
			"event", "ranking_finalize_persist_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", sessionID,
			"pillar_id", pillarID,
			"error", err.Error(),
		)
		return FinalizeRankingResult{}, err
	}

	if !journeyCompleted {
		// A concurrent finalize of the session's other last pillar commits
		// outside this check; the pillar.completed consumer issues the
		// achievement in that case, and the response reports it here.
		if completed, err := uc.completesJourney(ctx, sessionID, pillarID); err == nil {
			journeyCompleted = completed
		}
	}

	if err := state.engine.Freeze(); err != nil {
		return FinalizeRankingResult{}, err
	}
	// The persisted completion is authoritative; a stale draft is refrozen on
	// the next load, so a cache failure here is not fatal.
	if err := uc.Drafts.SaveDraft(ctx, sessionID, pillarID, ports.Draft{
		Snapshot:  state.engine.Snapshot(),
		Version:   state.version + 1,
		UpdatedAt: now,
	}, state.version); err != nil {
		logger.Warn("ranking frozen draft save failed",
			"event", "ranking_finalize_draft_save_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", sessionID,
			"pillar_id", pillarID,
			"error", err.Error(),
		)
	} else {
		state.version++
	}

	logger.Info("ranking finalized",
		"event", "ranking_finalize_completed",
		"module", "strategy-journey/ranking-engine",
		"layer", "application",
		"session_id", sessionID,
		"pillar_id", pillarID,
		"ranked", len(order),
		"journey_completed", journeyCompleted,
	)
	return FinalizeRankingResult{
		View:             buildView(sessionID, state),
		Order:            order,
		JourneyCompleted: journeyCompleted,
	}, nil
}

func (uc RankingUseCase) mutate(
	ctx context.Context,
	kind string,
	sessionID string,
	pillarID string,
	expectedVersion *int64,
	apply func(*ranking.Engine) (ranking.Outcome, error),
) (OperationResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	sessionID, pillarID = strings.TrimSpace(sessionID), strings.TrimSpace(pillarID)
	if sessionID == "" || pillarID == "" {
		return OperationResult{}, domainerrors.ErrInvalidRankingInput
	}

	for attempt := 1; attempt <= maxDraftAttempts; attempt++ {
		state, err := uc.load(ctx, sessionID, pillarID)
		if err != nil {
			return OperationResult{}, err
		}
		if expectedVersion != nil && *expectedVersion != state.version {
			logger.Warn("ranking draft version mismatch",
				"event", "ranking_draft_version_mismatch",
				"module", "strategy-journey/ranking-engine",
				"layer", "application",
				"session_id", sessionID,
				"pillar_id", pillarID,
				"expected_version", *expectedVersion,
				"current_version", state.version,
			)
			return OperationResult{}, domainerrors.ErrDraftConflict
		}

		outcome, err := apply(state.engine)
		if err != nil {
			logger.Warn("ranking interaction rejected",
				"event", "ranking_interaction_rejected",
				"module", "strategy-journey/ranking-engine",
				"layer", "application",
				"kind", kind,
				"session_id", sessionID,
				"pillar_id", pillarID,
				"error", err.Error(),
			)
			return OperationResult{}, err
		}
		if !outcome.Changed {
			logger.Debug("ranking interaction was a no-op",
				"event", "ranking_interaction_noop",
				"module", "strategy-journey/ranking-engine",
				"layer", "application",
				"kind", kind,
				"session_id", sessionID,
				"pillar_id", pillarID,
				"reason", string(outcome.Reason),
			)
			return OperationResult{View: buildView(sessionID, state), Outcome: outcome}, nil
		}

		err = uc.Drafts.SaveDraft(ctx, sessionID, pillarID, ports.Draft{
			Snapshot:  state.engine.Snapshot(),
			Version:   state.version + 1,
			UpdatedAt: uc.now(),
		}, state.version)
		if errors.Is(err, domainerrors.ErrDraftConflict) && expectedVersion == nil {
			logger.Debug("ranking draft raced, retrying",
				"event", "ranking_draft_retry",
				"module", "strategy-journey/ranking-engine",
				"layer", "application",
				"session_id", sessionID,
				"pillar_id", pillarID,
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			logger.Error("ranking draft save failed",
				"event", "ranking_draft_save_failed",
				"module", "strategy-journey/ranking-engine",
				"layer", "application",
				"session_id", sessionID,
				"pillar_id", pillarID,
				"error", err.Error(),
			)
			return OperationResult{}, err
		}
		state.version++

		logger.Info("ranking interaction applied",
			"event", "ranking_interaction_applied",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"kind", kind,
			"session_id", sessionID,
			"pillar_id", pillarID,
			"version", state.version,
			"ranked", state.engine.Count(),
		)
		return OperationResult{View: buildView(sessionID, state), Outcome: outcome}, nil
	}
	return OperationResult{}, domainerrors.ErrDraftConflict
}

func (uc RankingUseCase) load(ctx context.Context, sessionID string, pillarID string) (rankingState, error) {
	pillar, err := uc.Catalog.GetPillar(ctx, pillarID)
	if err != nil {
		return rankingState{}, err
	}
	actions, err := uc.Catalog.ListActions(ctx, pillarID)
	if err != nil {
		return rankingState{}, err
	}
	if len(actions) == 0 {
		return rankingState{}, domainerrors.ErrInvalidCatalog
	}
	_, completed, err := uc.Rankings.GetPillarCompletion(ctx, sessionID, pillarID)
	if err != nil {
		return rankingState{}, err
	}

	draft, found, err := uc.Drafts.LoadDraft(ctx, sessionID, pillarID)
	if err != nil {
		return rankingState{}, err
	}
	if found && (draft.Snapshot.Frozen || !completed) {
		engine, err := ranking.Restore(actions, draft.Snapshot, ranking.WithClock(uc.now))
		if err != nil {
			return rankingState{}, err
		}
		return rankingState{pillar: pillar, engine: engine, version: draft.Version}, nil
	}

	snapshot := ranking.Snapshot{Frozen: completed}
	if completed {
		ids := make([]string, 0, len(actions))
		for _, action := range actions {
			ids = append(ids, action.ActionID)
		}
		priorities, err := uc.Rankings.ListPriorities(ctx, sessionID, ids)
		if err != nil {
			return rankingState{}, err
		}
		sort.SliceStable(priorities, func(i, j int) bool {
			return priorities[i].Rank < priorities[j].Rank
		})
		for _, priority := range priorities {
			snapshot.Ranked = append(snapshot.Ranked, priority.ActionID)
		}
	}
	engine, err := ranking.Restore(actions, snapshot, ranking.WithClock(uc.now))
	if err != nil {
		return rankingState{}, err
	}
	return rankingState{pillar: pillar, engine: engine, version: draft.Version}, nil
}

func (uc RankingUseCase) completesJourney(ctx context.Context, sessionID string, pillarID string) (bool, error) {
	pillars, err := uc.Catalog.ListPillars(ctx)
	if err != nil {
		return false, err
	}
	completions, err := uc.Rankings.ListPillarCompletions(ctx, sessionID)
	if err != nil {
		return false, err
	}
	done := make(map[string]struct{}, len(completions)+1)
	for _, completion := range completions {
		done[completion.PillarID] = struct{}{}
	}
	done[pillarID] = struct{}{}
	for _, pillar := range pillars {
		if _, ok := done[pillar.PillarID]; !ok {
			return false, nil
		}
	}
	return len(pillars) > 0, nil
}

func (uc RankingUseCase) finalizeEvents(
	ctx context.Context,
	session ports.SessionProjection,
	pillarID string,
	order []entities.RankedAction,
	journeyCompleted bool,
	now time.Time,
) ([]ports.EventEnvelope, error) {
	ranks := make([]map[string]any, 0, len(order))
	for _, item := range order {
		ranks = append(ranks, map[string]any{"action_id": item.ActionID, "rank": item.Rank})
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	pillarEvent, err := newRankingEnvelope(eventID, EventPillarCompleted, session.SessionID, now, map[string]any{
		"session_id":   session.SessionID,
		"meeting_id":   session.MeetingID,
		"pillar_id":    pillarID,
		"ranking":      ranks,
		"completed_at": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	events := []ports.EventEnvelope{pillarEvent}
	if !journeyCompleted {
		return events, nil
	}

	journeyID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	journeyEvent, err := newRankingEnvelope(journeyID, EventJourneyCompleted, session.SessionID, now, map[string]any{
		"session_id":   session.SessionID,
		"meeting_id":   session.MeetingID,
		"nickname":     session.Nickname,
		"completed_at": now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	return append(events, journeyEvent), nil
}

func (uc RankingUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func buildView(sessionID string, state rankingState) RankingView {
	return RankingView{
		SessionID: sessionID,
		Pillar:    state.pillar,
		Phase:     state.engine.Phase(),
		Version:   state.version,
		Total:     state.engine.Total(),
		Ranked:    state.engine.Ranked(),
		Unranked:  state.engine.Unranked(),
		Markers:   state.engine.ActiveMarkers(),
	}
}
