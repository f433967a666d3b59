package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	"jornada/contexts/strategy-journey/ranking-engine/application/commands"
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newFixture() *memory.Store {
	return memory.NewStore(memory.Seed{
		Pillars: []ports.PillarProjection{
			{PillarID: "pillar-1", Name: "Clientes"},
			{PillarID: "pillar-2", Name: "Pessoas"},
		},
		Actions: []entities.Action{
			{ActionID: "A", PillarID: "pillar-1", Title: "Action A"},
			{ActionID: "B", PillarID: "pillar-1", Title: "Action B"},
			{ActionID: "C", PillarID: "pillar-1", Title: "Action C"},
			{ActionID: "D", PillarID: "pillar-2", Title: "Action D"},
		},
		Meetings: []ports.MeetingProjection{{MeetingID: "meeting-1", Title: "Kickoff"}},
		Sessions: []ports.SessionProjection{{SessionID: "session-1", MeetingID: "meeting-1", Nickname: "ana"}},
	})
}

func newRankingUseCase(store *memory.Store) commands.RankingUseCase {
	return commands.RankingUseCase{
		Catalog:  store,
		Rankings: store,
		Drafts:   store,
		Clock:    fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:    store,
		Gestures: ranking.DefaultGestureConfig(),
	}
}

func apply(t *testing.T, uc commands.RankingUseCase, pillarID string, op ranking.Operation) commands.OperationResult {
	t.Helper()
	result, err := uc.ApplyOperation(context.Background(), commands.ApplyOperationCommand{
		SessionID: "session-1",
		PillarID:  pillarID,
		Operation: op,
	})
	require.NoError(t, err)
	return result
}

func rankedIDs(view commands.RankingView) []string {
	ids := make([]string, 0, len(view.Ranked))
	for _, action := range view.Ranked {
		ids = append(ids, action.ActionID)
	}
	return ids
}

func TestOpenRankingStartsUnranked(t *testing.T) {
	uc := newRankingUseCase(newFixture())

	view, err := uc.OpenRanking(context.Background(), "session-1", "pillar-1")
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseUnranked, view.Phase)
	assert.Equal(t, 3, view.Total)
	assert.Empty(t, view.Ranked)
	assert.Len(t, view.Unranked, 3)
	assert.Equal(t, int64(0), view.Version)

	_, err = uc.OpenRanking(context.Background(), "session-1", "missing")
	assert.ErrorIs(t, err, domainerrors.ErrPillarNotFound)
}

func TestApplyOperationBumpsVersionOnlyWhenChanged(t *testing.T) {
	uc := newRankingUseCase(newFixture())

	first := apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: "B"})
	assert.True(t, first.Outcome.Changed)
	assert.Equal(t, int64(1), first.View.Version)
	assert.Equal(t, entities.PhasePartial, first.View.Phase)

	dup := apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: "B"})
	assert.False(t, dup.Outcome.Changed)
	assert.Equal(t, ranking.ReasonAlreadyRanked, dup.Outcome.Reason)
	assert.Equal(t, int64(1), dup.View.Version)

	second := apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAssign, ActionID: "A", Position: 1})
	assert.Equal(t, []string{"A", "B"}, rankedIDs(second.View))
	assert.Equal(t, int64(2), second.View.Version)
}

func TestApplyOperationRejectsStaleExpectedVersion(t *testing.T) {
	uc := newRankingUseCase(newFixture())
	apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: "A"})

	stale := int64(0)
	_, err := uc.ApplyOperation(context.Background(), commands.ApplyOperationCommand{
		SessionID:       "session-1",
		PillarID:        "pillar-1",
		Operation:       ranking.Operation{Kind: ranking.OpAdd, ActionID: "B"},
		ExpectedVersion: &stale,
	})
	assert.ErrorIs(t, err, domainerrors.ErrDraftConflict)

	current := int64(1)
	result, err := uc.ApplyOperation(context.Background(), commands.ApplyOperationCommand{
		SessionID:       "session-1",
		PillarID:        "pillar-1",
		Operation:       ranking.Operation{Kind: ranking.OpAdd, ActionID: "B"},
		ExpectedVersion: &current,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, rankedIDs(result.View))
}

func TestApplyGestureTraceAndSlotPick(t *testing.T) {
	uc := newRankingUseCase(newFixture())
	for _, id := range []string{"A", "B", "C"} {
		apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: id})
	}

	start := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	result, err := uc.ApplyGestureTrace(context.Background(), commands.GestureTraceCommand{
		SessionID: "session-1",
		PillarID:  "pillar-1",
		Modality:  ranking.ModalityPointer,
		Events: []ranking.GestureEvent{
			{Type: ranking.GesturePress, Index: 0, At: start},
			{Type: ranking.GestureOver, Index: 2, At: start.Add(100 * time.Millisecond)},
			{Type: ranking.GestureRelease, At: start.Add(200 * time.Millisecond)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, rankedIDs(result.View))

	_, err = uc.ApplyGestureTrace(context.Background(), commands.GestureTraceCommand{SessionID: "session-1", PillarID: "pillar-1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidGesture)

	picked, err := uc.ApplySlotPick(context.Background(), commands.SlotPickCommand{
		SessionID: "session-1",
		PillarID:  "pillar-1",
		ActionID:  "A",
		Position:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, "A", rankedIDs(picked.View)[0])
}

func TestFinalizeIncompleteRankingPersistsNothing(t *testing.T) {
	store := newFixture()
	uc := newRankingUseCase(store)
	apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: "A"})

	_, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	assert.ErrorIs(t, err, domainerrors.ErrRankingIncomplete)

	_, completed, err := store.GetPillarCompletion(context.Background(), "session-1", "pillar-1")
	require.NoError(t, err)
	assert.False(t, completed)
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestFinalizeRankingPersistsAndFreezes(t *testing.T) {
	store := newFixture()
	uc := newRankingUseCase(store)
	for _, id := range []string{"C", "A", "B"} {
		apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: id})
	}

	result, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseFrozen, result.View.Phase)
	assert.False(t, result.JourneyCompleted)
	assert.Equal(t, []entities.RankedAction{
		{ActionID: "C", Rank: 1},
		{ActionID: "A", Rank: 2},
		{ActionID: "B", Rank: 3},
	}, result.Order)

	priorities, err := store.ListPriorities(context.Background(), "session-1", []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, result.Order, priorities)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, commands.EventPillarCompleted, pending[0].EventType)
	assert.Equal(t, "session-1", pending[0].PartitionKey)

	_, err = uc.ApplyOperation(context.Background(), commands.ApplyOperationCommand{
		SessionID: "session-1",
		PillarID:  "pillar-1",
		Operation: ranking.Operation{Kind: ranking.OpReverse},
	})
	assert.ErrorIs(t, err, domainerrors.ErrRankingFrozen)

	_, err = uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	assert.ErrorIs(t, err, domainerrors.ErrRankingFrozen)
}

func TestFinalizeLastPillarCompletesJourney(t *testing.T) {
	store := newFixture()
	uc := newRankingUseCase(store)
	for _, id := range []string{"A", "B", "C"} {
		apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: id})
	}
	_, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	require.NoError(t, err)

	apply(t, uc, "pillar-2", ranking.Operation{Kind: ranking.OpAdd, ActionID: "D"})
	result, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-2"})
	require.NoError(t, err)
	assert.True(t, result.JourneyCompleted)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	types := make([]string, 0, len(pending))
	var journey ports.OutboxMessage
	for _, message := range pending {
		types = append(types, message.EventType)
		if message.EventType == commands.EventJourneyCompleted {
			journey = message
		}
	}
	assert.ElementsMatch(t, []string{
		commands.EventPillarCompleted,
		commands.EventPillarCompleted,
		commands.EventJourneyCompleted,
	}, types)

	var envelope ports.EventEnvelope
	require.NoError(t, json.Unmarshal(journey.Payload, &envelope))
	var data map[string]any
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "ana", data["nickname"])
	assert.Equal(t, "meeting-1", data["meeting_id"])
}

// racingRankings commits the session's other pillar while the finalize of
// pillar-1 is being persisted, the way a second tab would.
type racingRankings struct {
	*memory.Store
}

func (r racingRankings) SaveRanking(ctx context.Context, input ports.SaveRankingInput) error {
	if err := r.Store.MarkPillarCompleted(ctx, input.SessionID, "pillar-2", input.CompletedAt); err != nil {
		return err
	}
	return r.Store.SaveRanking(ctx, input)
}

func TestFinalizeReportsJourneyCompletedByConcurrentFinalize(t *testing.T) {
	store := newFixture()
	uc := newRankingUseCase(store)
	for _, id := range []string{"A", "B", "C"} {
		apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: id})
	}
	uc.Rankings = racingRankings{Store: store}

	result, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	require.NoError(t, err)
	assert.True(t, result.JourneyCompleted)

	// Only pillar.completed is in the outbox; its consumer issues the
	// achievement after re-checking completion.
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, commands.EventPillarCompleted, pending[0].EventType)
}

type failingRankings struct {
	*memory.Store
	err error
}

func (f failingRankings) SaveRanking(context.Context, ports.SaveRankingInput) error {
	return f.err
}

func TestFinalizePersistenceFailureKeepsRankingEditable(t *testing.T) {
	store := newFixture()
	uc := newRankingUseCase(store)
	for _, id := range []string{"A", "B", "C"} {
		apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: id})
	}

	failure := errors.New("database unavailable")
	uc.Rankings = failingRankings{Store: store, err: failure}
	_, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	assert.ErrorIs(t, err, failure)

	uc.Rankings = store
	view, err := uc.OpenRanking(context.Background(), "session-1", "pillar-1")
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseComplete, view.Phase)

	result := apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpReverse})
	assert.Equal(t, []string{"C", "B", "A"}, rankedIDs(result.View))
}

func TestOpenRankingRebuildsFrozenStateWhenDraftIsLost(t *testing.T) {
	store := newFixture()
	uc := newRankingUseCase(store)
	for _, id := range []string{"B", "C", "A"} {
		apply(t, uc, "pillar-1", ranking.Operation{Kind: ranking.OpAdd, ActionID: id})
	}
	_, err := uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1", PillarID: "pillar-1"})
	require.NoError(t, err)
	require.NoError(t, store.DeleteDraft(context.Background(), "session-1", "pillar-1"))

	view, err := uc.OpenRanking(context.Background(), "session-1", "pillar-1")
	require.NoError(t, err)
	assert.Equal(t, entities.PhaseFrozen, view.Phase)
	assert.Equal(t, []string{"B", "C", "A"}, rankedIDs(view))
}

func TestRankingCommandsRejectBlankIdentifiers(t *testing.T) {
	uc := newRankingUseCase(newFixture())

	_, err := uc.OpenRanking(context.Background(), " ", "pillar-1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRankingInput)
	_, err = uc.ApplyOperation(context.Background(), commands.ApplyOperationCommand{PillarID: "pillar-1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRankingInput)
	_, err = uc.FinalizeRanking(context.Background(), commands.FinalizeRankingCommand{SessionID: "session-1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRankingInput)
}
