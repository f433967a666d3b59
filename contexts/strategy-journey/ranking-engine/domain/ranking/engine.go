// Package ranking holds the ordering engine for a single pillar and the
// interaction adapters (drag gestures, slot picker) that drive it.
//
// The engine keeps a strictly ordered subset of the pillar's actions. Ranked
// positions always form the contiguous permutation 1..K, whatever modality
// produced the change.
package ranking

import (
	"sort"
	"strings"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
)

const (
	MoveFeedbackWindow      = 2 * time.Second
	PlacementFeedbackWindow = 800 * time.Millisecond
)

// Reason explains why an operation left the state unchanged.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonUnknownAction Reason = "unknown_action"
	ReasonBoundary      Reason = "boundary"
	ReasonAlreadyRanked Reason = "already_ranked"
	ReasonNotRanked     Reason = "not_ranked"
	ReasonSamePosition  Reason = "same_position"
	ReasonOutOfRange    Reason = "out_of_range"
	ReasonEmpty         Reason = "empty"
)

// Outcome reports the effect of a mutating operation. Precondition
// violations are no-ops, not errors.
type Outcome struct {
	Changed bool
	Reason  Reason
}

func changed() Outcome {
	return Outcome{Changed: true}
}

func unchanged(reason Reason) Outcome {
	return Outcome{Reason: reason}
}

// Snapshot is the serializable form of an engine, used by draft caches.
type Snapshot struct {
	Ranked  []string          `json:"ranked"`
	Frozen  bool              `json:"frozen"`
	Markers []entities.Marker `json:"markers,omitempty"`
}

type Option func(*Engine)

// WithClock overrides the clock used for animation markers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

type Engine struct {
	actions []entities.Action
	byID    map[string]int
	ranked  []string
	frozen  bool
	markers map[string]time.Time
	now     func() time.Time
}

func NewEngine(actions []entities.Action, opts ...Option) (*Engine, error) {
	if len(actions) == 0 {
		return nil, domainerrors.ErrInvalidCatalog
	}
	e := &Engine{
		actions: make([]entities.Action, 0, len(actions)),
		byID:    make(map[string]int, len(actions)),
		ranked:  make([]string, 0, len(actions)),
		markers: make(map[string]time.Time),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, action := range actions {
		id := strings.TrimSpace(action.ActionID)
		if id == "" {
			return nil, domainerrors.ErrInvalidCatalog
		}
		if _, dup := e.byID[id]; dup {
			return nil, domainerrors.ErrInvalidCatalog
		}
		action.ActionID = id
		e.byID[id] = len(e.actions)
		e.actions = append(e.actions, action)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Restore rebuilds an engine from a snapshot. Snapshot entries that no longer
// match the catalog are dropped so the permutation invariant still holds.
func Restore(actions []entities.Action, snapshot Snapshot, opts ...Option) (*Engine, error) {
	e, err := NewEngine(actions, opts...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(snapshot.Ranked))
	for _, id := range snapshot.Ranked {
		id = strings.TrimSpace(id)
		if _, ok := e.byID[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		e.ranked = append(e.ranked, id)
	}
	for _, marker := range snapshot.Markers {
		if _, ok := e.byID[marker.ActionID]; ok {
			e.markers[marker.ActionID] = marker.ExpiresAt
		}
	}
	e.frozen = snapshot.Frozen && len(e.ranked) == len(e.actions)
	return e, nil
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Ranked:  append([]string(nil), e.ranked...),
		Frozen:  e.frozen,
		Markers: e.ActiveMarkers(),
	}
}

func (e *Engine) Total() int {
	return len(e.actions)
}

func (e *Engine) Count() int {
	return len(e.ranked)
}

func (e *Engine) Frozen() bool {
	return e.frozen
}

func (e *Engine) Phase() entities.Phase {
	switch {
	case e.frozen:
		return entities.PhaseFrozen
	case len(e.ranked) == 0:
		return entities.PhaseUnranked
	case len(e.ranked) == len(e.actions):
		return entities.PhaseComplete
	default:
		return entities.PhasePartial
	}
}

// PositionOf returns the 1-based position of an action, or false when the
// action is unranked or unknown.
func (e *Engine) PositionOf(actionID string) (int, bool) {
	actionID = strings.TrimSpace(actionID)
	for i, id := range e.ranked {
		if id == actionID {
			return i + 1, true
		}
	}
	return 0, false
}

func (e *Engine) Action(actionID string) (entities.Action, bool) {
	idx, ok := e.byID[strings.TrimSpace(actionID)]
	if !ok {
		return entities.Action{}, false
	}
	return e.actions[idx], true
}

func (e *Engine) Ranked() []entities.Action {
	items := make([]entities.Action, 0, len(e.ranked))
	for _, id := range e.ranked {
		items = append(items, e.actions[e.byID[id]])
	}
	return items
}

// Unranked lists the complement in catalog order.
func (e *Engine) Unranked() []entities.Action {
	ranked := make(map[string]struct{}, len(e.ranked))
	for _, id := range e.ranked {
		ranked[id] = struct{}{}
	}
	items := make([]entities.Action, 0, len(e.actions)-len(e.ranked))
	for _, action := range e.actions {
		if _, ok := ranked[action.ActionID]; !ok {
			items = append(items, action)
		}
	}
	return items
}

func (e *Engine) Assignments() []entities.Assignment {
	items := make([]entities.Assignment, 0, len(e.ranked))
	for i, id := range e.ranked {
		items = append(items, entities.Assignment{ActionID: id, Position: i + 1})
	}
	return items
}

func (e *Engine) Animating(actionID string) bool {
	until, ok := e.markers[strings.TrimSpace(actionID)]
	return ok && e.now().Before(until)
}

// ActiveMarkers prunes expired markers and returns the rest sorted by action id.
func (e *Engine) ActiveMarkers() []entities.Marker {
	now := e.now()
	items := make([]entities.Marker, 0, len(e.markers))
	for id, until := range e.markers {
		if !now.Before(until) {
			delete(e.markers, id)
			continue
		}
		items = append(items, entities.Marker{ActionID: id, ExpiresAt: until})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ActionID < items[j].ActionID
	})
	return items
}

// MoveItem swaps an action with its neighbor. The first item cannot move up
// and the last cannot move down.
func (e *Engine) MoveItem(actionID string, direction entities.Direction) (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	pos, ok := e.PositionOf(actionID)
	if !ok {
		if _, known := e.Action(actionID); !known {
			return unchanged(ReasonUnknownAction), nil
		}
		return unchanged(ReasonNotRanked), nil
	}
	idx := pos - 1
	var neighbor int
	switch direction {
	case entities.DirectionUp:
		neighbor = idx - 1
	case entities.DirectionDown:
		neighbor = idx + 1
	default:
		return Outcome{}, domainerrors.ErrUnknownOperation
	}
	if neighbor < 0 || neighbor >= len(e.ranked) {
		return unchanged(ReasonBoundary), nil
	}
	e.ranked[idx], e.ranked[neighbor] = e.ranked[neighbor], e.ranked[idx]
	e.mark(MoveFeedbackWindow, e.ranked[idx], e.ranked[neighbor])
	return changed(), nil
}

// AddAsNextPriority appends an unranked action at position K+1.
func (e *Engine) AddAsNextPriority(actionID string) (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	action, ok := e.Action(actionID)
	if !ok {
		return unchanged(ReasonUnknownAction), nil
	}
	if _, ranked := e.PositionOf(action.ActionID); ranked {
		return unchanged(ReasonAlreadyRanked), nil
	}
	e.ranked = append(e.ranked, action.ActionID)
	e.mark(PlacementFeedbackWindow, action.ActionID)
	return changed(), nil
}

// RemovePriority unranks an action; everything after it shifts up one slot.
func (e *Engine) RemovePriority(actionID string) (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	pos, ok := e.PositionOf(actionID)
	if !ok {
		if _, known := e.Action(actionID); !known {
			return unchanged(ReasonUnknownAction), nil
		}
		return unchanged(ReasonNotRanked), nil
	}
	removed := e.ranked[pos-1]
	e.ranked = append(e.ranked[:pos-1], e.ranked[pos:]...)
	e.mark(PlacementFeedbackWindow, removed)
	return changed(), nil
}

// AssignPosition places an action at a 1-based position with trade-places
// semantics. An occupied slot swaps occupants; when the moving action was
// unranked the displaced one takes the next free slot. Unoccupied targets
// resolve to the end of the ranked sequence so positions stay contiguous.
func (e *Engine) AssignPosition(actionID string, position int) (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	action, ok := e.Action(actionID)
	if !ok {
		return unchanged(ReasonUnknownAction), nil
	}
	if position < 1 || position > len(e.actions) {
		return unchanged(ReasonOutOfRange), nil
	}
	current, ranked := e.PositionOf(action.ActionID)
	if ranked && current == position {
		return unchanged(ReasonSamePosition), nil
	}

	if position <= len(e.ranked) {
		displaced := e.ranked[position-1]
		if ranked {
			e.ranked[current-1], e.ranked[position-1] = e.ranked[position-1], e.ranked[current-1]
		} else {
			e.ranked[position-1] = action.ActionID
			e.ranked = append(e.ranked, displaced)
		}
		e.mark(PlacementFeedbackWindow, action.ActionID, displaced)
		return changed(), nil
	}

	if ranked {
		if current == len(e.ranked) {
			return unchanged(ReasonSamePosition), nil
		}
		e.ranked = append(e.ranked[:current-1], e.ranked[current:]...)
	}
	e.ranked = append(e.ranked, action.ActionID)
	e.mark(PlacementFeedbackWindow, action.ActionID)
	return changed(), nil
}

// ReorderByDragDrop removes the item at fromIndex and reinserts it at toIndex
// (0-based); the items in between shift by one. A toIndex equal to the ranked
// length drops at the end.
func (e *Engine) ReorderByDragDrop(fromIndex int, toIndex int) (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	if len(e.ranked) == 0 {
		return unchanged(ReasonEmpty), nil
	}
	if toIndex == len(e.ranked) {
		toIndex = len(e.ranked) - 1
	}
	if fromIndex < 0 || fromIndex >= len(e.ranked) || toIndex < 0 || toIndex >= len(e.ranked) {
		return unchanged(ReasonOutOfRange), nil
	}
	if fromIndex == toIndex {
		return unchanged(ReasonSamePosition), nil
	}
	moved := e.ranked[fromIndex]
	e.ranked = append(e.ranked[:fromIndex], e.ranked[fromIndex+1:]...)
	e.ranked = append(e.ranked[:toIndex], append([]string{moved}, e.ranked[toIndex:]...)...)
	e.mark(PlacementFeedbackWindow, moved)
	return changed(), nil
}

// MoveToPosition is the typed-number variant: insert-shift to a 1-based
// position clamped to the ranked range.
func (e *Engine) MoveToPosition(actionID string, position int) (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	current, ok := e.PositionOf(actionID)
	if !ok {
		if _, known := e.Action(actionID); !known {
			return unchanged(ReasonUnknownAction), nil
		}
		return unchanged(ReasonNotRanked), nil
	}
	if position < 1 {
		position = 1
	}
	if position > len(e.ranked) {
		position = len(e.ranked)
	}
	return e.ReorderByDragDrop(current-1, position-1)
}

func (e *Engine) Reverse() (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	if len(e.ranked) < 2 {
		return unchanged(ReasonEmpty), nil
	}
	for i, j := 0, len(e.ranked)-1; i < j; i, j = i+1, j-1 {
		e.ranked[i], e.ranked[j] = e.ranked[j], e.ranked[i]
	}
	return changed(), nil
}

// SortByTitle orders the ranked actions alphabetically, case-insensitive.
func (e *Engine) SortByTitle() (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	if len(e.ranked) < 2 {
		return unchanged(ReasonEmpty), nil
	}
	before := append([]string(nil), e.ranked...)
	sort.SliceStable(e.ranked, func(i, j int) bool {
		left := strings.ToLower(e.actions[e.byID[e.ranked[i]]].Title)
		right := strings.ToLower(e.actions[e.byID[e.ranked[j]]].Title)
		return left < right
	})
	for i := range before {
		if before[i] != e.ranked[i] {
			return changed(), nil
		}
	}
	return unchanged(ReasonSamePosition), nil
}

// ClearAll returns every action to the unranked pool.
func (e *Engine) ClearAll() (Outcome, error) {
	if e.frozen {
		return Outcome{}, domainerrors.ErrRankingFrozen
	}
	if len(e.ranked) == 0 {
		return unchanged(ReasonEmpty), nil
	}
	e.ranked = e.ranked[:0]
	e.markers = make(map[string]time.Time)
	return changed(), nil
}

// Finalize emits the ranked order once every action is assigned. It does not
// mutate state; callers Freeze after the order has been persisted.
func (e *Engine) Finalize() ([]entities.RankedAction, error) {
	if len(e.ranked) != len(e.actions) {
		return nil, domainerrors.ErrRankingIncomplete
	}
	items := make([]entities.RankedAction, 0, len(e.ranked))
	for i, id := range e.ranked {
		items = append(items, entities.RankedAction{ActionID: id, Rank: i + 1})
	}
	return items, nil
}

// Freeze enters the terminal phase. Only complete rankings can be frozen.
func (e *Engine) Freeze() error {
	if e.frozen {
		return nil
	}
	if len(e.ranked) != len(e.actions) {
		return domainerrors.ErrRankingIncomplete
	}
	e.frozen = true
	e.markers = make(map[string]time.Time)
	return nil
}

func (e *Engine) mark(window time.Duration, ids ...string) {
	until := e.now().Add(window)
	for _, id := range ids {
		e.markers[id] = until
	}
}
