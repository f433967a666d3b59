package ranking

import (
	"math"
	"time"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
)

type Modality string

const (
	ModalityPointer Modality = "pointer"
	ModalityTouch   Modality = "touch"
)

// GestureConfig holds the touch thresholds. Pointer drags ignore them.
type GestureConfig struct {
	LongPressDelay   time.Duration
	MinSwipeDistance float64
	MinTouchDuration time.Duration
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		LongPressDelay:   400 * time.Millisecond,
		MinSwipeDistance: 20,
		MinTouchDuration: 200 * time.Millisecond,
	}
}

// DragState is the provisional view of an in-flight drag. OverIndex is the
// prospective drop slot rendered as a placeholder; it never touches the
// engine until Release.
type DragState struct {
	Active    bool
	Pending   bool
	DragIndex int
	OverIndex int
}

// DragGesture drives continuous reordering. Press acquires the gesture and
// every exit path (Release, Cancel, Leave) releases it.
type DragGesture struct {
	engine   *Engine
	modality Modality
	cfg      GestureConfig

	pending   bool
	active    bool
	dragIndex int
	overIndex int
	pressAt   time.Time
	pressY    float64
}

func NewDragGesture(engine *Engine, modality Modality, cfg GestureConfig) *DragGesture {
	if modality != ModalityTouch {
		modality = ModalityPointer
	}
	defaults := DefaultGestureConfig()
	if cfg.LongPressDelay <= 0 {
		cfg.LongPressDelay = defaults.LongPressDelay
	}
	if cfg.MinSwipeDistance <= 0 {
		cfg.MinSwipeDistance = defaults.MinSwipeDistance
	}
	if cfg.MinTouchDuration <= 0 {
		cfg.MinTouchDuration = defaults.MinTouchDuration
	}
	return &DragGesture{
		engine:    engine,
		modality:  modality,
		cfg:       cfg,
		dragIndex: -1,
		overIndex: -1,
	}
}

func (g *DragGesture) State() DragState {
	return DragState{
		Active:    g.active,
		Pending:   g.pending,
		DragIndex: g.dragIndex,
		OverIndex: g.overIndex,
	}
}

// Press starts a gesture on a ranked item. Pointer drags begin at once; touch
// drags wait for the long-press delay.
func (g *DragGesture) Press(index int, y float64, at time.Time) error {
	if g.engine.Frozen() {
		g.reset()
		return domainerrors.ErrRankingFrozen
	}
	if index < 0 || index >= g.engine.Count() {
		g.reset()
		return domainerrors.ErrInvalidGesture
	}
	g.reset()
	g.dragIndex = index
	g.pressAt = at
	g.pressY = y
	if g.modality == ModalityPointer {
		g.active = true
		return nil
	}
	g.pending = true
	return nil
}

// Over reports the slot under the finger or cursor. For touch it also
// promotes a pending press once the long-press delay elapsed.
func (g *DragGesture) Over(index int, at time.Time) {
	if g.pending && at.Sub(g.pressAt) >= g.cfg.LongPressDelay {
		g.pending = false
		g.active = true
	}
	if !g.active {
		return
	}
	if index < 0 {
		index = 0
	}
	if limit := g.engine.Count(); index > limit {
		index = limit
	}
	g.overIndex = index
}

// Release commits the provisional drop when the gesture qualifies and always
// clears gesture state.
func (g *DragGesture) Release(y float64, at time.Time) (Outcome, error) {
	defer g.reset()
	if g.pending && at.Sub(g.pressAt) >= g.cfg.LongPressDelay {
		g.pending = false
		g.active = true
	}
	if !g.active || g.overIndex < 0 {
		return unchanged(ReasonSamePosition), nil
	}
	if g.modality == ModalityTouch {
		distance := math.Abs(y - g.pressY)
		duration := at.Sub(g.pressAt)
		if distance <= g.cfg.MinSwipeDistance || duration <= g.cfg.MinTouchDuration {
			return unchanged(ReasonSamePosition), nil
		}
	}
	return g.engine.ReorderByDragDrop(g.dragIndex, g.overIndex)
}

func (g *DragGesture) Cancel() {
	g.reset()
}

// Leave handles the pointer leaving the list container.
func (g *DragGesture) Leave() {
	g.reset()
}

func (g *DragGesture) reset() {
	g.pending = false
	g.active = false
	g.dragIndex = -1
	g.overIndex = -1
	g.pressAt = time.Time{}
	g.pressY = 0
}

type GestureEventType string

const (
	GesturePress   GestureEventType = "press"
	GestureOver    GestureEventType = "over"
	GestureRelease GestureEventType = "release"
	GestureCancel  GestureEventType = "cancel"
	GestureLeave   GestureEventType = "leave"
)

type GestureEvent struct {
	Type  GestureEventType
	Index int
	Y     float64
	At    time.Time
}

// ReplayGesture feeds a recorded trace through a DragGesture. A trace that
// ends mid-gesture is released without committing.
func ReplayGesture(engine *Engine, modality Modality, cfg GestureConfig, events []GestureEvent) (Outcome, error) {
	if len(events) == 0 {
		return Outcome{}, domainerrors.ErrInvalidGesture
	}
	gesture := NewDragGesture(engine, modality, cfg)
	defer gesture.Cancel()

	result := unchanged(ReasonSamePosition)
	for _, event := range events {
		switch event.Type {
		case GesturePress:
			if err := gesture.Press(event.Index, event.Y, event.At); err != nil {
				return Outcome{}, err
			}
		case GestureOver:
			gesture.Over(event.Index, event.At)
		case GestureRelease:
			outcome, err := gesture.Release(event.Y, event.At)
			if err != nil {
				return Outcome{}, err
			}
			if outcome.Changed {
				result = outcome
			}
		case GestureCancel:
			gesture.Cancel()
		case GestureLeave:
			gesture.Leave()
		default:
			return Outcome{}, domainerrors.ErrInvalidGesture
		}
	}
	return result, nil
}
