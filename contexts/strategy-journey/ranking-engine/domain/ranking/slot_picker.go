package ranking

import (
	"strings"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
)

// Slot is one entry of the pick-a-slot menu.
type Slot struct {
	Position   int
	OccupiedBy string
	Current    bool
}

// SlotPicker is the discrete modality: choose an action, pick a target from
// 1..N, confirm. Nothing reaches the engine before Confirm.
type SlotPicker struct {
	engine   *Engine
	actionID string
	target   int
}

func NewSlotPicker(engine *Engine) *SlotPicker {
	return &SlotPicker{engine: engine}
}

func (p *SlotPicker) Open(actionID string) error {
	if p.engine.Frozen() {
		return domainerrors.ErrRankingFrozen
	}
	action, ok := p.engine.Action(actionID)
	if !ok {
		return domainerrors.ErrActionNotFound
	}
	p.actionID = action.ActionID
	p.target = 0
	return nil
}

func (p *SlotPicker) IsOpen() bool {
	return p.actionID != ""
}

func (p *SlotPicker) Options() []Slot {
	if !p.IsOpen() {
		return nil
	}
	current, _ := p.engine.PositionOf(p.actionID)
	ranked := p.engine.Assignments()
	slots := make([]Slot, 0, p.engine.Total())
	for position := 1; position <= p.engine.Total(); position++ {
		slot := Slot{Position: position, Current: position == current}
		if position <= len(ranked) {
			slot.OccupiedBy = ranked[position-1].ActionID
		}
		slots = append(slots, slot)
	}
	return slots
}

func (p *SlotPicker) Select(position int) error {
	if !p.IsOpen() {
		return domainerrors.ErrPickerNotOpen
	}
	if position < 1 || position > p.engine.Total() {
		return domainerrors.ErrInvalidPosition
	}
	p.target = position
	return nil
}

// Confirm applies the pick as one AssignPosition call and closes the picker.
func (p *SlotPicker) Confirm() (Outcome, error) {
	if !p.IsOpen() {
		return Outcome{}, domainerrors.ErrPickerNotOpen
	}
	defer p.Close()
	if p.target == 0 {
		return Outcome{}, domainerrors.ErrNoTargetSelected
	}
	return p.engine.AssignPosition(p.actionID, p.target)
}

func (p *SlotPicker) Close() {
	p.actionID = ""
	p.target = 0
}

// PickSlot runs a full open-select-confirm cycle.
func PickSlot(engine *Engine, actionID string, position int) (Outcome, error) {
	picker := NewSlotPicker(engine)
	if err := picker.Open(strings.TrimSpace(actionID)); err != nil {
		return Outcome{}, err
	}
	if err := picker.Select(position); err != nil {
		picker.Close()
		return Outcome{}, err
	}
	return picker.Confirm()
}
