package ranking

import (
	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
)

type OperationKind string

const (
	OpMove           OperationKind = "move"
	OpAdd            OperationKind = "add"
	OpRemove         OperationKind = "remove"
	OpAssign         OperationKind = "assign"
	OpReorder        OperationKind = "reorder"
	OpMoveToPosition OperationKind = "move_to_position"
	OpReverse        OperationKind = "reverse"
	OpSortByTitle    OperationKind = "sort_by_title"
	OpClear          OperationKind = "clear"
)

// Operation is the modality-neutral command form of an engine call.
type Operation struct {
	Kind      OperationKind
	ActionID  string
	Direction entities.Direction
	Position  int
	FromIndex int
	ToIndex   int
}

func Apply(engine *Engine, op Operation) (Outcome, error) {
	switch op.Kind {
	case OpMove:
		return engine.MoveItem(op.ActionID, op.Direction)
	case OpAdd:
		return engine.AddAsNextPriority(op.ActionID)
	case OpRemove:
		return engine.RemovePriority(op.ActionID)
	case OpAssign:
		return engine.AssignPosition(op.ActionID, op.Position)
	case OpReorder:
		return engine.ReorderByDragDrop(op.FromIndex, op.ToIndex)
	case OpMoveToPosition:
		return engine.MoveToPosition(op.ActionID, op.Position)
	case OpReverse:
		return engine.Reverse()
	case OpSortByTitle:
		return engine.SortByTitle()
	case OpClear:
		return engine.ClearAll()
	default:
		return Outcome{}, domainerrors.ErrUnknownOperation
	}
}
