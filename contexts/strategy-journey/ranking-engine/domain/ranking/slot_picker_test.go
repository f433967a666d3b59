package ranking

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
)

func TestSlotPickerOptionsListEveryPosition(t *testing.T) {
	engine, _ := newTestEngine(t, "A", "B", "C")
	mustApply(t, engine.AddAsNextPriority("A"))
	mustApply(t, engine.AddAsNextPriority("B"))

	picker := NewSlotPicker(engine)
	if err := picker.Open("B"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	want := []Slot{
		{Position: 1, OccupiedBy: "A"},
		{Position: 2, OccupiedBy: "B", Current: true},
		{Position: 3},
	}
	if diff := cmp.Diff(want, picker.Options()); diff != "" {
		t.Fatalf("options (-want +got):\n%s", diff)
	}
}

func TestSlotPickerConfirmAssignsAndCloses(t *testing.T) {
	engine, _ := newTestEngine(t, "A", "B", "C")
	mustApply(t, engine.AddAsNextPriority("A"))
	mustApply(t, engine.AddAsNextPriority("B"))

	picker := NewSlotPicker(engine)
	if err := picker.Open("C"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := picker.Select(1); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	outcome, err := picker.Confirm()
	if err != nil || !outcome.Changed {
		t.Fatalf("expected confirm to assign, got %+v %v", outcome, err)
	}
	if picker.IsOpen() {
		t.Fatalf("picker should close after confirm")
	}
	if diff := cmp.Diff([]string{"C", "B", "A"}, rankedIDs(engine)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSlotPickerErrors(t *testing.T) {
	engine, _ := newTestEngine(t, "A", "B")
	picker := NewSlotPicker(engine)

	if err := picker.Select(1); !errors.Is(err, domainerrors.ErrPickerNotOpen) {
		t.Fatalf("expected picker not open, got %v", err)
	}
	if err := picker.Open("Z"); !errors.Is(err, domainerrors.ErrActionNotFound) {
		t.Fatalf("expected action not found, got %v", err)
	}
	if err := picker.Open("A"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := picker.Select(3); !errors.Is(err, domainerrors.ErrInvalidPosition) {
		t.Fatalf("expected invalid position, got %v", err)
	}
	if _, err := picker.Confirm(); !errors.Is(err, domainerrors.ErrNoTargetSelected) {
		t.Fatalf("expected no target, got %v", err)
	}
	if engine.Count() != 0 {
		t.Fatalf("dismissed picker must not change the ranking")
	}
}

func TestPickSlotOnFrozenRanking(t *testing.T) {
	engine, _ := newTestEngine(t, "A")
	mustApply(t, engine.AddAsNextPriority("A"))
	if err := engine.Freeze(); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}
	if _, err := PickSlot(engine, "A", 1); !errors.Is(err, domainerrors.ErrRankingFrozen) {
		t.Fatalf("expected frozen, got %v", err)
	}
}
