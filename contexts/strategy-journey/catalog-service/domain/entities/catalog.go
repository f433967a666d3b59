package entities

import "time"

type Pillar struct {
	PillarID    string
	Name        string
	Description string
	Color       string
	Icon        string
}

type Action struct {
	ActionID    string
	PillarID    string
	Title       string
	Description string
}

// PillarStatus is the per-session completion flag of a pillar.
type PillarStatus struct {
	PillarID    string
	IsCompleted bool
	CompletedAt *time.Time
}

type PillarWithStatus struct {
	Pillar
	Status PillarStatus
}
