package entities

import "time"

// Action is a candidate initiative of a pillar. It is immutable for the
// lifetime of a ranking session.
type Action struct {
	ActionID    string
	PillarID    string
	Title       string
	Description string
}

// Assignment places an action at a 1-based position.
type Assignment struct {
	ActionID string
	Position int
}

// RankedAction is the finalized form of an assignment handed to persistence.
type RankedAction struct {
	ActionID string
	Rank     int
}

type Phase string

const (
	PhaseUnranked Phase = "unranked"
	PhasePartial  Phase = "partial"
	PhaseComplete Phase = "complete"
	PhaseFrozen   Phase = "frozen"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Marker flags actions that changed place recently so views can animate them.
// Markers are cosmetic and never part of the ordering.
type Marker struct {
	ActionID  string    `json:"action_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PillarCompletion struct {
	SessionID   string
	PillarID    string
	CompletedAt time.Time
}

type Confessional struct {
	ConfessionalID string
	SessionID      string
	PillarID       string
	TopAction      string
	Confession     string
	SubmittedAt    time.Time
}

type PillarProgress struct {
	PillarID        string
	Name            string
	Color           string
	Icon            string
	IsCompleted     bool
	CompletedAt     *time.Time
	TopAction       *Action
	HasConfessional bool
}

type Achievement struct {
	SessionID  string
	MeetingID  string
	Nickname   string
	ShareCode  string
	UnlockedAt *time.Time
	Unlocked   bool
	Pillars    []PillarProgress
}

// ActionStanding aggregates every persisted rank of one action in a meeting.
// TotalPoints gives N points for a first place down to 1 for the last.
type ActionStanding struct {
	ActionID    string
	PillarID    string
	Title       string
	TotalRank1  int
	AvgRank     float64
	TotalPoints int
	Rankings    int
}

type PillarInsights struct {
	PillarID string
	Name     string
	Insights []string
}

type MeetingDashboard struct {
	MeetingID     string
	Title         string
	TotalSessions int
	TopActions    []ActionStanding
	Confessionals []PillarInsights
}
