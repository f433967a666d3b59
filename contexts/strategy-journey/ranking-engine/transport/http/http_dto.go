package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PillarSummary struct {
	PillarID    string `json:"pillar_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type ActionItem struct {
	ActionID    string `json:"action_id"`
	PillarID    string `json:"pillar_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type RankedItem struct {
	Position  int        `json:"position"`
	Action    ActionItem `json:"action"`
	Animating bool       `json:"animating"`
}

type RankingResponse struct {
	SessionID string        `json:"session_id"`
	Pillar    PillarSummary `json:"pillar"`
	Phase     string        `json:"phase"`
	Version   int64         `json:"version"`
	Total     int           `json:"total"`
	Ranked    []RankedItem  `json:"ranked"`
	Unranked  []ActionItem  `json:"unranked"`
}

// OperationRequest carries one engine command. Only the fields relevant to
// Kind are read.
type OperationRequest struct {
	Kind            string `json:"kind"`
	ActionID        string `json:"action_id,omitempty"`
	Direction       string `json:"direction,omitempty"`
	Position        int    `json:"position,omitempty"`
	FromIndex       int    `json:"from_index,omitempty"`
	ToIndex         int    `json:"to_index,omitempty"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type GestureEventRequest struct {
	Type  string    `json:"type"`
	Index int       `json:"index"`
	Y     float64   `json:"y"`
	At    time.Time `json:"at"`
}

type GestureRequest struct {
	Modality        string                `json:"modality"`
	Events          []GestureEventRequest `json:"events"`
	ExpectedVersion *int64                `json:"expected_version,omitempty"`
}

type SlotPickRequest struct {
	ActionID        string `json:"action_id"`
	Position        int    `json:"position"`
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}

type OperationResponse struct {
	Ranking RankingResponse `json:"ranking"`
	Changed bool            `json:"changed"`
	Reason  string          `json:"reason,omitempty"`
}

type RankedActionItem struct {
	ActionID string `json:"action_id"`
	Rank     int    `json:"rank"`
}

type FinalizeResponse struct {
	Ranking          RankingResponse    `json:"ranking"`
	Order            []RankedActionItem `json:"order"`
	JourneyCompleted bool               `json:"journey_completed"`
}

type ConfessionalRequest struct {
	Confession string `json:"confession"`
}

type ConfessionalResponse struct {
	ConfessionalID string    `json:"confessional_id"`
	PillarID       string    `json:"pillar_id"`
	TopAction      string    `json:"top_action"`
	Confession     string    `json:"confession"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type PillarProgressItem struct {
	PillarID        string      `json:"pillar_id"`
	Name            string      `json:"name"`
	Color           string      `json:"color,omitempty"`
	Icon            string      `json:"icon,omitempty"`
	IsCompleted     bool        `json:"is_completed"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	TopAction       *ActionItem `json:"top_action,omitempty"`
	HasConfessional bool        `json:"has_confessional"`
}

type AchievementResponse struct {
	SessionID  string               `json:"session_id"`
	MeetingID  string               `json:"meeting_id"`
	Nickname   string               `json:"nickname"`
	Unlocked   bool                 `json:"unlocked"`
	UnlockedAt *time.Time           `json:"unlocked_at,omitempty"`
	ShareCode  string               `json:"share_code,omitempty"`
	Pillars    []PillarProgressItem `json:"pillars"`
}

type ActionStandingItem struct {
	ActionID    string  `json:"action_id"`
	PillarID    string  `json:"pillar_id"`
	Title       string  `json:"title"`
	TotalRank1  int     `json:"total_rank_1"`
	AvgRank     float64 `json:"avg_rank"`
	TotalPoints int     `json:"total_points"`
	Rankings    int     `json:"rankings"`
}

type PillarInsightsItem struct {
	PillarID string   `json:"pillar_id"`
	Name     string   `json:"name"`
	Insights []string `json:"insights"`
}

type DashboardResponse struct {
	MeetingID     string               `json:"meeting_id"`
	Title         string               `json:"title"`
	TotalSessions int                  `json:"total_sessions"`
	TopActions    []ActionStandingItem `json:"top_actions"`
	Confessionals []PillarInsightsItem `json:"confessionals"`
}
