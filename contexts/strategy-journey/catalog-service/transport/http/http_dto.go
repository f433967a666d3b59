package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PillarResponse struct {
	PillarID    string     `json:"pillar_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Color       string     `json:"color,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type ListPillarsResponse struct {
	Items []PillarResponse `json:"items"`
}

type ActionResponse struct {
	ActionID    string `json:"action_id"`
	PillarID    string `json:"pillar_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ListActionsResponse struct {
	Items []ActionResponse `json:"items"`
}

type PillarStatusResponse struct {
	PillarID    string     `json:"pillar_id"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
