package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type JoinSessionRequest struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
}

type SessionResponse struct {
	SessionID string    `json:"session_id"`
	MeetingID string    `json:"meeting_id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

type ValidateSessionResponse struct {
	Valid     bool   `json:"valid"`
	SessionID string `json:"session_id"`
	MeetingID string `json:"meeting_id"`
	Nickname  string `json:"nickname"`
}
