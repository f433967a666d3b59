package errors

import "errors"

var (
	ErrInvalidCatalog        = errors.New("invalid action catalog")
	ErrActionNotFound        = errors.New("action not found")
	ErrInvalidPosition       = errors.New("invalid position")
	ErrRankingFrozen         = errors.New("ranking is frozen")
	ErrRankingIncomplete     = errors.New("not all actions prioritized")
	ErrPickerNotOpen         = errors.New("slot picker is not open")
	ErrNoTargetSelected      = errors.New("no target position selected")
	ErrInvalidGesture        = errors.New("invalid gesture trace")
	ErrUnknownOperation      = errors.New("unknown ranking operation")
	ErrInvalidRankingInput   = errors.New("invalid ranking input")
	ErrDraftConflict         = errors.New("ranking draft version conflict")
	ErrPillarNotFound        = errors.New("pillar not found")
	ErrPillarNotCompleted    = errors.New("pillar is not completed")
	ErrInvalidConfessional   = errors.New("invalid confessional")
	ErrAchievementNotFound   = errors.New("achievement not found")
	ErrMeetingNotFound       = errors.New("meeting not found")
	ErrSessionNotFound       = errors.New("session not found")
	ErrConflict              = errors.New("ranking conflict")
	ErrIdempotencyConflict   = errors.New("event payload conflict")
	ErrRepositoryUnavailable = errors.New("ranking repository unavailable")
)
