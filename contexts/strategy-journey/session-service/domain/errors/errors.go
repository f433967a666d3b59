package errors

import "errors"

var (
	ErrInvalidMeetingCode    = errors.New("invalid meeting code")
	ErrInvalidSessionInput   = errors.New("invalid session input")
	ErrSessionNotFound       = errors.New("session not found")
	ErrMeetingNotFound       = errors.New("meeting not found")
	ErrConflict              = errors.New("session conflict")
	ErrRepositoryUnavailable = errors.New("session repository unavailable")
)
