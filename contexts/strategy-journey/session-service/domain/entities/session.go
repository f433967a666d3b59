package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxNicknameLength = 30
	MaxCodeLength     = 10
)

type Meeting struct {
	MeetingID string
	Title     string
	StartDate *time.Time
	EndDate   *time.Time
}

// MeetingCode is the room code participants type to join a meeting.
type MeetingCode struct {
	CodeID    string
	MeetingID string
	Code      string
	IsActive  bool
}

type Session struct {
	SessionID string
	MeetingID string
	Code      string
	Nickname  string
	CreatedAt time.Time
}

// NormalizeCode upper-cases and trims a typed room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeJoinCode normalizes a typed room code and reports whether it is
// non-empty and within MaxCodeLength.
func NormalizeJoinCode(code string) (string, bool) {
	value := NormalizeCode(code)
	if value == "" || utf8.RuneCountInString(value) > MaxCodeLength {
		return value, false
	}
	return value, true
}

// NormalizeNickname trims a nickname and reports whether it is usable.
func NormalizeNickname(nickname string) (string, bool) {
	value := strings.TrimSpace(nickname)
	if value == "" || utf8.RuneCountInString(value) > MaxNicknameLength {
		return value, false
	}
	return value, true
}
