package ports

import (
	"context"
	"time"

	"jornada/contexts/strategy-journey/session-service/domain/entities"
)

type SessionRepository interface {
	// FindActiveCode returns ErrInvalidMeetingCode when the code is unknown or
	// inactive.
	FindActiveCode(ctx context.Context, code string) (entities.MeetingCode, error)
	CreateSession(ctx context.Context, session entities.Session) (entities.Session, error)
	GetSession(ctx context.Context, sessionID string) (entities.Session, error)
}

// MeetingAdmin is the operator surface used by the CLI to open rooms.
type MeetingAdmin interface {
	UpsertMeeting(ctx context.Context, meeting entities.Meeting) error
	UpsertMeetingCode(ctx context.Context, code entities.MeetingCode) error
}

// SessionObserver is told about new sessions. In-memory deployments use it to
// mirror sessions into other modules' projections.
type SessionObserver interface {
	SessionJoined(ctx context.Context, session entities.Session)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
