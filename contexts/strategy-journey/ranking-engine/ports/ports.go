package ports

import (
	"context"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	"jornada/contexts/strategy-journey/ranking-engine/domain/ranking"
	contractsv1 "jornada/contracts/gen/events/v1"
)

// PillarProjection is the ranking-side read view of a catalog pillar.
type PillarProjection struct {
	PillarID    string
	Name        string
	Description string
	Color       string
	Icon        string
}

// SessionProjection is the ranking-side read view of a participant session.
type SessionProjection struct {
	SessionID string
	MeetingID string
	Nickname  string
}

// ActionCatalog reads the immutable pillar/action catalog.
type ActionCatalog interface {
	GetPillar(ctx context.Context, pillarID string) (PillarProjection, error)
	ListPillars(ctx context.Context) ([]PillarProjection, error)
	ListActions(ctx context.Context, pillarID string) ([]entities.Action, error)
}

// SaveRankingInput carries one finalized ranking plus the events that must be
// committed with it.
type SaveRankingInput struct {
	SessionID   string
	PillarID    string
	ActionIDs   []string
	Order       []entities.RankedAction
	CompletedAt time.Time
	Events      []EventEnvelope
}

type RankingRepository interface {
	// SaveRanking replaces the session's rank rows for ActionIDs, marks the
	// pillar completed and appends Events to the outbox in one transaction.
	SaveRanking(ctx context.Context, input SaveRankingInput) error
	ReplacePriorities(ctx context.Context, sessionID string, actionIDs []string, order []entities.RankedAction) error
	MarkPillarCompleted(ctx context.Context, sessionID string, pillarID string, completedAt time.Time) error
	ListPriorities(ctx context.Context, sessionID string, actionIDs []string) ([]entities.RankedAction, error)
	GetPillarCompletion(ctx context.Context, sessionID string, pillarID string) (entities.PillarCompletion, bool, error)
	ListPillarCompletions(ctx context.Context, sessionID string) ([]entities.PillarCompletion, error)
	GetSession(ctx context.Context, sessionID string) (SessionProjection, error)
}

type ConfessionalRepository interface {
	// SaveConfessional upserts by (session, pillar) and appends event in the
	// same transaction.
	SaveConfessional(ctx context.Context, confessional entities.Confessional, event EventEnvelope) (entities.Confessional, error)
	ListConfessionals(ctx context.Context, sessionID string) ([]entities.Confessional, error)
}

type AchievementRecord struct {
	SessionID  string
	MeetingID  string
	Nickname   string
	ShareCode  string
	UnlockedAt time.Time
}

type AchievementRepository interface {
	GetAchievementRecord(ctx context.Context, sessionID string) (AchievementRecord, bool, error)
	GetAchievementByShareCode(ctx context.Context, shareCode string) (AchievementRecord, error)
	// IssueAchievement is idempotent per session: an existing record wins and
	// is returned unchanged.
	IssueAchievement(ctx context.Context, record AchievementRecord) (AchievementRecord, error)
}

// PriorityRow is one persisted rank of a session in a meeting.
type PriorityRow struct {
	SessionID string
	ActionID  string
	PillarID  string
	Title     string
	Rank      int
}

type MeetingProjection struct {
	MeetingID string
	Title     string
}

type DashboardRepository interface {
	GetMeeting(ctx context.Context, meetingID string) (MeetingProjection, error)
	CountMeetingSessions(ctx context.Context, meetingID string) (int, error)
	ListMeetingPriorities(ctx context.Context, meetingID string) ([]PriorityRow, error)
	ListMeetingConfessionals(ctx context.Context, meetingID string) ([]entities.Confessional, error)
}

// Draft is the cached in-progress ranking of one (session, pillar) pair.
type Draft struct {
	Snapshot  ranking.Snapshot `json:"snapshot"`
	Version   int64            `json:"version"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// DraftStore is a write-through cache of ranking drafts. SaveDraft succeeds
// only when the stored version still equals expectedVersion (0 = absent) and
// returns ErrDraftConflict otherwise.
type DraftStore interface {
	LoadDraft(ctx context.Context, sessionID string, pillarID string) (Draft, bool, error)
	SaveDraft(ctx context.Context, sessionID string, pillarID string, draft Draft, expectedVersion int64) error
	DeleteDraft(ctx context.Context, sessionID string, pillarID string) error
}

// EventDedupStore records consumed events. ReserveEvent reports whether the
// event was already processed; ReleaseEvent forgets a reservation whose
// processing failed.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
	ReleaseEvent(ctx context.Context, eventID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ShareCodeGenerator issues public achievement codes.
type ShareCodeGenerator interface {
	NewShareCode(ctx context.Context) (string, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
