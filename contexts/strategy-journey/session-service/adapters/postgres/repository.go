package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"jornada/contexts/strategy-journey/session-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/session-service/domain/errors"
	"jornada/contexts/strategy-journey/session-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type meetingModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	Title     string     `gorm:"column:title"`
	StartDate *time.Time `gorm:"column:start_date"`
	EndDate   *time.Time `gorm:"column:end_date"`
}

func (meetingModel) TableName() string {
	return "meetings"
}

type meetingCodeModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	MeetingID string `gorm:"column:meeting_id"`
	Code      string `gorm:"column:code"`
	IsActive  bool   `gorm:"column:is_active"`
}

func (meetingCodeModel) TableName() string {
	return "meeting_codes"
}

func (m meetingCodeModel) toEntity() entities.MeetingCode {
	return entities.MeetingCode{
		CodeID:    m.ID,
		MeetingID: m.MeetingID,
		Code:      m.Code,
		IsActive:  m.IsActive,
	}
}

type sessionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	MeetingID string    `gorm:"column:meeting_id"`
	Code      string    `gorm:"column:code"`
	Nickname  string    `gorm:"column:nickname"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionModel) TableName() string {
	return "sessions"
}

func (m sessionModel) toEntity() entities.Session {
	return entities.Session{
		SessionID: m.ID,
		MeetingID: m.MeetingID,
		Code:      m.Code,
		Nickname:  m.Nickname,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (r *Repository) FindActiveCode(ctx context.Context, code string) (entities.MeetingCode, error) {
	var rows []meetingCodeModel
	if err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", entities.NormalizeCode(code), true).
		Limit(1).
		Find(&rows).Error; err != nil {
		return entities.MeetingCode{}, r.logError("session_code_lookup_failed", err)
	}
	if len(rows) == 0 {
		return entities.MeetingCode{}, domainerrors.ErrInvalidMeetingCode
	}
	return rows[0].toEntity(), nil
}

func (r *Repository) CreateSession(ctx context.Context, session entities.Session) (entities.Session, error) {
	row := sessionModel{
		ID:        strings.TrimSpace(session.SessionID),
		MeetingID: strings.TrimSpace(session.MeetingID),
		Code:      entities.NormalizeCode(session.Code),
		Nickname:  strings.TrimSpace(session.Nickname),
		CreatedAt: session.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Session{}, domainerrors.ErrConflict
		}
		return entities.Session{}, r.logError("session_create_failed", err, "meeting_id", row.MeetingID)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (entities.Session, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(sessionID)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	if err != nil {
		return entities.Session{}, r.logError("session_get_failed", err, "session_id", sessionID)
	}
	return row.toEntity(), nil
}

func (r *Repository) UpsertMeeting(ctx context.Context, meeting entities.Meeting) error {
	row := meetingModel{
		ID:        strings.TrimSpace(meeting.MeetingID),
		Title:     strings.TrimSpace(meeting.Title),
		StartDate: meeting.StartDate,
		EndDate:   meeting.EndDate,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "start_date", "end_date"}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("session_meeting_upsert_failed", err, "meeting_id", row.ID)
	}
	return nil
}

func (r *Repository) UpsertMeetingCode(ctx context.Context, code entities.MeetingCode) error {
	row := meetingCodeModel{
		ID:        strings.TrimSpace(code.CodeID),
		MeetingID: strings.TrimSpace(code.MeetingID),
		Code:      entities.NormalizeCode(code.Code),
		IsActive:  code.IsActive,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"meeting_id", "is_active"}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("session_meeting_code_upsert_failed", err, "meeting_id", row.MeetingID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "strategy-journey/session-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("session repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.SessionRepository = (*Repository)(nil)
var _ ports.MeetingAdmin = (*Repository)(nil)
