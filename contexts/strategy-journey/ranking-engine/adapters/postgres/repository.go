package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetPillar(ctx context.Context, pillarID string) (ports.PillarProjection, error) {
	var row pillarModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pillarID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PillarProjection{}, domainerrors.ErrPillarNotFound
		}
		return ports.PillarProjection{}, r.logError("ranking_repo_get_pillar_failed", err, "pillar_id", strings.TrimSpace(pillarID))
	}
	return row.toProjection(), nil
}

func (r *Repository) ListPillars(ctx context.Context) ([]ports.PillarProjection, error) {
	var rows []pillarModel
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("ranking_repo_list_pillars_failed", err)
	}
	items := make([]ports.PillarProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items, nil
}

func (r *Repository) ListActions(ctx context.Context, pillarID string) ([]entities.Action, error) {
	var rows []actionModel
	if err := r.db.WithContext(ctx).
		Where("pillar_id = ?", strings.TrimSpace(pillarID)).
		Order("title ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ranking_repo_list_actions_failed", err, "pillar_id", strings.TrimSpace(pillarID))
	}
	items := make([]entities.Action, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// SaveRanking is the transactional persistence writer: delete the session's
// previous ranks for the pillar's actions, insert the new order, mark the
// pillar completed and queue the events. Any failure rolls back all of it.
func (r *Repository) SaveRanking(ctx context.Context, input ports.SaveRankingInput) error {
	sessionID := strings.TrimSpace(input.SessionID)
	pillarID := strings.TrimSpace(input.PillarID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := replacePriorities(tx, sessionID, input.ActionIDs, input.Order, input.CompletedAt); err != nil {
			return err
		}
		if err := markPillarCompleted(tx, sessionID, pillarID, input.CompletedAt); err != nil {
			return err
		}
		for _, event := range input.Events {
			if err := appendOutbox(tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrIdempotencyConflict) {
			return err
		}
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("ranking_repo_save_ranking_failed", err,
			"session_id", sessionID,
			"pillar_id", pillarID,
			"ranked", len(input.Order),
		)
	}
	return nil
}

func (r *Repository) ReplacePriorities(
	ctx context.Context,
	sessionID string,
	actionIDs []string,
	order []entities.RankedAction,
) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replacePriorities(tx, strings.TrimSpace(sessionID), actionIDs, order, time.Now().UTC())
	})
	if err != nil {
		return r.logError("ranking_repo_replace_priorities_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	return nil
}

func (r *Repository) MarkPillarCompleted(ctx context.Context, sessionID string, pillarID string, completedAt time.Time) error {
	if err := markPillarCompleted(r.db.WithContext(ctx), strings.TrimSpace(sessionID), strings.TrimSpace(pillarID), completedAt); err != nil {
		return r.logError("ranking_repo_mark_pillar_completed_failed", err,
			"session_id", strings.TrimSpace(sessionID),
			"pillar_id", strings.TrimSpace(pillarID),
		)
	}
	return nil
}

func (r *Repository) ListPriorities(ctx context.Context, sessionID string, actionIDs []string) ([]entities.RankedAction, error) {
	if len(actionIDs) == 0 {
		return []entities.RankedAction{}, nil
	}
	var rows []priorityModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Where("action_id IN ?", trimAll(actionIDs)).
		Order("rank ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ranking_repo_list_priorities_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	items := make([]entities.RankedAction, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.RankedAction{ActionID: row.ActionID, Rank: row.Rank})
	}
	return items, nil
}

func (r *Repository) GetPillarCompletion(ctx context.Context, sessionID string, pillarID string) (entities.PillarCompletion, bool, error) {
	var row sessionPillarModel
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND pillar_id = ? AND is_completed = ?", strings.TrimSpace(sessionID), strings.TrimSpace(pillarID), true).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.PillarCompletion{}, false, nil
		}
		return entities.PillarCompletion{}, false, r.logError("ranking_repo_get_pillar_completion_failed", err,
			"session_id", strings.TrimSpace(sessionID),
			"pillar_id", strings.TrimSpace(pillarID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListPillarCompletions(ctx context.Context, sessionID string) ([]entities.PillarCompletion, error) {
	var rows []sessionPillarModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_completed = ?", strings.TrimSpace(sessionID), true).
		Order("pillar_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ranking_repo_list_pillar_completions_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	items := make([]entities.PillarCompletion, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID string) (ports.SessionProjection, error) {
	var row sessionProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SessionProjection{}, domainerrors.ErrSessionNotFound
		}
		return ports.SessionProjection{}, r.logError("ranking_repo_get_session_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	return ports.SessionProjection{SessionID: row.ID, MeetingID: row.MeetingID, Nickname: row.Nickname}, nil
}

func (r *Repository) SaveConfessional(
	ctx context.Context,
	confessional entities.Confessional,
	event ports.EventEnvelope,
) (entities.Confessional, error) {
	row, err := confessionalModelFromEntity(confessional)
	if err != nil {
		return entities.Confessional{}, r.logError("ranking_repo_confessional_marshal_failed", err,
			"session_id", strings.TrimSpace(confessional.SessionID),
		)
	}
	var saved confessionalModel
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "pillar_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"answer", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ? AND pillar_id = ?", row.SessionID, row.PillarID).First(&saved).Error; err != nil {
			return err
		}
		return appendOutbox(tx, event)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrIdempotencyConflict) {
			return entities.Confessional{}, err
		}
		return entities.Confessional{}, r.logError("ranking_repo_save_confessional_failed", err,
			"session_id", row.SessionID,
			"pillar_id", row.PillarID,
		)
	}
	return saved.toEntity(), nil
}

func (r *Repository) ListConfessionals(ctx context.Context, sessionID string) ([]entities.Confessional, error) {
	var rows []confessionalModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("ranking_repo_list_confessionals_failed", err, "session_id", strings.TrimSpace(sessionID))
	}
	return toConfessionalEntities(rows), nil
}

func (r *Repository) GetAchievementRecord(ctx context.Context, sessionID string) (ports.AchievementRecord, bool, error) {
	var row achievementModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AchievementRecord{}, false, nil
		}
		return ports.AchievementRecord{}, false, r.logError("ranking_repo_get_achievement_failed", err,
			"session_id", strings.TrimSpace(sessionID),
		)
	}
	return row.toRecord(), true, nil
}

func (r *Repository) GetAchievementByShareCode(ctx context.Context, shareCode string) (ports.AchievementRecord, error) {
	var row achievementModel
	err := r.db.WithContext(ctx).
		Where("share_code = ?", strings.ToUpper(strings.TrimSpace(shareCode))).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AchievementRecord{}, domainerrors.ErrAchievementNotFound
		}
		return ports.AchievementRecord{}, r.logError("ranking_repo_get_achievement_by_code_failed", err)
	}
	return row.toRecord(), nil
}

func (r *Repository) IssueAchievement(ctx context.Context, record ports.AchievementRecord) (ports.AchievementRecord, error) {
	row := achievementModel{
		SessionID:  strings.TrimSpace(record.SessionID),
		MeetingID:  strings.TrimSpace(record.MeetingID),
		Nickname:   strings.TrimSpace(record.Nickname),
		ShareCode:  strings.ToUpper(strings.TrimSpace(record.ShareCode)),
		UnlockedAt: record.UnlockedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return ports.AchievementRecord{}, domainerrors.ErrConflict
		}
		return ports.AchievementRecord{}, r.logError("ranking_repo_issue_achievement_failed", create.Error,
			"session_id", row.SessionID,
		)
	}
	if create.RowsAffected > 0 {
		return row.toRecord(), nil
	}
	existing, found, err := r.GetAchievementRecord(ctx, row.SessionID)
	if err != nil {
		return ports.AchievementRecord{}, err
	}
	if !found {
		return ports.AchievementRecord{}, domainerrors.ErrConflict
	}
	return existing, nil
}

func (r *Repository) GetMeeting(ctx context.Context, meetingID string) (ports.MeetingProjection, error) {
	var row meetingProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(meetingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MeetingProjection{}, domainerrors.ErrMeetingNotFound
		}
		return ports.MeetingProjection{}, r.logError("ranking_repo_get_meeting_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return ports.MeetingProjection{MeetingID: row.ID, Title: row.Title}, nil
}

func (r *Repository) CountMeetingSessions(ctx context.Context, meetingID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sessionProjectionModel{}).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("ranking_repo_count_meeting_sessions_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return int(count), nil
}

func (r *Repository) ListMeetingPriorities(ctx context.Context, meetingID string) ([]ports.PriorityRow, error) {
	var rows []meetingPriorityRow
	err := r.db.WithContext(ctx).
		Table("user_priorities AS p").
		Select("p.session_id, p.action_id, a.pillar_id, a.title, p.rank").
		Joins("JOIN sessions AS s ON s.id = p.session_id").
		Joins("JOIN actions AS a ON a.id = p.action_id").
		Where("s.meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("p.session_id ASC").
		Order("p.rank ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("ranking_repo_list_meeting_priorities_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	items := make([]ports.PriorityRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.PriorityRow{
			SessionID: row.SessionID,
			ActionID:  row.ActionID,
			PillarID:  row.PillarID,
			Title:     row.Title,
			Rank:      row.Rank,
		})
	}
	return items, nil
}

func (r *Repository) ListMeetingConfessionals(ctx context.Context, meetingID string) ([]entities.Confessional, error) {
	var rows []confessionalModel
	err := r.db.WithContext(ctx).
		Table("confessionals AS c").
		Select("c.*").
		Joins("JOIN sessions AS s ON s.id = c.session_id").
		Where("s.meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("c.created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("ranking_repo_list_meeting_confessionals_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return toConfessionalEntities(rows), nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	if err := appendOutbox(r.db.WithContext(ctx), envelope); err != nil {
		if errors.Is(err, domainerrors.ErrIdempotencyConflict) {
			return err
		}
		return r.logError("ranking_repo_append_outbox_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ranking_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ranking_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	row := eventDedupModel{
		EventID:     strings.TrimSpace(eventID),
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return false, r.logError("ranking_repo_reserve_event_failed", create.Error, "event_id", row.EventID)
	}
	if create.RowsAffected > 0 {
		return false, nil
	}

	var existing eventDedupModel
	if err := r.db.WithContext(ctx).
		Select("payload_hash").
		Where("event_id = ?", row.EventID).
		First(&existing).Error; err != nil {
		return false, r.logError("ranking_repo_reserve_event_load_existing_failed", err, "event_id", row.EventID)
	}
	if existing.PayloadHash != row.PayloadHash {
		return false, domainerrors.ErrIdempotencyConflict
	}
	return true, nil
}

func (r *Repository) ReleaseEvent(ctx context.Context, eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&eventDedupModel{}).Error; err != nil {
		return r.logError("ranking_repo_release_event_failed", err, "event_id", eventID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "strategy-journey/ranking-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("ranking repository operation failed", fields...)
	return err
}

func replacePriorities(tx *gorm.DB, sessionID string, actionIDs []string, order []entities.RankedAction, now time.Time) error {
	if len(actionIDs) > 0 {
		if err := tx.
			Where("session_id = ?", sessionID).
			Where("action_id IN ?", trimAll(actionIDs)).
			Delete(&priorityModel{}).Error; err != nil {
			return err
		}
	}
	if len(order) == 0 {
		return nil
	}
	rows := make([]priorityModel, 0, len(order))
	for _, item := range order {
		rows = append(rows, priorityModel{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			ActionID:  strings.TrimSpace(item.ActionID),
			Rank:      item.Rank,
			CreatedAt: now.UTC(),
		})
	}
	return tx.Create(&rows).Error
}

func markPillarCompleted(tx *gorm.DB, sessionID string, pillarID string, completedAt time.Time) error {
	at := completedAt.UTC()
	row := sessionPillarModel{
		SessionID:   sessionID,
		PillarID:    pillarID,
		IsCompleted: true,
		CompletedAt: &at,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "pillar_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_completed", "completed_at"}),
	}).Create(&row).Error
}

func appendOutbox(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return create.Error
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := tx.Select("payload").Where("outbox_id = ?", row.OutboxID).First(&existing).Error; err != nil {
		return err
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func trimAll(values []string) []string {
	items := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ActionCatalog = (*Repository)(nil)
var _ ports.RankingRepository = (*Repository)(nil)
var _ ports.ConfessionalRepository = (*Repository)(nil)
var _ ports.AchievementRepository = (*Repository)(nil)
var _ ports.DashboardRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.EventDedupStore = (*Repository)(nil)
