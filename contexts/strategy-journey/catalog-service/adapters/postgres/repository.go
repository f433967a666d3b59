package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/catalog-service/domain/errors"
	"jornada/contexts/strategy-journey/catalog-service/ports"

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

type pillarModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	Name        string `gorm:"column:name"`
	Description string `gorm:"column:description"`
	Color       string `gorm:"column:color"`
	Icon        string `gorm:"column:icon"`
}

func (pillarModel) TableName() string {
	return "pillars"
}

func (m pillarModel) toEntity() entities.Pillar {
	return entities.Pillar{
		PillarID:    m.ID,
		Name:        m.Name,
		Description: m.Description,
		Color:       m.Color,
		Icon:        m.Icon,
	}
}

type actionModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	PillarID    string `gorm:"column:pillar_id"`
	Title       string `gorm:"column:title"`
	Description string `gorm:"column:description"`
}

func (actionModel) TableName() string {
	return "actions"
}

func (m actionModel) toEntity() entities.Action {
	return entities.Action{
		ActionID:    m.ID,
		PillarID:    m.PillarID,
		Title:       m.Title,
		Description: m.Description,
	}
}

type sessionPillarModel struct {
	SessionID   string     `gorm:"column:session_id;primaryKey"`
	PillarID    string     `gorm:"column:pillar_id;primaryKey"`
	IsCompleted bool       `gorm:"column:is_completed"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (sessionPillarModel) TableName() string {
	return "session_pillars"
}

func (r *Repository) ListPillars(ctx context.Context) ([]entities.Pillar, error) {
	var rows []pillarModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("catalog_list_pillars_failed", err)
	}
	items := make([]entities.Pillar, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetPillar(ctx context.Context, pillarID string) (entities.Pillar, error) {
	var row pillarModel
	err := r.db.WithContext(ctx).Where("id = ?", strings.TrimSpace(pillarID)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Pillar{}, domainerrors.ErrPillarNotFound
	}
	if err != nil {
		return entities.Pillar{}, r.logError("catalog_get_pillar_failed", err, "pillar_id", pillarID)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListActions(ctx context.Context, pillarID string) ([]entities.Action, error) {
	var rows []actionModel
	if err := r.db.WithContext(ctx).
		Where("pillar_id = ?", strings.TrimSpace(pillarID)).
		Order("title ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("catalog_list_actions_failed", err, "pillar_id", pillarID)
	}
	items := make([]entities.Action, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListSessionPillars(ctx context.Context, sessionID string) ([]entities.PillarStatus, error) {
	var rows []sessionPillarModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", strings.TrimSpace(sessionID)).
		Find(&rows).Error; err != nil {
		return nil, r.logError("catalog_list_session_pillars_failed", err, "session_id", sessionID)
	}
	items := make([]entities.PillarStatus, 0, len(rows))
	for _, row := range rows {
		status := entities.PillarStatus{PillarID: row.PillarID, IsCompleted: row.IsCompleted}
		if row.CompletedAt != nil {
			at := row.CompletedAt.UTC()
			status.CompletedAt = &at
		}
		items = append(items, status)
	}
	return items, nil
}

func (r *Repository) UpsertPillar(ctx context.Context, pillar entities.Pillar) error {
	row := pillarModel{
		ID:          strings.TrimSpace(pillar.PillarID),
		Name:        strings.TrimSpace(pillar.Name),
		Description: strings.TrimSpace(pillar.Description),
		Color:       strings.TrimSpace(pillar.Color),
		Icon:        strings.TrimSpace(pillar.Icon),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "color", "icon"}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("catalog_upsert_pillar_failed", err, "pillar_id", row.ID)
	}
	return nil
}

func (r *Repository) UpsertAction(ctx context.Context, action entities.Action) error {
	row := actionModel{
		ID:          strings.TrimSpace(action.ActionID),
		PillarID:    strings.TrimSpace(action.PillarID),
		Title:       strings.TrimSpace(action.Title),
		Description: strings.TrimSpace(action.Description),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pillar_id", "title", "description"}),
	}).Create(&row).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainerrors.ErrPillarNotFound
		}
		return r.logError("catalog_upsert_action_failed", err, "action_id", row.ID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "strategy-journey/catalog-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("catalog repository operation failed", fields...)
	return err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

var _ ports.CatalogRepository = (*Repository)(nil)
var _ ports.CatalogWriter = (*Repository)(nil)
