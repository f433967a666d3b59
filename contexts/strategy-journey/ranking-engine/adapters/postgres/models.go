package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

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

func (m pillarModel) toProjection() ports.PillarProjection {
	return ports.PillarProjection{
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

type priorityModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	SessionID string    `gorm:"column:session_id"`
	ActionID  string    `gorm:"column:action_id"`
	Rank      int       `gorm:"column:rank"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (priorityModel) TableName() string {
	return "user_priorities"
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

func (m sessionPillarModel) toEntity() entities.PillarCompletion {
	completion := entities.PillarCompletion{SessionID: m.SessionID, PillarID: m.PillarID}
	if m.CompletedAt != nil {
		completion.CompletedAt = m.CompletedAt.UTC()
	}
	return completion
}

type sessionProjectionModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	MeetingID string `gorm:"column:meeting_id"`
	Nickname  string `gorm:"column:nickname"`
}

func (sessionProjectionModel) TableName() string {
	return "sessions"
}

type meetingProjectionModel struct {
	ID    string `gorm:"column:id;primaryKey"`
	Title string `gorm:"column:title"`
}

func (meetingProjectionModel) TableName() string {
	return "meetings"
}

// confessionalAnswer is the stored answer document.
type confessionalAnswer struct {
	TopAction  string `json:"topAction"`
	Confession string `json:"confession"`
	Timestamp  string `json:"timestamp"`
}

type confessionalModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	SessionID string    `gorm:"column:session_id"`
	PillarID  string    `gorm:"column:pillar_id"`
	Answer    string    `gorm:"column:answer;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (confessionalModel) TableName() string {
	return "confessionals"
}

func confessionalModelFromEntity(item entities.Confessional) (confessionalModel, error) {
	submittedAt := item.SubmittedAt.UTC()
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	answer, err := json.Marshal(confessionalAnswer{
		TopAction:  item.TopAction,
		Confession: item.Confession,
		Timestamp:  submittedAt.Format(time.RFC3339),
	})
	if err != nil {
		return confessionalModel{}, err
	}
	return confessionalModel{
		ID:        strings.TrimSpace(item.ConfessionalID),
		SessionID: strings.TrimSpace(item.SessionID),
		PillarID:  strings.TrimSpace(item.PillarID),
		Answer:    string(answer),
		CreatedAt: submittedAt,
		UpdatedAt: submittedAt,
	}, nil
}

func (m confessionalModel) toEntity() entities.Confessional {
	item := entities.Confessional{
		ConfessionalID: m.ID,
		SessionID:      m.SessionID,
		PillarID:       m.PillarID,
		SubmittedAt:    m.UpdatedAt.UTC(),
	}
	var answer confessionalAnswer
	if err := json.Unmarshal([]byte(m.Answer), &answer); err == nil {
		item.TopAction = answer.TopAction
		item.Confession = answer.Confession
		if parsed, err := time.Parse(time.RFC3339, answer.Timestamp); err == nil {
			item.SubmittedAt = parsed.UTC()
		}
	}
	return item
}

func toConfessionalEntities(rows []confessionalModel) []entities.Confessional {
	items := make([]entities.Confessional, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type achievementModel struct {
	SessionID  string    `gorm:"column:session_id;primaryKey"`
	MeetingID  string    `gorm:"column:meeting_id"`
	Nickname   string    `gorm:"column:nickname"`
	ShareCode  string    `gorm:"column:share_code"`
	UnlockedAt time.Time `gorm:"column:unlocked_at"`
}

func (achievementModel) TableName() string {
	return "achievements"
}

func (m achievementModel) toRecord() ports.AchievementRecord {
	return ports.AchievementRecord{
		SessionID:  m.SessionID,
		MeetingID:  m.MeetingID,
		Nickname:   m.Nickname,
		ShareCode:  m.ShareCode,
		UnlockedAt: m.UnlockedAt.UTC(),
	}
}

type meetingPriorityRow struct {
	SessionID string `gorm:"column:session_id"`
	ActionID  string `gorm:"column:action_id"`
	PillarID  string `gorm:"column:pillar_id"`
	Title     string `gorm:"column:title"`
	Rank      int    `gorm:"column:rank"`
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ranking_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "ranking_event_dedup"
}
