package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

type priorityKey struct {
	sessionID string
	actionID  string
}

type pairKey struct {
	sessionID string
	pillarID  string
}

// Seed is the catalog an in-memory module starts with.
type Seed struct {
	Pillars  []ports.PillarProjection
	Actions  []entities.Action
	Meetings []ports.MeetingProjection
	Sessions []ports.SessionProjection
}

type Store struct {
	mu sync.RWMutex

	pillars  map[string]ports.PillarProjection
	actions  map[string]entities.Action
	meetings map[string]ports.MeetingProjection
	sessions map[string]ports.SessionProjection

	priorities    map[priorityKey]int
	completions   map[pairKey]time.Time
	confessionals map[pairKey]entities.Confessional
	achievements  map[string]ports.AchievementRecord
	drafts        map[pairKey]ports.Draft

	outbox     map[string]outboxRecord
	eventDedup map[string]dedupRecord
}

func NewStore(seed Seed) *Store {
	s := &Store{
		pillars:       make(map[string]ports.PillarProjection),
		actions:       make(map[string]entities.Action),
		meetings:      make(map[string]ports.MeetingProjection),
		sessions:      make(map[string]ports.SessionProjection),
		priorities:    make(map[priorityKey]int),
		completions:   make(map[pairKey]time.Time),
		confessionals: make(map[pairKey]entities.Confessional),
		achievements:  make(map[string]ports.AchievementRecord),
		drafts:        make(map[pairKey]ports.Draft),
		outbox:        make(map[string]outboxRecord),
		eventDedup:    make(map[string]dedupRecord),
	}
	for _, pillar := range seed.Pillars {
		s.pillars[strings.TrimSpace(pillar.PillarID)] = pillar
	}
	for _, action := range seed.Actions {
		s.actions[strings.TrimSpace(action.ActionID)] = action
	}
	for _, meeting := range seed.Meetings {
		s.meetings[strings.TrimSpace(meeting.MeetingID)] = meeting
	}
	for _, session := range seed.Sessions {
		s.sessions[strings.TrimSpace(session.SessionID)] = session
	}
	return s
}

// SetSession mirrors a session created by the session service.
func (s *Store) SetSession(session ports.SessionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[strings.TrimSpace(session.SessionID)] = ports.SessionProjection{
		SessionID: strings.TrimSpace(session.SessionID),
		MeetingID: strings.TrimSpace(session.MeetingID),
		Nickname:  strings.TrimSpace(session.Nickname),
	}
}

// SetMeeting mirrors a meeting opened through the session service.
func (s *Store) SetMeeting(meeting ports.MeetingProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meeting.MeetingID = strings.TrimSpace(meeting.MeetingID)
	s.meetings[meeting.MeetingID] = meeting
}

func (s *Store) GetPillar(_ context.Context, pillarID string) (ports.PillarProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pillar, ok := s.pillars[strings.TrimSpace(pillarID)]
	if !ok {
		return ports.PillarProjection{}, domainerrors.ErrPillarNotFound
	}
	return pillar, nil
}

func (s *Store) ListPillars(_ context.Context) ([]ports.PillarProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.PillarProjection, 0, len(s.pillars))
	for _, pillar := range s.pillars {
		items = append(items, pillar)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name == items[j].Name {
			return items[i].PillarID < items[j].PillarID
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Store) ListActions(_ context.Context, pillarID string) ([]entities.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pillarID = strings.TrimSpace(pillarID)
	items := make([]entities.Action, 0)
	for _, action := range s.actions {
		if action.PillarID == pillarID {
			items = append(items, action)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Title == items[j].Title {
			return items[i].ActionID < items[j].ActionID
		}
		return items[i].Title < items[j].Title
	})
	return items, nil
}

func (s *Store) SaveRanking(_ context.Context, input ports.SaveRankingInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stage outbox rows first so a conflicting event leaves nothing written.
	staged := make([]outboxRecord, 0, len(input.Events))
	for _, event := range input.Events {
		record, err := s.stageOutboxLocked(event)
		if err != nil {
			return err
		}
		staged = append(staged, record)
	}

	s.replacePrioritiesLocked(input.SessionID, input.ActionIDs, input.Order)
	s.completions[pairKey{sessionID: strings.TrimSpace(input.SessionID), pillarID: strings.TrimSpace(input.PillarID)}] = input.CompletedAt.UTC()
	for _, record := range staged {
		s.outbox[record.message.OutboxID] = record
	}
	return nil
}

func (s *Store) ReplacePriorities(_ context.Context, sessionID string, actionIDs []string, order []entities.RankedAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replacePrioritiesLocked(sessionID, actionIDs, order)
	return nil
}

func (s *Store) MarkPillarCompleted(_ context.Context, sessionID string, pillarID string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[pairKey{sessionID: strings.TrimSpace(sessionID), pillarID: strings.TrimSpace(pillarID)}] = completedAt.UTC()
	return nil
}

func (s *Store) ListPriorities(_ context.Context, sessionID string, actionIDs []string) ([]entities.RankedAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.RankedAction, 0, len(actionIDs))
	for _, actionID := range actionIDs {
		rank, ok := s.priorities[priorityKey{sessionID: strings.TrimSpace(sessionID), actionID: strings.TrimSpace(actionID)}]
		if ok {
			items = append(items, entities.RankedAction{ActionID: strings.TrimSpace(actionID), Rank: rank})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Rank < items[j].Rank
	})
	return items, nil
}

func (s *Store) GetPillarCompletion(_ context.Context, sessionID string, pillarID string) (entities.PillarCompletion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := pairKey{sessionID: strings.TrimSpace(sessionID), pillarID: strings.TrimSpace(pillarID)}
	completedAt, ok := s.completions[key]
	if !ok {
		return entities.PillarCompletion{}, false, nil
	}
	return entities.PillarCompletion{SessionID: key.sessionID, PillarID: key.pillarID, CompletedAt: completedAt}, true, nil
}

func (s *Store) ListPillarCompletions(_ context.Context, sessionID string) ([]entities.PillarCompletion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID = strings.TrimSpace(sessionID)
	items := make([]entities.PillarCompletion, 0)
	for key, completedAt := range s.completions {
		if key.sessionID == sessionID {
			items = append(items, entities.PillarCompletion{SessionID: key.sessionID, PillarID: key.pillarID, CompletedAt: completedAt})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PillarID < items[j].PillarID
	})
	return items, nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (ports.SessionProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return ports.SessionProjection{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) SaveConfessional(
	_ context.Context,
	confessional entities.Confessional,
	event ports.EventEnvelope,
) (entities.Confessional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.stageOutboxLocked(event)
	if err != nil {
		return entities.Confessional{}, err
	}
	key := pairKey{sessionID: strings.TrimSpace(confessional.SessionID), pillarID: strings.TrimSpace(confessional.PillarID)}
	if existing, ok := s.confessionals[key]; ok {
		confessional.ConfessionalID = existing.ConfessionalID
	}
	s.confessionals[key] = confessional
	s.outbox[record.message.OutboxID] = record
	return confessional, nil
}

func (s *Store) ListConfessionals(_ context.Context, sessionID string) ([]entities.Confessional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID = strings.TrimSpace(sessionID)
	items := make([]entities.Confessional, 0)
	for key, confessional := range s.confessionals {
		if key.sessionID == sessionID {
			items = append(items, confessional)
		}
	}
	sortConfessionals(items)
	return items, nil
}

func (s *Store) GetAchievementRecord(_ context.Context, sessionID string) (ports.AchievementRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.achievements[strings.TrimSpace(sessionID)]
	return record, ok, nil
}

func (s *Store) GetAchievementByShareCode(_ context.Context, shareCode string) (ports.AchievementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shareCode = strings.ToUpper(strings.TrimSpace(shareCode))
	for _, record := range s.achievements {
		if record.ShareCode == shareCode {
			return record, nil
		}
	}
	return ports.AchievementRecord{}, domainerrors.ErrAchievementNotFound
}

func (s *Store) IssueAchievement(_ context.Context, record ports.AchievementRecord) (ports.AchievementRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessionID := strings.TrimSpace(record.SessionID)
	if existing, ok := s.achievements[sessionID]; ok {
		return existing, nil
	}
	record.SessionID = sessionID
	record.ShareCode = strings.ToUpper(strings.TrimSpace(record.ShareCode))
	for _, existing := range s.achievements {
		if existing.ShareCode == record.ShareCode {
			return ports.AchievementRecord{}, domainerrors.ErrConflict
		}
	}
	s.achievements[sessionID] = record
	return record, nil
}

func (s *Store) GetMeeting(_ context.Context, meetingID string) (ports.MeetingProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meeting, ok := s.meetings[strings.TrimSpace(meetingID)]
	if !ok {
		return ports.MeetingProjection{}, domainerrors.ErrMeetingNotFound
	}
	return meeting, nil
}

func (s *Store) CountMeetingSessions(_ context.Context, meetingID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, session := range s.sessions {
		if session.MeetingID == strings.TrimSpace(meetingID) {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListMeetingPriorities(_ context.Context, meetingID string) ([]ports.PriorityRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meetingID = strings.TrimSpace(meetingID)
	items := make([]ports.PriorityRow, 0)
	for key, rank := range s.priorities {
		session, ok := s.sessions[key.sessionID]
		if !ok || session.MeetingID != meetingID {
			continue
		}
		action := s.actions[key.actionID]
		items = append(items, ports.PriorityRow{
			SessionID: key.sessionID,
			ActionID:  key.actionID,
			PillarID:  action.PillarID,
			Title:     action.Title,
			Rank:      rank,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SessionID == items[j].SessionID {
			return items[i].Rank < items[j].Rank
		}
		return items[i].SessionID < items[j].SessionID
	})
	return items, nil
}

func (s *Store) ListMeetingConfessionals(_ context.Context, meetingID string) ([]entities.Confessional, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meetingID = strings.TrimSpace(meetingID)
	items := make([]entities.Confessional, 0)
	for key, confessional := range s.confessionals {
		if session, ok := s.sessions[key.sessionID]; ok && session.MeetingID == meetingID {
			items = append(items, confessional)
		}
	}
	sortConfessionals(items)
	return items, nil
}

func (s *Store) LoadDraft(_ context.Context, sessionID string, pillarID string) (ports.Draft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[pairKey{sessionID: strings.TrimSpace(sessionID), pillarID: strings.TrimSpace(pillarID)}]
	return draft, ok, nil
}

func (s *Store) SaveDraft(_ context.Context, sessionID string, pillarID string, draft ports.Draft, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{sessionID: strings.TrimSpace(sessionID), pillarID: strings.TrimSpace(pillarID)}
	if s.drafts[key].Version != expectedVersion {
		return domainerrors.ErrDraftConflict
	}
	s.drafts[key] = draft
	return nil
}

func (s *Store) DeleteDraft(_ context.Context, sessionID string, pillarID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, pairKey{sessionID: strings.TrimSpace(sessionID), pillarID: strings.TrimSpace(pillarID)})
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.stageOutboxLocked(envelope)
	if err != nil {
		return err
	}
	s.outbox[record.message.OutboxID] = record
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if !row.published {
			items = append(items, row.message)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	if existing, ok := s.eventDedup[key]; ok {
		if existing.expiresAt.IsZero() || time.Now().UTC().Before(existing.expiresAt) {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrIdempotencyConflict
			}
			return true, nil
		}
	}
	s.eventDedup[key] = dedupRecord{payloadHash: strings.TrimSpace(payloadHash), expiresAt: expiresAt.UTC()}
	return false, nil
}

func (s *Store) ReleaseEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.eventDedup, strings.TrimSpace(eventID))
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) NewShareCode(_ context.Context) (string, error) {
	return NewShareCode(), nil
}

// NewShareCode returns an 8 character upper-case code.
func NewShareCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *Store) replacePrioritiesLocked(sessionID string, actionIDs []string, order []entities.RankedAction) {
	sessionID = strings.TrimSpace(sessionID)
	for _, actionID := range actionIDs {
		delete(s.priorities, priorityKey{sessionID: sessionID, actionID: strings.TrimSpace(actionID)})
	}
	for _, item := range order {
		s.priorities[priorityKey{sessionID: sessionID, actionID: strings.TrimSpace(item.ActionID)}] = item.Rank
	}
}

func (s *Store) stageOutboxLocked(envelope ports.EventEnvelope) (outboxRecord, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return outboxRecord{}, err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return outboxRecord{}, domainerrors.ErrConflict
		}
		return existing, nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}, nil
}

func sortConfessionals(items []entities.Confessional) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].PillarID < items[j].PillarID
		}
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
}
