package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"jornada/contexts/strategy-journey/session-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/session-service/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	meetings map[string]entities.Meeting
	codes    map[string]entities.MeetingCode
	sessions map[string]entities.Session
}

func NewStore(codes []entities.MeetingCode) *Store {
	s := &Store{
		meetings: make(map[string]entities.Meeting),
		codes:    make(map[string]entities.MeetingCode),
		sessions: make(map[string]entities.Session),
	}
	for _, code := range codes {
		code.Code = entities.NormalizeCode(code.Code)
		s.codes[code.Code] = code
		if _, ok := s.meetings[code.MeetingID]; !ok {
			s.meetings[code.MeetingID] = entities.Meeting{MeetingID: code.MeetingID, Title: code.MeetingID}
		}
	}
	return s
}

func (s *Store) FindActiveCode(_ context.Context, code string) (entities.MeetingCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.codes[entities.NormalizeCode(code)]
	if !ok || !item.IsActive {
		return entities.MeetingCode{}, domainerrors.ErrInvalidMeetingCode
	}
	return item, nil
}

func (s *Store) CreateSession(_ context.Context, session entities.Session) (entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.SessionID = strings.TrimSpace(session.SessionID)
	if _, exists := s.sessions[session.SessionID]; exists {
		return entities.Session{}, domainerrors.ErrConflict
	}
	s.sessions[session.SessionID] = session
	return session, nil
}

func (s *Store) GetSession(_ context.Context, sessionID string) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(sessionID)]
	if !ok {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) UpsertMeeting(_ context.Context, meeting entities.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings[strings.TrimSpace(meeting.MeetingID)] = meeting
	return nil
}

func (s *Store) UpsertMeetingCode(_ context.Context, code entities.MeetingCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[code.MeetingID]; !ok {
		return domainerrors.ErrMeetingNotFound
	}
	code.Code = entities.NormalizeCode(code.Code)
	if existing, ok := s.codes[code.Code]; ok {
		code.CodeID = existing.CodeID
	}
	s.codes[code.Code] = code
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
