package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jornada/contexts/strategy-journey/catalog-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/catalog-service/domain/errors"
)

type sessionPillarKey struct {
	sessionID string
	pillarID  string
}

type Store struct {
	mu sync.RWMutex

	pillars     map[string]entities.Pillar
	actions     map[string]entities.Action
	completions map[sessionPillarKey]time.Time
}

func NewStore(pillars []entities.Pillar, actions []entities.Action) *Store {
	s := &Store{
		pillars:     make(map[string]entities.Pillar),
		actions:     make(map[string]entities.Action),
		completions: make(map[sessionPillarKey]time.Time),
	}
	for _, pillar := range pillars {
		s.pillars[strings.TrimSpace(pillar.PillarID)] = pillar
	}
	for _, action := range actions {
		s.actions[strings.TrimSpace(action.ActionID)] = action
	}
	return s
}

func (s *Store) ListPillars(_ context.Context) ([]entities.Pillar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Pillar, 0, len(s.pillars))
	for _, pillar := range s.pillars {
		items = append(items, pillar)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Store) GetPillar(_ context.Context, pillarID string) (entities.Pillar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pillar, ok := s.pillars[strings.TrimSpace(pillarID)]
	if !ok {
		return entities.Pillar{}, domainerrors.ErrPillarNotFound
	}
	return pillar, nil
}

func (s *Store) ListActions(_ context.Context, pillarID string) ([]entities.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Action, 0)
	for _, action := range s.actions {
		if action.PillarID == strings.TrimSpace(pillarID) {
			items = append(items, action)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Title < items[j].Title
	})
	return items, nil
}

func (s *Store) ListSessionPillars(_ context.Context, sessionID string) ([]entities.PillarStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.PillarStatus, 0)
	for key, completedAt := range s.completions {
		if key.sessionID != strings.TrimSpace(sessionID) {
			continue
		}
		at := completedAt
		items = append(items, entities.PillarStatus{PillarID: key.pillarID, IsCompleted: true, CompletedAt: &at})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PillarID < items[j].PillarID
	})
	return items, nil
}

// MarkCompleted records a pillar completion for a session.
func (s *Store) MarkCompleted(sessionID string, pillarID string, completedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[sessionPillarKey{sessionID: strings.TrimSpace(sessionID), pillarID: strings.TrimSpace(pillarID)}] = completedAt.UTC()
}

func (s *Store) UpsertPillar(_ context.Context, pillar entities.Pillar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pillars[strings.TrimSpace(pillar.PillarID)] = pillar
	return nil
}

func (s *Store) UpsertAction(_ context.Context, action entities.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pillars[strings.TrimSpace(action.PillarID)]; !ok {
		return domainerrors.ErrPillarNotFound
	}
	s.actions[strings.TrimSpace(action.ActionID)] = action
	return nil
}
