package queries

import (
	"context"
	"strings"

	"jornada/contexts/strategy-journey/session-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/session-service/domain/errors"
	"jornada/contexts/strategy-journey/session-service/ports"
)

type SessionUseCase struct {
	Sessions ports.SessionRepository
}

// ValidateSession resolves a session id presented by a client.
func (uc SessionUseCase) ValidateSession(ctx context.Context, sessionID string) (entities.Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.Session{}, domainerrors.ErrSessionNotFound
	}
	return uc.Sessions.GetSession(ctx, sessionID)
}
