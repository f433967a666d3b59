package httpadapter

import (
	"context"
	"log/slog"

	"jornada/contexts/strategy-journey/session-service/application/commands"
	"jornada/contexts/strategy-journey/session-service/application/queries"
	"jornada/contexts/strategy-journey/session-service/domain/entities"
	httptransport "jornada/contexts/strategy-journey/session-service/transport/http"
)

type Handler struct {
	Join     commands.JoinSessionUseCase
	Sessions queries.SessionUseCase
	Logger   *slog.Logger
}

func (h Handler) JoinSessionHandler(ctx context.Context, req httptransport.JoinSessionRequest) (httptransport.SessionResponse, error) {
	session, err := h.Join.JoinSession(ctx, commands.JoinSessionCommand{
		Code:     req.Code,
		Nickname: req.Nickname,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func (h Handler) ValidateSessionHandler(ctx context.Context, sessionID string) (httptransport.ValidateSessionResponse, error) {
	session, err := h.Sessions.ValidateSession(ctx, sessionID)
	if err != nil {
		return httptransport.ValidateSessionResponse{}, err
	}
	return httptransport.ValidateSessionResponse{
		Valid:     true,
		SessionID: session.SessionID,
		MeetingID: session.MeetingID,
		Nickname:  session.Nickname,
	}, nil
}

func mapSession(session entities.Session) httptransport.SessionResponse {
	return httptransport.SessionResponse{
		SessionID: session.SessionID,
		MeetingID: session.MeetingID,
		Nickname:  session.Nickname,
		CreatedAt: session.CreatedAt,
	}
}
