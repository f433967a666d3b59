package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "jornada/contexts/strategy-journey/session-service/application"
	"jornada/contexts/strategy-journey/session-service/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/session-service/domain/errors"
	"jornada/contexts/strategy-journey/session-service/ports"
)

type JoinSessionCommand struct {
	Code     string
	Nickname string
}

type JoinSessionUseCase struct {
	Sessions ports.SessionRepository
	Observer ports.SessionObserver
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// JoinSession opens a participant session against an active meeting code.
func (uc JoinSessionUseCase) JoinSession(ctx context.Context, cmd JoinSessionCommand) (entities.Session, error) {
	logger := application.ResolveLogger(uc.Logger)
	code, codeOK := entities.NormalizeJoinCode(cmd.Code)
	nickname, nicknameOK := entities.NormalizeNickname(cmd.Nickname)
	if !codeOK || !nicknameOK {
		logger.Warn("session join validation failed",
			"event", "session_join_validation_failed",
			"module", "strategy-journey/session-service",
			"layer", "application",
			"code_valid", codeOK,
			"nickname_valid", nicknameOK,
		)
		return entities.Session{}, domainerrors.ErrInvalidSessionInput
	}

	meetingCode, err := uc.Sessions.FindActiveCode(ctx, code)
	if err != nil {
		logger.Warn("session join code rejected",
			"event", "session_join_code_rejected",
			"module", "strategy-journey/session-service",
			"layer", "application",
			"code", code,
			"error", err.Error(),
		)
		return entities.Session{}, err
	}

	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Session{}, err
	}
	session, err := uc.Sessions.CreateSession(ctx, entities.Session{
		SessionID: sessionID,
		MeetingID: meetingCode.MeetingID,
		Code:      meetingCode.Code,
		Nickname:  nickname,
		CreatedAt: uc.now(),
	})
	if err != nil {
		logger.Error("session create failed",
			"event", "session_create_failed",
			"module", "strategy-journey/session-service",
			"layer", "application",
			"meeting_id", meetingCode.MeetingID,
			"error", err.Error(),
		)
		return entities.Session{}, err
	}
	if uc.Observer != nil {
		uc.Observer.SessionJoined(ctx, session)
	}

	logger.Info("session joined",
		"event", "session_joined",
		"module", "strategy-journey/session-service",
		"layer", "application",
		"session_id", session.SessionID,
		"meeting_id", session.MeetingID,
	)
	return session, nil
}

func (uc JoinSessionUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

type OpenMeetingCommand struct {
	MeetingID string
	Title     string
	Code      string
}

type MeetingAdminUseCase struct {
	Admin  ports.MeetingAdmin
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// OpenMeeting creates (or renames) a meeting and activates its room code.
func (uc MeetingAdminUseCase) OpenMeeting(ctx context.Context, cmd OpenMeetingCommand) (entities.MeetingCode, error) {
	logger := application.ResolveLogger(uc.Logger)
	meetingID := strings.TrimSpace(cmd.MeetingID)
	title := strings.TrimSpace(cmd.Title)
	code, codeOK := entities.NormalizeJoinCode(cmd.Code)
	if meetingID == "" || !codeOK {
		return entities.MeetingCode{}, domainerrors.ErrInvalidSessionInput
	}
	if title == "" {
		title = meetingID
	}
	if err := uc.Admin.UpsertMeeting(ctx, entities.Meeting{MeetingID: meetingID, Title: title}); err != nil {
		return entities.MeetingCode{}, err
	}
	codeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.MeetingCode{}, err
	}
	meetingCode := entities.MeetingCode{CodeID: codeID, MeetingID: meetingID, Code: code, IsActive: true}
	if err := uc.Admin.UpsertMeetingCode(ctx, meetingCode); err != nil {
		return entities.MeetingCode{}, err
	}
	logger.Info("meeting code opened",
		"event", "session_meeting_code_opened",
		"module", "strategy-journey/session-service",
		"layer", "application",
		"meeting_id", meetingID,
		"code", code,
	)
	return meetingCode, nil
}
