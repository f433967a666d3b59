package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

const shareCodeAttempts = 3

// AchievementIssuer creates the per-session achievement record. It is shared
// by the completion consumers and the achievement query so that a lost event
// never leaves an unlocked journey without a share code.
type AchievementIssuer struct {
	Catalog      ports.ActionCatalog
	Rankings     ports.RankingRepository
	Achievements ports.AchievementRepository
	ShareCodes   ports.ShareCodeGenerator
	Logger       *slog.Logger
}

// Issue stores record with a fresh share code, retrying on code collisions.
// An existing record for the session is returned unchanged.
func (i AchievementIssuer) Issue(ctx context.Context, record ports.AchievementRecord) (ports.AchievementRecord, error) {
	logger := ResolveLogger(i.Logger)
	record.SessionID = strings.TrimSpace(record.SessionID)
	if record.SessionID == "" {
		return ports.AchievementRecord{}, domainerrors.ErrInvalidRankingInput
	}
	record.MeetingID = strings.TrimSpace(record.MeetingID)
	record.Nickname = strings.TrimSpace(record.Nickname)

	var (
		issued ports.AchievementRecord
		err    error
	)
	for attempt := 1; attempt <= shareCodeAttempts; attempt++ {
		record.ShareCode, err = i.ShareCodes.NewShareCode(ctx)
		if err != nil {
			return ports.AchievementRecord{}, err
		}
		issued, err = i.Achievements.IssueAchievement(ctx, record)
		if !errors.Is(err, domainerrors.ErrConflict) {
			break
		}
		logger.Warn("share code collision",
			"event", "ranking_share_code_collision",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", record.SessionID,
			"attempt", attempt,
		)
	}
	if err != nil {
		logger.Error("achievement issue failed",
			"event", "ranking_achievement_issue_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "application",
			"session_id", record.SessionID,
			"error", err.Error(),
		)
		return ports.AchievementRecord{}, err
	}
	return issued, nil
}

// IssueIfComplete issues the achievement when every catalog pillar is
// completed for sessionID. The bool reports whether the journey is complete.
func (i AchievementIssuer) IssueIfComplete(ctx context.Context, sessionID string) (ports.AchievementRecord, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if existing, found, err := i.Achievements.GetAchievementRecord(ctx, sessionID); err != nil || found {
		return existing, found, err
	}
	unlockedAt, complete, err := i.journeyCompletedAt(ctx, sessionID)
	if err != nil || !complete {
		return ports.AchievementRecord{}, false, err
	}
	session, err := i.Rankings.GetSession(ctx, sessionID)
	if err != nil {
		return ports.AchievementRecord{}, true, err
	}
	record, err := i.Issue(ctx, ports.AchievementRecord{
		SessionID:  session.SessionID,
		MeetingID:  session.MeetingID,
		Nickname:   session.Nickname,
		UnlockedAt: unlockedAt,
	})
	return record, true, err
}

func (i AchievementIssuer) journeyCompletedAt(ctx context.Context, sessionID string) (time.Time, bool, error) {
	pillars, err := i.Catalog.ListPillars(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	completions, err := i.Rankings.ListPillarCompletions(ctx, sessionID)
	if err != nil {
		return time.Time{}, false, err
	}
	completedAt := make(map[string]time.Time, len(completions))
	for _, completion := range completions {
		completedAt[completion.PillarID] = completion.CompletedAt
	}
	var last time.Time
	for _, pillar := range pillars {
		at, ok := completedAt[pillar.PillarID]
		if !ok {
			return time.Time{}, false, nil
		}
		if at.After(last) {
			last = at
		}
	}
	return last.UTC(), len(pillars) > 0, nil
}
