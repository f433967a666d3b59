package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "jornada/contexts/strategy-journey/ranking-engine/application"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
	contractsv1 "jornada/contracts/gen/events/v1"
)

const (
	journeyCompletedTopic = contractsv1.EventJourneyCompleted
	pillarCompletedTopic  = contractsv1.EventPillarCompleted
	defaultJourneyCG      = "ranking-engine-achievement-cg"
)

// JourneyCompletionConsumer issues the public achievement share code once a
// session has completed every pillar. journey.completed issues directly;
// pillar.completed re-checks completion, which covers sessions whose last two
// pillars were finalized concurrently and never produced journey.completed.
type JourneyCompletionConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Catalog       ports.ActionCatalog
	Rankings      ports.RankingRepository
	Achievements  ports.AchievementRepository
	ShareCodes    ports.ShareCodeGenerator
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

type completionPayload struct {
	SessionID   string `json:"session_id"`
	MeetingID   string `json:"meeting_id"`
	Nickname    string `json:"nickname"`
	CompletedAt string `json:"completed_at"`
}

func (c JourneyCompletionConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("journey completion consumer disabled by feature flag",
			"event", "ranking_journey_consumer_disabled",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultJourneyCG
	}
	handlers := []struct {
		topic   string
		handler func(context.Context, ports.EventEnvelope) error
	}{
		{topic: journeyCompletedTopic, handler: c.Handle},
		{topic: pillarCompletedTopic, handler: c.HandlePillarCompleted},
	}
	for _, subscription := range handlers {
		if err := c.Subscriber.Subscribe(ctx, subscription.topic, group, subscription.handler); err != nil {
			logger.Error("journey completion subscribe failed",
				"event", "ranking_journey_consumer_subscribe_failed",
				"module", "strategy-journey/ranking-engine",
				"layer", "worker",
				"topic", subscription.topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("journey completion consumer subscribed",
		"event", "ranking_journey_consumer_started",
		"module", "strategy-journey/ranking-engine",
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

// Handle processes one journey.completed envelope. Redelivered events are
// skipped through the dedup store.
func (c JourneyCompletionConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	return c.consume(ctx, event, func(ctx context.Context, payload completionPayload) error {
		unlockedAt := c.now()
		if parsed, err := time.Parse(time.RFC3339, payload.CompletedAt); err == nil {
			unlockedAt = parsed.UTC()
		}
		record, err := c.issuer().Issue(ctx, ports.AchievementRecord{
			SessionID:  payload.SessionID,
			MeetingID:  payload.MeetingID,
			Nickname:   payload.Nickname,
			UnlockedAt: unlockedAt,
		})
		if err != nil {
			return err
		}
		c.logIssued(event, record)
		return nil
	})
}

// HandlePillarCompleted issues the achievement when the pillar in event was
// the session's last incomplete one.
func (c JourneyCompletionConsumer) HandlePillarCompleted(ctx context.Context, event ports.EventEnvelope) error {
	return c.consume(ctx, event, func(ctx context.Context, payload completionPayload) error {
		record, complete, err := c.issuer().IssueIfComplete(ctx, payload.SessionID)
		if err != nil || !complete {
			return err
		}
		c.logIssued(event, record)
		return nil
	})
}

// consume reserves the event, decodes it and runs process. Any failure after
// the reservation releases it so a redelivery is processed again.
func (c JourneyCompletionConsumer) consume(
	ctx context.Context,
	event ports.EventEnvelope,
	process func(context.Context, completionPayload) error,
) error {
	logger := application.ResolveLogger(c.Logger)
	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), c.now().Add(c.dedupTTL()))
	if err != nil {
		logger.Error("journey completion dedupe failed",
			"event", "ranking_journey_dedupe_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if alreadyProcessed {
		logger.Debug("completion event replay skipped",
			"event", "ranking_journey_replayed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}

	var payload completionPayload
	err = json.Unmarshal(event.Data, &payload)
	if err != nil {
		logger.Error("completion payload decode failed",
			"event", "ranking_journey_decode_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
	} else if strings.TrimSpace(payload.SessionID) == "" {
		err = domainerrors.ErrInvalidRankingInput
	} else {
		payload.SessionID = strings.TrimSpace(payload.SessionID)
		err = process(ctx, payload)
	}
	if err != nil {
		c.release(ctx, event.EventID, logger)
		return err
	}
	return nil
}

func (c JourneyCompletionConsumer) release(ctx context.Context, eventID string, logger *slog.Logger) {
	if err := c.Dedup.ReleaseEvent(ctx, eventID); err != nil {
		logger.Error("completion event release failed",
			"event", "ranking_journey_release_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"event_id", eventID,
			"error", err.Error(),
		)
	}
}

func (c JourneyCompletionConsumer) issuer() application.AchievementIssuer {
	return application.AchievementIssuer{
		Catalog:      c.Catalog,
		Rankings:     c.Rankings,
		Achievements: c.Achievements,
		ShareCodes:   c.ShareCodes,
		Logger:       c.Logger,
	}
}

func (c JourneyCompletionConsumer) logIssued(event ports.EventEnvelope, record ports.AchievementRecord) {
	application.ResolveLogger(c.Logger).Info("achievement issued",
		"event", "ranking_achievement_issued",
		"module", "strategy-journey/ranking-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"session_id", record.SessionID,
		"share_code", record.ShareCode,
	)
}

func (c JourneyCompletionConsumer) now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock.Now().UTC()
}

func (c JourneyCompletionConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}
