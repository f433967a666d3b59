package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "jornada/contexts/strategy-journey/ranking-engine/application"
	"jornada/contexts/strategy-journey/ranking-engine/ports"
)

const defaultRelayBatchSize = 100

// OutboxRelay drains ranking_outbox rows onto the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce relays one bounded batch in creation order. A row is marked only
// after the bus accepted it, and the batch stops at the first failure so the
// next cycle resumes from that row.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultRelayBatchSize
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("ranking outbox list failed",
			"event", "ranking_outbox_list_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	published := 0
	for _, row := range pending {
		if err := r.relay(ctx, logger, row); err != nil {
			return published, err
		}
		published++
	}
	logger.Info("ranking outbox batch relayed",
		"event", "ranking_outbox_relayed",
		"module", "strategy-journey/ranking-engine",
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

func (r OutboxRelay) relay(ctx context.Context, logger *slog.Logger, row ports.OutboxMessage) error {
	var event ports.EventEnvelope
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		logger.Error("ranking outbox row undecodable",
			"event", "ranking_outbox_decode_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"outbox_id", row.OutboxID,
			"error", err.Error(),
		)
		return err
	}
	topic := event.EventType
	if topic == "" {
		topic = row.EventType
	}
	if err := r.Publisher.Publish(ctx, topic, event); err != nil {
		logger.Error("ranking outbox publish failed",
			"event", "ranking_outbox_publish_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"outbox_id", row.OutboxID,
			"event_id", event.EventID,
			"topic", topic,
			"error", err.Error(),
		)
		return err
	}
	if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now()); err != nil {
		logger.Error("ranking outbox mark failed",
			"event", "ranking_outbox_mark_failed",
			"module", "strategy-journey/ranking-engine",
			"layer", "worker",
			"outbox_id", row.OutboxID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
