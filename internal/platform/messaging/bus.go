package messaging

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	contractsv1 "jornada/contracts/gen/events/v1"
)

// ErrSubscriberBusy is returned when a consumer group's buffer is full. The
// outbox relay leaves the row pending and retries on the next cycle.
var ErrSubscriberBusy = errors.New("event bus subscriber busy")

const subscriberBuffer = 128

type groupSubscription struct {
	members []chan contractsv1.Envelope
	next    int
}

// Bus is the in-process event bus shared by the outbox relay and consumers.
// Every consumer group of a topic receives each event once; members of one
// group take turns.
type Bus struct {
	mu     sync.Mutex
	topics map[string]map[string]*groupSubscription
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewBus accepts broker addresses for configuration parity; the bus itself
// runs in-process.
func NewBus(brokers []string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("event bus created",
		"event", "event_bus_created",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"brokers", strings.Join(brokers, ","),
	)
	return &Bus{
		topics: make(map[string]map[string]*groupSubscription),
		logger: logger,
	}, nil
}

// Publish hands event to one member of every consumer group subscribed to
// topic. Envelopes that fail validation are rejected before delivery.
func (b *Bus) Publish(ctx context.Context, topic string, event contractsv1.Envelope) error {
	if err := event.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	targets := make([]chan contractsv1.Envelope, 0, len(b.topics[topic]))
	for _, group := range b.topics[topic] {
		if len(group.members) == 0 {
			continue
		}
		targets = append(targets, group.members[group.next%len(group.members)])
		group.next++
	}
	b.mu.Unlock()

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case target <- event:
		default:
			b.logger.Warn("event bus subscriber busy",
				"event", "event_bus_publish_busy",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"event_id", event.EventID,
			)
			return ErrSubscriberBusy
		}
	}

	b.logger.Info("event published",
		"event", "event_bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"consumer_groups", len(targets),
	)
	return nil
}

// Subscribe registers handler for topic under consumerGroup. The consumer
// goroutine exits when ctx is done; Wait blocks until all of them returned.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, contractsv1.Envelope) error,
) error {
	ch := make(chan contractsv1.Envelope, subscriberBuffer)

	b.mu.Lock()
	groups, ok := b.topics[topic]
	if !ok {
		groups = make(map[string]*groupSubscription)
		b.topics[topic] = groups
	}
	group, ok := groups[consumerGroup]
	if !ok {
		group = &groupSubscription{}
		groups[consumerGroup] = group
	}
	group.members = append(group.members, ch)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, consumerGroup, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "event_bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Wait blocks until every consumer goroutine has exited.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) removeSubscriber(topic string, consumerGroup string, target chan contractsv1.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.topics[topic][consumerGroup]
	if !ok {
		return
	}
	filtered := make([]chan contractsv1.Envelope, 0, len(group.members))
	for _, member := range group.members {
		if member != target {
			filtered = append(filtered, member)
		}
	}
	group.members = filtered
	if len(filtered) == 0 {
		delete(b.topics[topic], consumerGroup)
	}
}
