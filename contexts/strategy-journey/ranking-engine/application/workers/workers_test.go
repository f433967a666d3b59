package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/adapters/memory"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []ports.EventEnvelope
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type capturingSubscriber struct {
	groups   map[string]string
	handlers map[string]func(context.Context, ports.EventEnvelope) error
}

func (s *capturingSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if s.handlers == nil {
		s.groups = make(map[string]string)
		s.handlers = make(map[string]func(context.Context, ports.EventEnvelope) error)
	}
	s.groups[topic] = consumerGroup
	s.handlers[topic] = handler
	return nil
}

func appendEvents(t *testing.T, store *memory.Store, base time.Time, ids ...string) {
	t.Helper()
	for i, id := range ids {
		require.NoError(t, store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:    id,
			EventType:  "pillar.completed",
			OccurredAt: base.Add(time.Duration(i) * time.Second),
			Data:       json.RawMessage(`{"session_id":"s1"}`),
		}))
	}
}

func TestOutboxRelayPublishesInCreationOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := memory.NewStore(memory.Seed{})
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	appendEvents(t, store, base, "evt-1", "evt-2", "evt-3")

	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, BatchSize: 2}

	count, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	count, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ids := make([]string, 0, len(publisher.events))
	for _, event := range publisher.events {
		ids = append(ids, event.EventID)
	}
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-3"}, ids)
	assert.Equal(t, []string{"pillar.completed", "pillar.completed", "pillar.completed"}, publisher.topics)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOutboxRelayStopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore(memory.Seed{})
	base := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	appendEvents(t, store, base, "evt-1", "evt-2", "evt-3")

	publisher := &recordingPublisher{failOn: "evt-2"}
	relay := OutboxRelay{Outbox: store, Publisher: publisher}

	count, err := relay.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, count)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-2", pending[0].OutboxID)
}

func journeyEvent(id string, sessionID string) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:   id,
		EventType: journeyCompletedTopic,
		Data:      json.RawMessage(`{"session_id":"` + sessionID + `","meeting_id":"m1","nickname":"ana","completed_at":"2026-03-10T09:00:00Z"}`),
	}
}

func TestJourneyCompletionConsumerIssuesShareCodeOnce(t *testing.T) {
	store := memory.NewStore(memory.Seed{})
	subscriber := &capturingSubscriber{}
	consumer := JourneyCompletionConsumer{
		Subscriber:   subscriber,
		Dedup:        store,
		Achievements: store,
		ShareCodes:   store,
	}
	require.NoError(t, consumer.Start(context.Background()))
	assert.Equal(t, map[string]string{
		"journey.completed": defaultJourneyCG,
		"pillar.completed":  defaultJourneyCG,
	}, subscriber.groups)
	handler := subscriber.handlers["journey.completed"]
	require.NotNil(t, handler)

	require.NoError(t, handler(context.Background(), journeyEvent("evt-1", "s1")))
	first, found, err := store.GetAchievementRecord(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, first.ShareCode, 8)
	assert.Equal(t, time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC), first.UnlockedAt)

	// Redelivery and a second event for the same session keep the first code.
	require.NoError(t, handler(context.Background(), journeyEvent("evt-1", "s1")))
	require.NoError(t, handler(context.Background(), journeyEvent("evt-2", "s1")))
	again, _, err := store.GetAchievementRecord(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, first.ShareCode, again.ShareCode)
}

type scriptedShareCodes struct {
	codes []string
}

func (g *scriptedShareCodes) NewShareCode(context.Context) (string, error) {
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

func TestJourneyCompletionConsumerRetriesShareCodeCollision(t *testing.T) {
	store := memory.NewStore(memory.Seed{})
	_, err := store.IssueAchievement(context.Background(), ports.AchievementRecord{SessionID: "s0", ShareCode: "AAAAAAAA"})
	require.NoError(t, err)

	consumer := JourneyCompletionConsumer{
		Dedup:        store,
		Achievements: store,
		ShareCodes:   &scriptedShareCodes{codes: []string{"AAAAAAAA", "BBBBBBBB"}},
	}
	require.NoError(t, consumer.Handle(context.Background(), journeyEvent("evt-1", "s1")))

	record, found, err := store.GetAchievementRecord(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "BBBBBBBB", record.ShareCode)
}

func TestJourneyCompletionConsumerRejectsBadPayloads(t *testing.T) {
	store := memory.NewStore(memory.Seed{})
	consumer := JourneyCompletionConsumer{Dedup: store, Achievements: store, ShareCodes: store}

	err := consumer.Handle(context.Background(), ports.EventEnvelope{EventID: "evt-1", Data: json.RawMessage(`{"session_id":""}`)})
	assert.Error(t, err)

	err = consumer.Handle(context.Background(), ports.EventEnvelope{EventID: "evt-2", Data: json.RawMessage(`{"session_id":"s1"}`)})
	require.NoError(t, err)
	err = consumer.Handle(context.Background(), ports.EventEnvelope{EventID: "evt-2", Data: json.RawMessage(`{"session_id":"s2"}`)})
	assert.Error(t, err)
}

func TestJourneyCompletionConsumerDisabled(t *testing.T) {
	subscriber := &capturingSubscriber{}
	consumer := JourneyCompletionConsumer{Subscriber: subscriber, Disabled: true}
	require.NoError(t, consumer.Start(context.Background()))
	assert.Empty(t, subscriber.handlers)
}

type failingAchievements struct {
	ports.AchievementRepository
	failures int
}

func (f *failingAchievements) IssueAchievement(ctx context.Context, record ports.AchievementRecord) (ports.AchievementRecord, error) {
	if f.failures > 0 {
		f.failures--
		return ports.AchievementRecord{}, errors.New("db down")
	}
	return f.AchievementRepository.IssueAchievement(ctx, record)
}

func TestJourneyCompletionConsumerReprocessesEventAfterIssueFailure(t *testing.T) {
	store := memory.NewStore(memory.Seed{})
	consumer := JourneyCompletionConsumer{
		Dedup:        store,
		Achievements: &failingAchievements{AchievementRepository: store, failures: 1},
		ShareCodes:   store,
	}

	err := consumer.Handle(context.Background(), journeyEvent("evt-1", "s1"))
	require.EqualError(t, err, "db down")
	_, found, err := store.GetAchievementRecord(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, consumer.Handle(context.Background(), journeyEvent("evt-1", "s1")))
	record, found, err := store.GetAchievementRecord(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, record.ShareCode, 8)
}

func twoPillarStore() *memory.Store {
	return memory.NewStore(memory.Seed{
		Pillars: []ports.PillarProjection{
			{PillarID: "p1", Name: "Clientes"},
			{PillarID: "p2", Name: "Pessoas"},
		},
		Sessions: []ports.SessionProjection{{SessionID: "s1", MeetingID: "m1", Nickname: "ana"}},
	})
}

func pillarEvent(id string, pillarID string) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:   id,
		EventType: pillarCompletedTopic,
		Data:      json.RawMessage(`{"session_id":"s1","meeting_id":"m1","pillar_id":"` + pillarID + `"}`),
	}
}

func TestPillarCompletedIssuesAchievementWhenJourneyIsComplete(t *testing.T) {
	store := twoPillarStore()
	ctx := context.Background()
	consumer := JourneyCompletionConsumer{
		Dedup:        store,
		Catalog:      store,
		Rankings:     store,
		Achievements: store,
		ShareCodes:   store,
	}

	first := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Minute)
	// Both pillars are committed before either event is consumed, as when two
	// tabs finalize the last pillars at once and neither emits journey.completed.
	require.NoError(t, store.MarkPillarCompleted(ctx, "s1", "p1", first))
	require.NoError(t, consumer.HandlePillarCompleted(ctx, pillarEvent("evt-p1", "p1")))
	_, found, err := store.GetAchievementRecord(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found, "one pillar left, no achievement yet")

	require.NoError(t, store.MarkPillarCompleted(ctx, "s1", "p2", second))
	require.NoError(t, consumer.HandlePillarCompleted(ctx, pillarEvent("evt-p2", "p2")))
	record, found, err := store.GetAchievementRecord(ctx, "s1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "m1", record.MeetingID)
	assert.Equal(t, "ana", record.Nickname)
	assert.Equal(t, second, record.UnlockedAt)
}
