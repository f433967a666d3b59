package commands

import (
	"encoding/json"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/ports"
	contractsv1 "jornada/contracts/gen/events/v1"
)

const (
	EventPillarCompleted       = contractsv1.EventPillarCompleted
	EventJourneyCompleted      = contractsv1.EventJourneyCompleted
	EventConfessionalSubmitted = contractsv1.EventConfessionalSubmitted
)

func newRankingEnvelope(
	eventID string,
	eventType string,
	sessionID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Everything a participant emits is partitioned by session so consumers
	// observe pillar completions before the journey completion.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "ranking-engine",
		TraceID:          eventID,
		SchemaVersion:    contractsv1.SchemaVersion,
		PartitionKeyPath: "session_id",
		PartitionKey:     sessionID,
		Data:             payload,
	}, nil
}
