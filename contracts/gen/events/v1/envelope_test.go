package v1

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelopeValidate(t *testing.T) {
	valid := Envelope{
		EventID:       "evt-1",
		EventType:     EventPillarCompleted,
		SchemaVersion: SchemaVersion,
		Data:          json.RawMessage(`{"session_id":"s1"}`),
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]func(*Envelope){
		"missing id":     func(e *Envelope) { e.EventID = " " },
		"missing type":   func(e *Envelope) { e.EventType = "" },
		"future schema":  func(e *Envelope) { e.SchemaVersion = SchemaVersion + 1 },
		"zero schema":    func(e *Envelope) { e.SchemaVersion = 0 },
		"malformed data": func(e *Envelope) { e.Data = json.RawMessage(`{"session_id":`) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			envelope := valid
			mutate(&envelope)
			assert.ErrorIs(t, envelope.Validate(), ErrInvalidEnvelope)
		})
	}
}
