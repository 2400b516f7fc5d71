package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyEnvelopeData = errors.New("envelope carries no data")
	ErrBadEnvelopeID     = errors.New("envelope event id is not a uuid")
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID uint64 `json:"userId"`
	Type   string `json:"type,omitempty"`
}

// PayloadEnvelope wraps every event body. The same JSON is stored in
// outbox_events.payload and sent as the Pub/Sub message data.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// SchemaVersion treats a missing version as v1, which is what rows written
// before versioning carried.
func (e PayloadEnvelope) SchemaVersion() int {
	if e.Version <= 0 {
		return currentEnvelopeVersion
	}
	return e.Version
}

// ID parses EventID.
func (e PayloadEnvelope) ID() (uuid.UUID, error) {
	id, err := uuid.Parse(e.EventID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrBadEnvelopeID, e.EventID)
	}
	return id, nil
}

// DecodeEnvelope unmarshals raw and rejects envelopes without a usable body.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	body := bytes.TrimSpace(env.Data)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return PayloadEnvelope{}, ErrEmptyEnvelopeData
	}
	return env, nil
}
