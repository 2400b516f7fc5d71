package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/pkg/config"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/payloads"
)

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{DomainTopic: " domain-topic "})
	require.NoError(t, err)
	return reg
}

func envelopeWith(t *testing.T, data string) json.RawMessage {
	t.Helper()
	body, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(data),
	})
	require.NoError(t, err)
	return body
}

func TestResolveDecodesTypedPayload(t *testing.T) {
	resolved, err := newTestEventRegistry(t).Resolve(models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   "12",
		Payload:       envelopeWith(t, `{"user_id":4,"order_id":12}`),
	})
	require.NoError(t, err)
	require.Equal(t, "domain-topic", resolved.Descriptor.Topic)
	require.Equal(t, &payloads.OrderPlacedEvent{UserID: 4, OrderID: 12}, resolved.Payload)
	require.NotEmpty(t, resolved.Envelope.EventID)
}

func TestResolveRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)
	valid := envelopeWith(t, `{"user_id":1}`)

	cases := map[string]models.OutboxEvent{
		"unknown event":        {EventType: "order_shipped", AggregateType: enums.AggregateOrder, AggregateID: "1", Payload: valid},
		"aggregate mismatch":   {EventType: enums.EventUserRegistered, AggregateType: enums.AggregateOrder, AggregateID: "1", Payload: valid},
		"missing aggregate id": {EventType: enums.EventUserRegistered, AggregateType: enums.AggregateUser, Payload: valid},
		"bad envelope":         {EventType: enums.EventUserRegistered, AggregateType: enums.AggregateUser, AggregateID: "1", Payload: json.RawMessage(`{`)},
		"null data":            {EventType: enums.EventUserRegistered, AggregateType: enums.AggregateUser, AggregateID: "1", Payload: envelopeWith(t, `null`)},
		"wrong data shape":     {EventType: enums.EventUserRegistered, AggregateType: enums.AggregateUser, AggregateID: "1", Payload: envelopeWith(t, `{"user_id":"x"}`)},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			var nonRetry NonRetryableError
			require.True(t, errors.As(err, &nonRetry), "got %v", err)
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{DomainTopic: "  "})
	require.Error(t, err)
}

func TestNonRetryableErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewNonRetryableError(cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "non-retryable error", NonRetryableError{}.Error())
}
