package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/registry"
)

func orderPlacedRow(t *testing.T, orderID string) models.OutboxEvent {
	t.Helper()
	id := uuid.New()
	body, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    id.String(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{"order_id":` + orderID + `}`),
	})
	require.NoError(t, err)
	return models.OutboxEvent{
		ID:            id,
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       body,
		CreatedAt:     time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
	}
}

// resolveAll stands in for the event registry: every row resolves to the
// domain topic unless err is set.
type resolveAll struct {
	err error
}

func (r resolveAll) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			EventType:     event.EventType,
			AggregateType: event.AggregateType,
			Topic:         "shopdesk-domain-events",
		},
		Envelope: outbox.PayloadEnvelope{EventID: event.ID.String(), OccurredAt: time.Now()},
		Payload:  &payloads.OrderPlacedEvent{UserID: 1},
	}, nil
}

type fakeRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  map[uuid.UUID]int
	pending   int64
}

func (f *fakeRepo) FetchUnpublishedForPublish(_ *gorm.DB, limit, _ int) ([]models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, terminalAttempts int) error {
	if f.terminal == nil {
		f.terminal = map[uuid.UUID]int{}
	}
	f.terminal[id] = terminalAttempts
	return nil
}

func (f *fakeRepo) CountPending(*gorm.DB) (int64, error) {
	return f.pending, nil
}

type fakeDB struct {
	pingErr error
}

func (f *fakeDB) Ping(context.Context) error { return f.pingErr }

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakePubSubClient struct {
	pingErr error
}

func (f *fakePubSubClient) Ping(context.Context) error { return f.pingErr }

func (f *fakePubSubClient) Publisher(string) *gcppubsub.Publisher { return nil }

// fakePublisher answers each Publish with the next queued outcome. An empty
// queue acknowledges.
type fakePublisher struct {
	outcomes []error
	messages []*gcppubsub.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	var err error
	if len(f.outcomes) > 0 {
		err, f.outcomes = f.outcomes[0], f.outcomes[1:]
	}
	return ack{err: err}
}

type ack struct {
	err error
}

func (a ack) Get(context.Context) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return "server-id", nil
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}
