package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/registry"
)

type memoryTracker struct {
	seen     map[uuid.UUID]bool
	released []uuid.UUID
	err      error
}

func newMemoryTracker() *memoryTracker {
	return &memoryTracker{seen: map[uuid.UUID]bool{}}
}

func (m *memoryTracker) CheckAndMarkProcessed(_ context.Context, _ string, eventID uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen[eventID] {
		return true, nil
	}
	m.seen[eventID] = true
	return false, nil
}

func (m *memoryTracker) Release(_ context.Context, _ string, eventID uuid.UUID) error {
	delete(m.seen, eventID)
	m.released = append(m.released, eventID)
	return nil
}

type recordingSender struct {
	sent []models.Notification
}

func (r *recordingSender) Send(_ context.Context, n models.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

type failingOwnerRepo struct {
	Repository
}

func (f failingOwnerRepo) ShopOwnerID(context.Context, uint64) (*uint64, error) {
	return nil, errors.New("db down")
}

type consumerHarness struct {
	consumer *Consumer
	tracker  *memoryTracker
	sender   *recordingSender
	repo     Repository
}

func newConsumerHarness(t *testing.T) *consumerHarness {
	t.Helper()
	client := dbtest.Open(t)
	h := &consumerHarness{
		tracker: newMemoryTracker(),
		sender:  &recordingSender{},
		repo:    NewRepository(client.DB()),
	}
	h.consumer = &Consumer{
		repo:        h.repo,
		idempotency: h.tracker,
		decoders:    registry.NewDomainDecoderRegistry(),
		sender:      h.sender,
		logg:        logger.Nop(),
	}
	return h
}

func domainMessage(t *testing.T, eventType enums.OutboxEventType, eventID uuid.UUID, data any) *pubsub.Message {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	body, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return &pubsub.Message{
		ID:         "msg-1",
		Data:       body,
		Attributes: map[string]string{"event_type": string(eventType), "event_id": eventID.String()},
	}
}

func TestConsumerRecordsWelcomeOnce(t *testing.T) {
	h := newConsumerHarness(t)
	eventID := uuid.New()
	msg := domainMessage(t, enums.EventUserRegistered, eventID, map[string]any{"user_id": 3, "email": "a@b.c"})

	res := h.consumer.process(context.Background(), msg)
	require.True(t, res.ack)
	require.Len(t, h.sender.sent, 1)
	require.Equal(t, enums.NotificationTypeWelcome, h.sender.sent[0].Type)
	require.EqualValues(t, 3, h.sender.sent[0].UserID)

	res = h.consumer.process(context.Background(), msg)
	require.True(t, res.ack)
	require.Len(t, h.sender.sent, 1)
}

func TestConsumerOrderConfirmedGoesToShopOwner(t *testing.T) {
	h := newConsumerHarness(t)
	client := h.repo.(*repositoryImpl).db

	owner := uint64(11)
	owned := models.Shop{Name: "Owned", UserID: &owner, State: true}
	unowned := models.Shop{Name: "Nobody", State: true}
	require.NoError(t, client.Create(&owned).Error)
	require.NoError(t, client.Create(&unowned).Error)

	res := h.consumer.process(context.Background(), domainMessage(t, enums.EventOrderConfirmed, uuid.New(),
		map[string]any{"shop_id": owned.ID, "order_id": 42}))
	require.True(t, res.ack)
	require.Len(t, h.sender.sent, 1)
	require.EqualValues(t, owner, h.sender.sent[0].UserID)
	require.NotNil(t, h.sender.sent[0].ShopID)

	res = h.consumer.process(context.Background(), domainMessage(t, enums.EventOrderConfirmed, uuid.New(),
		map[string]any{"shop_id": unowned.ID, "order_id": 42}))
	require.True(t, res.ack)
	require.Len(t, h.sender.sent, 1)
}

func TestConsumerDropsUnknownAndMalformed(t *testing.T) {
	h := newConsumerHarness(t)

	res := h.consumer.process(context.Background(), &pubsub.Message{Attributes: map[string]string{"event_type": "store_deleted"}})
	require.True(t, res.ack)

	res = h.consumer.process(context.Background(), &pubsub.Message{
		Data:       []byte("not json"),
		Attributes: map[string]string{"event_type": string(enums.EventOrderPlaced)},
	})
	require.True(t, res.ack)
	require.Empty(t, h.sender.sent)
}

func TestConsumerNacksAndReleasesOnFailure(t *testing.T) {
	h := newConsumerHarness(t)
	h.consumer.repo = failingOwnerRepo{Repository: h.repo}
	eventID := uuid.New()

	res := h.consumer.process(context.Background(), domainMessage(t, enums.EventOrderConfirmed, eventID,
		map[string]any{"shop_id": 1, "order_id": 2}))
	require.True(t, res.nack)
	require.Equal(t, []uuid.UUID{eventID}, h.tracker.released)
}

func TestConsumerNacksWhenIdempotencyUnavailable(t *testing.T) {
	h := newConsumerHarness(t)
	h.tracker.err = errors.New("redis down")

	res := h.consumer.process(context.Background(), domainMessage(t, enums.EventOrderPlaced, uuid.New(),
		map[string]any{"user_id": 1, "order_id": 2}))
	require.True(t, res.nack)
}

func TestNewConsumerValidatesDependencies(t *testing.T) {
	_, err := NewConsumer(ConsumerParams{})
	require.Error(t, err)
}
