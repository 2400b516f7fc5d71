package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/shopdesk-backend/pkg/db"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/payloads"
)

const notificationConsumer = "notifications"

const (
	resultProcessed = "processed"
	resultDuplicate = "duplicate"
	resultRetry     = "retry"
	resultDropped   = "dropped"
)

type consumerRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ShopOwnerID(ctx context.Context, shopID uint64) (*uint64, error)
}

type processedTracker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type payloadDecoder interface {
	Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (any, error)
}

// ConsumerParams bundles the consumer dependencies.
type ConsumerParams struct {
	Repository   consumerRepository
	Subscription *pubsub.Subscriber
	Idempotency  processedTracker
	Decoders     payloadDecoder
	Sender       Sender
	Metrics      *metrics.EventMetrics
	Logger       *logger.Logger
}

// Consumer turns domain events from Pub/Sub into recipient notifications.
type Consumer struct {
	repo         consumerRepository
	subscription *pubsub.Subscriber
	idempotency  processedTracker
	decoders     payloadDecoder
	sender       Sender
	metrics      *metrics.EventMetrics
	logg         *logger.Logger
}

// NewConsumer builds a notification consumer.
func NewConsumer(params ConsumerParams) (*Consumer, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if params.Idempotency == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if params.Decoders == nil {
		return nil, fmt.Errorf("payload decoders required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	sender := params.Sender
	if sender == nil {
		sender = NewLogSender(params.Logger)
	}
	return &Consumer{
		repo:         params.Repository,
		subscription: params.Subscription,
		idempotency:  params.Idempotency,
		decoders:     params.Decoders,
		sender:       sender,
		metrics:      params.Metrics,
		logg:         params.Logger,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if !eventType.IsValid() {
		c.logg.Info(logCtx, "skipping unknown event type")
		c.metrics.Consumed(string(eventType), resultDropped)
		return processResult{ack: true}
	}

	envelope, err := outbox.DecodeEnvelope(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		c.metrics.Consumed(string(eventType), resultDropped)
		return processResult{ack: true}
	}

	eventID, err := envelope.ID()
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		c.metrics.Consumed(string(eventType), resultDropped)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	payload, err := c.decoders.Decode(eventType, envelope.SchemaVersion(), envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		c.metrics.Consumed(string(eventType), resultDropped)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		c.metrics.Consumed(string(eventType), resultRetry)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		c.metrics.Consumed(string(eventType), resultDuplicate)
		return processResult{ack: true}
	}

	if err := c.handlePayload(logCtx, eventID, payload); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		if releaseErr := c.idempotency.Release(ctx, notificationConsumer, eventID); releaseErr != nil {
			c.logg.Error(logCtx, "failed to release idempotency marker", releaseErr)
		}
		c.metrics.Consumed(string(eventType), resultRetry)
		return processResult{nack: true}
	}

	c.metrics.Consumed(string(eventType), resultProcessed)
	return processResult{ack: true}
}

func (c *Consumer) handlePayload(ctx context.Context, eventID uuid.UUID, payload any) error {
	switch p := payload.(type) {
	case *payloads.UserRegisteredEvent:
		return c.deliver(ctx, models.Notification{
			EventID: eventID,
			UserID:  p.UserID,
			Type:    enums.NotificationTypeWelcome,
			Title:   "Welcome to shopdesk",
			Message: fmt.Sprintf("Your account %s has been created.", p.Email),
		})
	case *payloads.OrderPlacedEvent:
		return c.deliver(ctx, models.Notification{
			EventID: eventID,
			UserID:  p.UserID,
			Type:    enums.NotificationTypeOrderPlaced,
			Title:   "Order placed",
			Message: fmt.Sprintf("Order #%d has been placed and is awaiting confirmation.", p.OrderID),
		})
	case *payloads.OrderConfirmedEvent:
		ownerID, err := c.repo.ShopOwnerID(ctx, p.ShopID)
		if err != nil {
			return fmt.Errorf("lookup shop owner: %w", err)
		}
		if ownerID == nil {
			c.logg.Warn(c.logg.WithShopID(ctx, p.ShopID), "shop has no owner; skipping notification")
			return nil
		}
		shopID := p.ShopID
		return c.deliver(ctx, models.Notification{
			EventID: eventID,
			UserID:  *ownerID,
			ShopID:  &shopID,
			Type:    enums.NotificationTypeOrderConfirmed,
			Title:   "New order to fulfil",
			Message: fmt.Sprintf("Order #%d with your listings has been confirmed.", p.OrderID),
		})
	default:
		c.logg.Info(ctx, "payload not handled")
		return nil
	}
}

func (c *Consumer) deliver(ctx context.Context, notification models.Notification) error {
	if notification.UserID == 0 {
		return fmt.Errorf("recipient missing")
	}
	if err := c.repo.Create(ctx, &notification); err != nil {
		if db.IsUniqueViolation(err, "") {
			c.logg.Info(ctx, "notification already recorded")
			return nil
		}
		return err
	}
	if err := c.sender.Send(ctx, notification); err != nil {
		c.logg.Error(ctx, "notification send failed", err)
	}
	c.logg.Info(c.logg.WithUserID(ctx, notification.UserID), "recipient notified")
	return nil
}
