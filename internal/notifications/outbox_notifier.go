package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/payloads"
)

type emitter interface {
	Emit(ctx context.Context, conn *gorm.DB, event outbox.DomainEvent) (uuid.UUID, error)
}

// OutboxNotifier records events in the outbox table; the outbox publisher
// moves them onto Pub/Sub.
type OutboxNotifier struct {
	db      *gorm.DB
	emitter emitter
}

func NewOutboxNotifier(db *gorm.DB, emitter emitter) (*OutboxNotifier, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &OutboxNotifier{db: db, emitter: emitter}, nil
}

func (n *OutboxNotifier) Notify(ctx context.Context, event Event) error {
	domainEvent, err := toDomainEvent(event)
	if err != nil {
		return err
	}
	_, err = n.emitter.Emit(ctx, n.db, domainEvent)
	return err
}

func toDomainEvent(event Event) (outbox.DomainEvent, error) {
	if err := event.validate(); err != nil {
		return outbox.DomainEvent{}, err
	}

	out := outbox.DomainEvent{EventType: event.Type}
	if event.ActorID != 0 {
		out.Actor = &outbox.ActorRef{UserID: event.ActorID}
	}

	switch event.Type {
	case enums.EventUserRegistered:
		out.AggregateType = enums.AggregateUser
		out.AggregateID = event.UserID
		out.Data = payloads.UserRegisteredEvent{UserID: event.UserID, Email: event.Email}
	case enums.EventOrderPlaced:
		out.AggregateType = enums.AggregateOrder
		out.AggregateID = event.OrderID
		out.Data = payloads.OrderPlacedEvent{UserID: event.UserID, OrderID: event.OrderID}
	case enums.EventOrderConfirmed:
		out.AggregateType = enums.AggregateOrder
		out.AggregateID = event.OrderID
		out.Data = payloads.OrderConfirmedEvent{ShopID: event.ShopID, OrderID: event.OrderID}
	}
	return out, nil
}
