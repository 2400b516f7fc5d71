package notifications

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/metrics"
)

// Event is a committed domain transition that interested parties should hear
// about. Which ids are set depends on Type.
type Event struct {
	Type    enums.OutboxEventType
	ActorID uint64
	UserID  uint64
	Email   string
	OrderID uint64
	ShopID  uint64
}

// UserRegistered builds the event emitted once an account exists.
func UserRegistered(userID uint64, email string) Event {
	return Event{Type: enums.EventUserRegistered, ActorID: userID, UserID: userID, Email: email}
}

// OrderPlaced builds the event emitted when a basket becomes a new order.
func OrderPlaced(userID, orderID uint64) Event {
	return Event{Type: enums.EventOrderPlaced, ActorID: userID, UserID: userID, OrderID: orderID}
}

// OrderConfirmed builds the per-shop event emitted when staff confirms an order.
func OrderConfirmed(actorID, shopID, orderID uint64) Event {
	return Event{Type: enums.EventOrderConfirmed, ActorID: actorID, ShopID: shopID, OrderID: orderID}
}

func (e Event) validate() error {
	switch e.Type {
	case enums.EventUserRegistered:
		if e.UserID == 0 {
			return fmt.Errorf("%s: user id required", e.Type)
		}
	case enums.EventOrderPlaced:
		if e.UserID == 0 || e.OrderID == 0 {
			return fmt.Errorf("%s: user id and order id required", e.Type)
		}
	case enums.EventOrderConfirmed:
		if e.ShopID == 0 || e.OrderID == 0 {
			return fmt.Errorf("%s: shop id and order id required", e.Type)
		}
	default:
		return fmt.Errorf("unsupported event type %q", e.Type)
	}
	return nil
}

// Notifier delivers committed domain events to whatever fans them out.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher hands events to a Notifier after the caller's transaction has
// committed. Delivery problems are logged and counted, never returned: the
// state change they describe already happened.
type Dispatcher struct {
	notifier Notifier
	logg     *logger.Logger
	metrics  *metrics.EventMetrics
}

func NewDispatcher(notifier Notifier, logg *logger.Logger, m *metrics.EventMetrics) *Dispatcher {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Dispatcher{notifier: notifier, logg: logg, metrics: m}
}

// Dispatch notifies every event in order. A nil dispatcher or notifier is a
// no-op. Cancelling ctx does not stop delivery; its values are kept.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...Event) {
	if d == nil || d.notifier == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, event := range events {
		d.dispatchOne(ctx, event)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, event Event) {
	logCtx := d.logg.WithFields(ctx, map[string]any{
		"event_type": event.Type,
		"user_id":    event.UserID,
		"order_id":   event.OrderID,
		"shop_id":    event.ShopID,
	})

	defer func() {
		if r := recover(); r != nil {
			d.metrics.DispatchFailed(string(event.Type))
			d.logg.Error(logCtx, "notifier panicked", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := d.notifier.Notify(ctx, event); err != nil {
		d.metrics.DispatchFailed(string(event.Type))
		d.logg.Error(logCtx, "notification dispatch failed", err)
	}
}
