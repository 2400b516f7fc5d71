package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
	"github.com/angelmondragon/shopdesk-backend/pkg/metrics"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox"
)

func dispatchFailures(t *testing.T, reg *prometheus.Registry) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, mf := range families {
		if mf.GetName() != "notification_dispatch_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += counterValue(m)
		}
	}
	return total
}

func counterValue(m *dto.Metric) float64 {
	if m.GetCounter() == nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestDispatchSwallowsErrorsAndPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewEventMetrics(reg)

	calls := 0
	failing := NotifierFunc(func(ctx context.Context, event Event) error {
		calls++
		if event.Type == enums.EventOrderPlaced {
			panic("boom")
		}
		return errors.New("unreachable broker")
	})

	d := NewDispatcher(failing, logger.Nop(), m)
	require.NotPanics(t, func() {
		d.Dispatch(context.Background(), UserRegistered(1, "a@b.c"), OrderPlaced(1, 2))
	})
	require.Equal(t, 2, calls)
	require.Equal(t, float64(2), dispatchFailures(t, reg))
}

func TestDispatchNilIsNoop(t *testing.T) {
	var d *Dispatcher
	require.NotPanics(t, func() { d.Dispatch(context.Background(), OrderPlaced(1, 2)) })
	require.NotPanics(t, func() { NewDispatcher(nil, nil, nil).Dispatch(context.Background(), OrderPlaced(1, 2)) })
}

func TestOutboxNotifierWritesRows(t *testing.T) {
	client := dbtest.Open(t)
	notifier, err := NewOutboxNotifier(client.DB(), outbox.NewService(outbox.NewRepository(client.DB()), logger.Nop()))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, notifier.Notify(ctx, UserRegistered(5, "x@y.z")))
	require.NoError(t, notifier.Notify(ctx, OrderConfirmed(1, 3, 8)))

	var rows []models.OutboxEvent
	require.NoError(t, client.DB().Order("created_at").Find(&rows).Error)
	require.Len(t, rows, 2)
	types := []enums.OutboxEventType{rows[0].EventType, rows[1].EventType}
	require.ElementsMatch(t, []enums.OutboxEventType{enums.EventUserRegistered, enums.EventOrderConfirmed}, types)
	for _, row := range rows {
		if row.EventType == enums.EventOrderConfirmed {
			require.Equal(t, "8", row.AggregateID)
			require.Equal(t, enums.AggregateOrder, row.AggregateType)
		}
	}
}

type stubEmitter struct {
	called bool
}

func (s *stubEmitter) Emit(context.Context, *gorm.DB, outbox.DomainEvent) (uuid.UUID, error) {
	s.called = true
	return uuid.New(), nil
}

func TestOutboxNotifierRejectsIncompleteEvents(t *testing.T) {
	emitter := &stubEmitter{}
	notifier, err := NewOutboxNotifier(&gorm.DB{}, emitter)
	require.NoError(t, err)

	require.Error(t, notifier.Notify(context.Background(), Event{Type: enums.EventOrderPlaced, UserID: 1}))
	require.Error(t, notifier.Notify(context.Background(), Event{Type: "unknown"}))
	require.False(t, emitter.called)
}

type ctxKey struct{}

func TestDispatchOutlivesACancelledRequest(t *testing.T) {
	client := dbtest.Open(t)
	notifier, err := NewOutboxNotifier(client.DB(), outbox.NewService(outbox.NewRepository(client.DB()), logger.Nop()))
	require.NoError(t, err)

	var seen []any
	recording := NotifierFunc(func(ctx context.Context, event Event) error {
		require.NoError(t, ctx.Err())
		seen = append(seen, ctx.Value(ctxKey{}))
		return notifier.Notify(ctx, event)
	})

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	cancel()
	NewDispatcher(recording, logger.Nop(), nil).Dispatch(ctx, OrderPlaced(1, 2))

	require.Equal(t, []any{"req-1"}, seen)
	var count int64
	require.NoError(t, client.DB().Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
