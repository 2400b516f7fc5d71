package metrics

import "github.com/prometheus/client_golang/prometheus"

// CatalogMetrics tracks supplier feed imports.
type CatalogMetrics struct {
	imports   *prometheus.CounterVec
	goods     prometheus.Counter
	conflicts prometheus.Counter
}

func NewCatalogMetrics(reg prometheus.Registerer) *CatalogMetrics {
	if reg == nil {
		return &CatalogMetrics{}
	}
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_imports_total",
		Help: "Catalog imports by result.",
	}, []string{"result"})
	goods := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_goods_imported_total",
		Help: "Listings written by catalog imports.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_category_name_conflicts_total",
		Help: "Feed categories whose name differed from the stored one.",
	})
	reg.MustRegister(imports, goods, conflicts)
	return &CatalogMetrics{imports: imports, goods: goods, conflicts: conflicts}
}

func (m *CatalogMetrics) ImportSucceeded(goods, nameConflicts int) {
	if m == nil || m.imports == nil {
		return
	}
	m.imports.WithLabelValues("success").Inc()
	m.goods.Add(float64(goods))
	m.conflicts.Add(float64(nameConflicts))
}

func (m *CatalogMetrics) ImportFailed() {
	if m == nil || m.imports == nil {
		return
	}
	m.imports.WithLabelValues("failure").Inc()
}

// OrderMetrics counts basket and order state transitions.
type OrderMetrics struct {
	transitions *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order state transitions by target state.",
	}, []string{"state"})
	reg.MustRegister(transitions)
	return &OrderMetrics{transitions: transitions}
}

func (m *OrderMetrics) Transitioned(state string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(state)).Inc()
}

// EventMetrics covers notification dispatch, outbox publishing and consumption.
type EventMetrics struct {
	dispatchFailures *prometheus.CounterVec
	published        *prometheus.CounterVec
	consumed         *prometheus.CounterVec
	pending          prometheus.Gauge
}

func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	if reg == nil {
		return &EventMetrics{}
	}
	dispatchFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatch_failures_total",
		Help: "Notifier calls that failed or panicked, by event type.",
	}, []string{"event_type"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_publish_total",
		Help: "Outbox publish attempts by result.",
	}, []string{"result"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_consumed_total",
		Help: "Consumed domain events by event type and result.",
	}, []string{"event_type", "result"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_pending_events",
		Help: "Outbox rows not yet published.",
	})
	reg.MustRegister(dispatchFailures, published, consumed, pending)
	return &EventMetrics{
		dispatchFailures: dispatchFailures,
		published:        published,
		consumed:         consumed,
		pending:          pending,
	}
}

func (m *EventMetrics) DispatchFailed(eventType string) {
	if m == nil || m.dispatchFailures == nil {
		return
	}
	m.dispatchFailures.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// Published records an outbox publish outcome: published, retry or terminal.
func (m *EventMetrics) Published(result string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(result)).Inc()
}

// Consumed records a consumer outcome: processed, duplicate, retry or dropped.
func (m *EventMetrics) Consumed(eventType, result string) {
	if m == nil || m.consumed == nil {
		return
	}
	m.consumed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

func (m *EventMetrics) SetPending(count int64) {
	if m == nil || m.pending == nil {
		return
	}
	m.pending.Set(float64(count))
}
