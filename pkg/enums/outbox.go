package enums

// OutboxAggregateType names the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateUser  OutboxAggregateType = "user"
	AggregateOrder OutboxAggregateType = "order"
)

var aggregateTypes = []OutboxAggregateType{AggregateUser, AggregateOrder}

func (a OutboxAggregateType) IsValid() bool { return oneOf(a, aggregateTypes) }

func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	return parse("aggregate type", value, aggregateTypes)
}

// OutboxEventType is the domain event carried through the outbox. The value
// doubles as the event_type Pub/Sub attribute.
type OutboxEventType string

const (
	EventUserRegistered OutboxEventType = "user_registered"
	EventOrderPlaced    OutboxEventType = "order_placed"
	EventOrderConfirmed OutboxEventType = "order_confirmed"
)

var eventTypes = []OutboxEventType{
	EventUserRegistered,
	EventOrderPlaced,
	EventOrderConfirmed,
}

func (e OutboxEventType) IsValid() bool { return oneOf(e, eventTypes) }

func ParseOutboxEventType(value string) (OutboxEventType, error) {
	return parse("event type", value, eventTypes)
}

// OutboxDLQErrorReason records why a row was parked in outbox_dlq.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
)

func (r OutboxDLQErrorReason) IsValid() bool {
	return oneOf(r, []OutboxDLQErrorReason{OutboxDLQReasonNonRetryable, OutboxDLQReasonMaxAttempts})
}
