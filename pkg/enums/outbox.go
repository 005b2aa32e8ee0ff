package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateOrder       OutboxAggregateType = "order"
	AggregateCatalogItem OutboxAggregateType = "catalog_item"
)

// OutboxEventType names a domain event published through the outbox.
type OutboxEventType string

const (
	EventOrderCreated       OutboxEventType = "order_created"
	EventOrderCanceled      OutboxEventType = "order_canceled"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventReviewAdded        OutboxEventType = "review_added"
)

// DeadLetterReason records why the relay gave up on an outbox row.
type DeadLetterReason string

const (
	DeadLetterMaxAttempts DeadLetterReason = "max_attempts"
	DeadLetterPermanent   DeadLetterReason = "non_retryable"
)

var (
	aggregateTypes    = set(AggregateOrder, AggregateCatalogItem)
	eventTypes        = set(EventOrderCreated, EventOrderCanceled, EventOrderStatusChanged, EventReviewAdded)
	deadLetterReasons = set(DeadLetterMaxAttempts, DeadLetterPermanent)
)

func set[T ~string](values ...T) map[T]struct{} {
	out := make(map[T]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func (a OutboxAggregateType) IsValid() bool {
	_, ok := aggregateTypes[a]
	return ok
}

func (e OutboxEventType) IsValid() bool {
	_, ok := eventTypes[e]
	return ok
}

func (r DeadLetterReason) IsValid() bool {
	_, ok := deadLetterReasons[r]
	return ok
}

// ParseOutboxEventType converts a stored event type back into the enum.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	if e := OutboxEventType(value); e.IsValid() {
		return e, nil
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
