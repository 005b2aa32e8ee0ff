package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox/payloads"
)

// PermanentError marks a failure that retrying cannot fix. The relay
// dead-letters the row instead of bumping its attempt count.
type PermanentError struct{ Err error }

func (e PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so IsPermanent reports true. Nil stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var p PermanentError
	return errors.As(err, &p)
}

type route struct {
	aggregate enums.OutboxAggregateType
	topic     string
	decode    func(json.RawMessage) (any, error)
}

func decodeInto[T any](raw json.RawMessage) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Delivery is a validated outbox row ready for publishing.
type Delivery struct {
	Topic      string
	EventID    string
	OccurredAt time.Time
	Payload    any
}

// Router maps event types to topics and checks each row decodes before it
// leaves the database.
type Router struct {
	routes map[enums.OutboxEventType]route
}

func NewRouter(cfg config.PubSubConfig) (*Router, error) {
	orders := strings.TrimSpace(cfg.OrdersTopic)
	catalog := strings.TrimSpace(cfg.CatalogTopic)
	if orders == "" || catalog == "" {
		return nil, errors.New("outbox router: orders and catalog topics are required")
	}
	return &Router{routes: map[enums.OutboxEventType]route{
		enums.EventOrderCreated:       {enums.AggregateOrder, orders, decodeInto[payloads.OrderCreatedEvent]},
		enums.EventOrderCanceled:      {enums.AggregateOrder, orders, decodeInto[payloads.OrderCanceledEvent]},
		enums.EventOrderStatusChanged: {enums.AggregateOrder, orders, decodeInto[payloads.OrderStatusChangedEvent]},
		enums.EventReviewAdded:        {enums.AggregateCatalogItem, catalog, decodeInto[payloads.ReviewAddedEvent]},
	}}, nil
}

// Topics returns the distinct topics the router publishes to.
func (r *Router) Topics() []string {
	seen := map[string]bool{}
	var out []string
	for _, rt := range r.routes {
		if !seen[rt.topic] {
			seen[rt.topic] = true
			out = append(out, rt.topic)
		}
	}
	return out
}

// Route validates the row. Every error it returns is permanent.
func (r *Router) Route(event models.OutboxEvent) (Delivery, error) {
	rt, ok := r.routes[event.EventType]
	switch {
	case !ok:
		return Delivery{}, Permanent(fmt.Errorf("no route for event type %q", event.EventType))
	case rt.aggregate != event.AggregateType:
		return Delivery{}, Permanent(fmt.Errorf("%s expects aggregate %s, row has %s", event.EventType, rt.aggregate, event.AggregateType))
	case event.AggregateID == uuid.Nil:
		return Delivery{}, Permanent(errors.New("row has no aggregate id"))
	}

	var env PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &env); err != nil {
		return Delivery{}, Permanent(fmt.Errorf("decode envelope: %w", err))
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Delivery{}, Permanent(fmt.Errorf("%s envelope has no data", event.EventType))
	}
	payload, err := rt.decode(data)
	if err != nil {
		return Delivery{}, Permanent(fmt.Errorf("decode %s data: %w", event.EventType, err))
	}

	return Delivery{
		Topic:      rt.topic,
		EventID:    env.EventID,
		OccurredAt: env.OccurredAt,
		Payload:    payload,
	}, nil
}
