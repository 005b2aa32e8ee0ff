package outbox

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/outbox/payloads"
)

func testRouter(t *testing.T) *Router {
	t.Helper()
	r, err := NewRouter(config.PubSubConfig{OrdersTopic: "orders", CatalogTopic: "catalog"})
	require.NoError(t, err)
	return r
}

func envelopeFor(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	env, err := json.Marshal(PayloadEnvelope{
		Version:    EnvelopeVersion,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return env
}

func TestRouterRoutesOrderEvents(t *testing.T) {
	orderID := uuid.New()
	row := models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload: envelopeFor(t, payloads.OrderCreatedEvent{
			OrderID:     orderID,
			TotalAmount: decimal.NewFromInt(250),
			Lines:       []payloads.OrderLine{{ItemID: uuid.New(), Quantity: 2}},
		}),
	}

	d, err := testRouter(t).Route(row)
	require.NoError(t, err)
	assert.Equal(t, "orders", d.Topic)
	assert.NotEmpty(t, d.EventID)

	payload, ok := d.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok, "payload type %T", d.Payload)
	assert.Equal(t, orderID, payload.OrderID)
	assert.True(t, payload.TotalAmount.Equal(decimal.NewFromInt(250)))
}

func TestRouterRoutesReviewsToCatalogTopic(t *testing.T) {
	itemID := uuid.New()
	row := models.OutboxEvent{
		EventType:     enums.EventReviewAdded,
		AggregateType: enums.AggregateCatalogItem,
		AggregateID:   itemID,
		Payload:       envelopeFor(t, payloads.ReviewAddedEvent{ItemID: itemID, Rating: 4, NewRating: 4, ReviewCount: 1}),
	}

	d, err := testRouter(t).Route(row)
	require.NoError(t, err)
	assert.Equal(t, "catalog", d.Topic)
}

func TestRouterRejectsBadRowsPermanently(t *testing.T) {
	valid := envelopeFor(t, payloads.OrderCanceledEvent{OrderID: uuid.New()})
	cases := map[string]models.OutboxEvent{
		"unknown type": {
			EventType: "bike_washed", AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: valid,
		},
		"aggregate mismatch": {
			EventType: enums.EventOrderCanceled, AggregateType: enums.AggregateCatalogItem, AggregateID: uuid.New(), Payload: valid,
		},
		"missing aggregate id": {
			EventType: enums.EventOrderCanceled, AggregateType: enums.AggregateOrder, Payload: valid,
		},
		"broken envelope": {
			EventType: enums.EventOrderCanceled, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{`),
		},
		"null data": {
			EventType: enums.EventOrderCanceled, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{"version":1,"eventId":"x","data":null}`),
		},
	}

	router := testRouter(t)
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := router.Route(row)
			require.Error(t, err)
			assert.True(t, IsPermanent(err), "expected permanent error, got %v", err)
		})
	}
}

func TestNewRouterRequiresTopics(t *testing.T) {
	_, err := NewRouter(config.PubSubConfig{OrdersTopic: "orders", CatalogTopic: " "})
	assert.Error(t, err)
}

func TestRouterTopicsAreDistinct(t *testing.T) {
	assert.ElementsMatch(t, []string{"orders", "catalog"}, testRouter(t).Topics())
}

func TestPermanentNilStaysNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(nil))
}
