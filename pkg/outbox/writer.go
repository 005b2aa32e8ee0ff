package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// DomainEvent is what services hand to Emit. Data is marshaled into the
// envelope's data field.
type DomainEvent struct {
	EventType     enums.OutboxEventType
	AggregateType enums.OutboxAggregateType
	AggregateID   uuid.UUID
	Actor         *ActorRef
	Data          any
	OccurredAt    time.Time
}

// Writer appends events to outbox_events on the caller's transaction, so a
// row exists only if the mutation that produced it committed.
type Writer struct {
	logg *logger.Logger
	now  func() time.Time
}

func NewWriter(logg *logger.Logger) *Writer {
	return &Writer{logg: logg, now: time.Now}
}

func (w *Writer) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("outbox emit requires a transaction")
	}
	if !event.EventType.IsValid() || !event.AggregateType.IsValid() {
		return fmt.Errorf("outbox emit: unknown event %q on %q", event.EventType, event.AggregateType)
	}

	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("outbox emit: encode %s: %w", event.EventType, err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = w.now().UTC()
	}
	envelope := PayloadEnvelope{
		Version:    EnvelopeVersion,
		EventID:    uuid.NewString(),
		OccurredAt: occurred,
		Actor:      event.Actor,
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("outbox emit: encode envelope: %w", err)
	}

	row := models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       raw,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("outbox emit: insert: %w", err)
	}

	if w.logg != nil {
		w.logg.Debug(w.logg.WithFields(ctx, map[string]any{
			"outbox_id":    row.ID.String(),
			"event_id":     envelope.EventID,
			"event_type":   event.EventType,
			"aggregate_id": event.AggregateID.String(),
		}), "outbox event queued")
	}
	return nil
}
