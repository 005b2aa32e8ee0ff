package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
)

const maxStoredErrorLen = 1024

// Store is the relay's view of outbox_events and outbox_dlq. Every method
// runs on the transaction that claimed the batch.
type Store struct{}

func NewStore() *Store { return &Store{} }

// Claim returns the oldest unpublished rows still under the attempt ceiling.
// On postgres the rows stay locked until tx ends and other relays skip them.
func (Store) Claim(ctx context.Context, tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	q := tx.WithContext(ctx).
		Where("published_at IS NULL").
		Where("attempt_count < ?", maxAttempts)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked})
	}
	var rows []models.OutboxEvent
	if err := q.Order("created_at, id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("claim outbox rows: %w", err)
	}
	return rows, nil
}

func (Store) MarkPublished(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"published_at": time.Now().UTC(), "last_error": nil}).Error
}

// MarkRetry records a transient failure; the row is picked up again by a
// later Claim until attempt_count reaches the ceiling.
func (Store) MarkRetry(ctx context.Context, tx *gorm.DB, id uuid.UUID, cause error) error {
	return tx.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"last_error":    clip(cause.Error()),
		}).Error
}

// Bury copies the row into outbox_dlq and parks it at the attempt ceiling so
// Claim never returns it again.
func (Store) Bury(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.DeadLetterReason, cause error, ceiling int) error {
	msg := clip(cause.Error())
	letter := models.OutboxDeadLetter{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		Reason:        reason,
		ErrorMessage:  &msg,
		AttemptCount:  event.AttemptCount,
	}
	if err := tx.WithContext(ctx).Create(&letter).Error; err != nil {
		return fmt.Errorf("dead-letter %s: %w", event.ID, err)
	}
	err := tx.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{"attempt_count": ceiling, "last_error": msg}).Error
	if err != nil {
		return fmt.Errorf("park %s: %w", event.ID, err)
	}
	return nil
}

func clip(s string) string {
	if len(s) > maxStoredErrorLen {
		return s[:maxStoredErrorLen]
	}
	return s
}
