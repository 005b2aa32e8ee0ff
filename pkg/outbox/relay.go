package outbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// Message is one outbox row as handed to a Sink.
type Message struct {
	Topic      string
	Data       []byte
	Attributes map[string]string
}

// Sink delivers a message to the broker. Wrap errors with Permanent when a
// retry cannot succeed.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

type RelayOptions struct {
	BatchSize    int
	MaxAttempts  int
	PollInterval time.Duration
	MaxBackoff   time.Duration
	SendTimeout  time.Duration
}

func OptionsFromConfig(cfg config.OutboxConfig) RelayOptions {
	return RelayOptions{
		BatchSize:    cfg.BatchSize,
		MaxAttempts:  cfg.MaxAttempts,
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}.withDefaults()
}

func (o RelayOptions) withDefaults() RelayOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 10
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 500 * time.Millisecond
	}
	if o.MaxBackoff < o.PollInterval {
		o.MaxBackoff = 10 * time.Second
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 15 * time.Second
	}
	return o
}

// Relay moves committed outbox rows to a Sink. Rows are claimed, sent and
// marked inside one transaction per batch.
type Relay struct {
	tx     db.TxRunner
	store  *Store
	router *Router
	sink   Sink
	logg   *logger.Logger
	opts   RelayOptions
}

func NewRelay(tx db.TxRunner, router *Router, sink Sink, logg *logger.Logger, opts RelayOptions) (*Relay, error) {
	switch {
	case tx == nil:
		return nil, errors.New("outbox relay: transaction runner is required")
	case router == nil:
		return nil, errors.New("outbox relay: router is required")
	case sink == nil:
		return nil, errors.New("outbox relay: sink is required")
	case logg == nil:
		return nil, errors.New("outbox relay: logger is required")
	}
	return &Relay{
		tx:     tx,
		store:  NewStore(),
		router: router,
		sink:   sink,
		logg:   logg,
		opts:   opts.withDefaults(),
	}, nil
}

// Run drains until ctx is canceled. A full batch is followed immediately by
// another; a short one waits for the poll interval. Batch errors back off
// exponentially up to MaxBackoff.
func (r *Relay) Run(ctx context.Context) error {
	wait := time.Duration(0)
	failures := 0
	for {
		if err := sleep(ctx, wait); err != nil {
			return err
		}

		n, err := r.Drain(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			wait = r.backoff(failures)
			r.logg.Error(r.logg.WithField(ctx, "retry_in", wait.String()), "outbox batch failed", err)
		case n >= r.opts.BatchSize:
			failures, wait = 0, 0
		default:
			failures, wait = 0, jitter(r.opts.PollInterval)
		}
	}
}

// Drain handles at most one batch and reports how many rows left the queue,
// either published or dead-lettered. Rows marked for retry are not counted.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	var settled int
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.store.Claim(ctx, tx, r.opts.BatchSize, r.opts.MaxAttempts)
		if err != nil {
			return err
		}
		for _, row := range rows {
			done, err := r.handle(ctx, tx, row)
			if err != nil {
				return err
			}
			if done {
				settled++
			}
		}
		return nil
	})
	return settled, err
}

// handle reports whether the row left the queue. Delivery failures are
// recorded on the row, so a returned error always comes from the store.
func (r *Relay) handle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) (bool, error) {
	logCtx := r.logg.WithFields(ctx, map[string]any{
		"outbox_id":     row.ID.String(),
		"event_type":    row.EventType,
		"aggregate_id":  row.AggregateID.String(),
		"attempt_count": row.AttemptCount,
	})

	delivery, err := r.router.Route(row)
	if err == nil {
		logCtx = r.logg.WithFields(logCtx, map[string]any{"topic": delivery.Topic, "event_id": delivery.EventID})
		err = r.send(ctx, row, delivery)
	}
	if err == nil {
		if err := r.store.MarkPublished(ctx, tx, row.ID); err != nil {
			return false, fmt.Errorf("mark published %s: %w", row.ID, err)
		}
		r.logg.Info(logCtx, "outbox event published")
		return true, nil
	}

	logCtx = r.logg.WithField(logCtx, "error", err.Error())
	var reason enums.DeadLetterReason
	switch {
	case IsPermanent(err):
		reason = enums.DeadLetterPermanent
	case row.AttemptCount+1 >= r.opts.MaxAttempts:
		reason = enums.DeadLetterMaxAttempts
		err = fmt.Errorf("gave up after %d attempts: %w", row.AttemptCount+1, err)
	default:
		r.logg.Warn(logCtx, "outbox publish failed, will retry")
		if err := r.store.MarkRetry(ctx, tx, row.ID, err); err != nil {
			return false, fmt.Errorf("mark retry %s: %w", row.ID, err)
		}
		return false, nil
	}

	r.logg.Warn(r.logg.WithField(logCtx, "dead_letter_reason", reason), "outbox event dead-lettered")
	if err := r.store.Bury(ctx, tx, row, reason, err, r.opts.MaxAttempts); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Relay) send(ctx context.Context, row models.OutboxEvent, d Delivery) error {
	sendCtx, cancel := context.WithTimeout(ctx, r.opts.SendTimeout)
	defer cancel()
	return r.sink.Send(sendCtx, Message{
		Topic: d.Topic,
		Data:  row.Payload,
		Attributes: map[string]string{
			"event_id":       d.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
}

func (r *Relay) backoff(failures int) time.Duration {
	d := r.opts.PollInterval
	for i := 0; i < failures && d < r.opts.MaxBackoff; i++ {
		d *= 2
	}
	return jitter(min(d, r.opts.MaxBackoff))
}

// jitter adds up to a quarter of d so several relays drift apart.
func jitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + rand.N(d/4)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
