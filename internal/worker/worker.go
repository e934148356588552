package worker

import (
	"context"
	"time"

	"github.com/beifitycom/backend/internal/logger"
	"github.com/beifitycom/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	drainInterval = 5 * time.Second
	drainBatch    = 50
	// concurrent sends per drain
	sendWorkers = 8
)

// Outbox is the notification outbox the worker drains.
type Outbox interface {
	GetPending(ctx context.Context, limit int) ([]models.Notification, error)
	MarkSent(ctx context.Context, id uint64) error
}

// Sender delivers one notification to its recipient. Duplicate deliveries
// are acceptable; the outbox entry is only marked sent after a successful
// send.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// OutboxProcessor drains committed outbox entries and dispatches them
// concurrently. One recipient's failure never affects the others or the
// already-committed financial state; failed entries stay pending and are
// retried on the next tick.
type OutboxProcessor struct {
	outbox Outbox
	sender Sender
}

// NewOutboxProcessor creates new outbox processor
func NewOutboxProcessor(outbox Outbox, sender Sender) *OutboxProcessor {
	return &OutboxProcessor{outbox: outbox, sender: sender}
}

// Run drains the outbox on a fixed interval until ctx is cancelled.
func (op *OutboxProcessor) Run(ctx context.Context) {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("outbox processor is done")
			return
		case <-ticker.C:
			if err := op.Drain(ctx); err != nil {
				logger.Log.Error("outbox drain failed", zap.Error(err))
			}
		}
	}
}

// Drain sends one batch of pending notifications.
func (op *OutboxProcessor) Drain(ctx context.Context) error {
	pending, err := op.outbox.GetPending(ctx, drainBatch)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(sendWorkers)

	for _, n := range pending {
		n := n
		group.Go(func() error {
			if err := op.sender.Send(ctx, n); err != nil {
				// stays pending, retried next tick
				logger.Log.Error("notification send failed",
					zap.Uint64("id", n.ID),
					zap.String("recipient", n.RecipientID),
					zap.Error(err))
				return nil
			}
			if err := op.outbox.MarkSent(ctx, n.ID); err != nil {
				logger.Log.Error("mark sent failed",
					zap.Uint64("id", n.ID),
					zap.Error(err))
			}
			return nil
		})
	}

	return group.Wait()
}

// LogSender is the in-process Sender. Actual push/email delivery is owned
// by the notification service; this engine only records what to tell whom.
type LogSender struct{}

// Send logs the notification.
func (LogSender) Send(_ context.Context, n models.Notification) error {
	logger.Log.Info("notify",
		zap.String("recipient", n.RecipientID),
		zap.String("kind", n.Kind),
		zap.String("content", n.Content),
		zap.String("caused_by", n.CausedBy),
	)
	return nil
}
