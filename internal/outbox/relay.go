// Package outbox relays order events from the order_events table to the message bus.
package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
)

const defaultBatchSize = 50

// Publisher delivers one order event to the bus
type Publisher interface {
	Publish(ctx context.Context, event *domain.OrderEvent) error
}

// Relay polls unpublished order events and marks them published once delivered
type Relay struct {
	repos     *repository.Repositories
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *zap.Logger
}

// NewRelay creates a relay polling every interval
func NewRelay(repos *repository.Repositories, publisher Publisher, interval time.Duration, logger *zap.Logger) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Relay{
		repos:     repos,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger,
	}
}

// Start runs until ctx is cancelled
func (r *Relay) Start(ctx context.Context) {
	r.logger.Info("Starting order event relay", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Order event relay stopping")
			return
		case <-ticker.C:
			if _, err := r.ProcessBatch(ctx); err != nil {
				r.logger.Error("Error relaying order events", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes up to one batch of events and returns how many were marked published.
// An event that fails to publish stays unpublished and is retried on the next tick.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	published := 0
	err := r.repos.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		published = 0

		events, err := tx.OrderEvent.ListUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		r.logger.Debug("Relaying order events", zap.Int("count", len(events)))
		for _, event := range events {
			if err := r.publisher.Publish(ctx, event); err != nil {
				r.logger.Warn("Failed to publish order event",
					zap.String("event_id", event.ID.String()),
					zap.String("event_type", event.EventType),
					zap.Error(err),
				)
				continue
			}
			if err := tx.OrderEvent.MarkPublished(ctx, event.ID, time.Now()); err != nil {
				return err
			}
			published++
		}
		return nil
	})
	return published, err
}
