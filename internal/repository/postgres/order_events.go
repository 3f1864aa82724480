package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
)

type orderEventRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewOrderEventRepository creates a new order event repository
func NewOrderEventRepository(db sqlx.ExtContext, logger *zap.Logger) *orderEventRepository {
	return &orderEventRepository{
		db:     db,
		logger: logger,
	}
}

type orderEventRow struct {
	domain.OrderEvent
	EventDataJSON []byte `db:"event_data"`
}

func (row *orderEventRow) toDomain() (*domain.OrderEvent, error) {
	event := row.OrderEvent
	if len(row.EventDataJSON) > 0 {
		if err := json.Unmarshal(row.EventDataJSON, &event.EventData); err != nil {
			return nil, err
		}
	}
	return &event, nil
}

func (r *orderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	query := `
		INSERT INTO order_events (id, order_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var eventDataJSON []byte
	var err error
	if event.EventData != nil {
		eventDataJSON, err = json.Marshal(event.EventData)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		event.ID,
		event.OrderID,
		event.EventType,
		eventDataJSON,
		event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order event", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderEventRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	return r.list(ctx, `
		SELECT id, order_id, event_type, event_data, created_at, published_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at ASC
	`, orderID)
}

func (r *orderEventRepository) ListUnpublished(ctx context.Context, limit int) ([]*domain.OrderEvent, error) {
	return r.list(ctx, `
		SELECT id, order_id, event_type, event_data, created_at, published_at
		FROM order_events
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
}

func (r *orderEventRepository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET published_at = $1 WHERE id = $2 AND published_at IS NULL`,
		at, id,
	)
	if err != nil {
		r.logger.Error("Failed to mark order event published", zap.Error(err))
		return err
	}
	return expectOneRow(result, "order_event", id)
}

func (r *orderEventRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.OrderEvent, error) {
	var rows []orderEventRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		r.logger.Error("Failed to list order events", zap.Error(err))
		return nil, err
	}

	events := make([]*domain.OrderEvent, 0, len(rows))
	for i := range rows {
		event, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
