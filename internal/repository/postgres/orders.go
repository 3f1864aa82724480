package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/pkg/errors"
)

type orderRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db sqlx.ExtContext, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `o.id, o.order_number, o.customer_id, o.status, o.payment_status, o.subtotal,
	o.tax, o.shipping, o.total, o.payment_reference, o.gateway_reference, o.shipping_address_id,
	o.created_at, o.updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, customer_id, status, payment_status, subtotal, tax, shipping,
			total, payment_reference, gateway_reference, shipping_address_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.Status,
		order.PaymentStatus,
		order.Subtotal,
		order.Tax,
		order.Shipping,
		order.Total,
		order.PaymentReference,
		order.GatewayReference,
		order.ShippingAddressID,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	if err := insertOrderItems(ctx, r.db, order.ID, order.Items); err != nil {
		r.logger.Error("Failed to create order items", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id.String(), id)
}

func (r *orderRepository) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.payment_reference = $1`, reference, reference)
}

func (r *orderRepository) getOne(ctx context.Context, query, ident string, arg interface{}) (*domain.Order, error) {
	var order domain.Order
	err := sqlx.GetContext(ctx, r.db, &order, query, arg)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: ident}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.Error(err))
		return nil, err
	}

	items, err := itemsByOrder(ctx, r.db, []uuid.UUID{order.ID})
	if err != nil {
		r.logger.Error("Failed to get order items", zap.Error(err))
		return nil, err
	}
	order.Items = items[order.ID]

	var address domain.ShippingAddress
	err = sqlx.GetContext(ctx, r.db, &address,
		`SELECT `+shippingAddressColumns+` FROM shipping_addresses WHERE id = $1`, order.ShippingAddressID)
	if err != nil && err != sql.ErrNoRows {
		r.logger.Error("Failed to get order shipping address", zap.Error(err))
		return nil, err
	}
	if err == nil {
		order.ShippingAddress = &address
	}

	return &order, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, gatewayReference string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, payment_status = $2, gateway_reference = $3, updated_at = $4
		WHERE id = $5 AND payment_status = $6 AND status = $7
	`,
		domain.OrderStatusConfirmed,
		domain.PaymentStatusPaid,
		gatewayReference,
		time.Now(),
		id,
		domain.PaymentStatusPending,
		domain.OrderStatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to mark order paid", zap.Error(err))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		to, time.Now(), id, from,
	)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := sqlx.SelectContext(ctx, r.db, &orders, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.customer_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3
	`, customerID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list customer orders", zap.Error(err))
		return nil, err
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := itemsByOrder(ctx, r.db, ids)
	if err != nil {
		r.logger.Error("Failed to list order items", zap.Error(err))
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, nil
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]*domain.RecentOrder, error) {
	var orders []*domain.RecentOrder
	err := sqlx.SelectContext(ctx, r.db, &orders, `
		SELECT o.id, o.order_number, o.status, o.payment_status, o.total, o.created_at,
			u.name AS customer_name,
			u.email AS customer_email,
			(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
		FROM orders o
		JOIN users u ON u.id = o.customer_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("Failed to list recent orders", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) HasDeliveredPurchase(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, `
		SELECT EXISTS (
			SELECT 1
			FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.customer_id = $1 AND oi.product_id = $2 AND o.status = $3
		)
	`, customerID, productID, domain.OrderStatusDelivered)
	if err != nil {
		r.logger.Error("Failed to check delivered purchase", zap.Error(err))
		return false, err
	}
	return exists, nil
}
