package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
)

type statsRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewStatsRepository creates a new dashboard statistics repository
func NewStatsRepository(db sqlx.ExtContext, logger *zap.Logger) *statsRepository {
	return &statsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *statsRepository) Platform(ctx context.Context) (*domain.PlatformStats, error) {
	var stats domain.PlatformStats
	err := sqlx.GetContext(ctx, r.db, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM vendors) AS total_vendors,
			(SELECT COUNT(*) FROM vendors WHERE status = 'PENDING') AS pending_vendors,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COALESCE(SUM(total), 0) FROM orders WHERE payment_status = 'PAID') AS total_revenue,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM products WHERE status = 'ACTIVE') AS active_products,
			(SELECT COUNT(*) FROM products WHERE status = 'DRAFT') AS draft_products,
			(SELECT COUNT(*) FROM reviews WHERE status = 'PENDING') AS pending_reviews,
			(SELECT COUNT(*) FROM reviews WHERE status = 'APPROVED') AS approved_reviews,
			(SELECT COUNT(*) FROM reviews WHERE status = 'REJECTED') AS rejected_reviews
	`)
	if err != nil {
		r.logger.Error("Failed to get platform stats", zap.Error(err))
		return nil, err
	}

	return &stats, nil
}

func (r *statsRepository) Period(ctx context.Context, from, to time.Time) (*domain.PeriodTotals, error) {
	var totals domain.PeriodTotals
	err := sqlx.GetContext(ctx, r.db, &totals, `
		SELECT
			COUNT(*) AS orders,
			COALESCE(SUM(total) FILTER (WHERE payment_status = 'PAID'), 0) AS revenue
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, from, to)
	if err != nil {
		r.logger.Error("Failed to get period totals", zap.Error(err))
		return nil, err
	}
	return &totals, nil
}

func (r *statsRepository) TopVendors(ctx context.Context, limit int) ([]*domain.TopVendor, error) {
	var vendors []*domain.TopVendor
	err := sqlx.SelectContext(ctx, r.db, &vendors, `
		SELECT id, business_name, total_sales, total_orders
		FROM vendors
		WHERE status = 'APPROVED'
		ORDER BY total_sales DESC, business_name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		r.logger.Error("Failed to get top vendors", zap.Error(err))
		return nil, err
	}
	return vendors, nil
}

func (r *statsRepository) Vendor(ctx context.Context, vendorID uuid.UUID) (*domain.VendorStats, error) {
	var stats domain.VendorStats
	row := r.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE vendor_id = $1),
			(SELECT COUNT(DISTINCT oi.order_id) FROM order_items oi WHERE oi.vendor_id = $1),
			(SELECT COALESCE(SUM(oi.total), 0) FROM order_items oi
				JOIN orders o ON o.id = oi.order_id
				WHERE oi.vendor_id = $1 AND o.payment_status = 'PAID'),
			(SELECT COUNT(DISTINCT oi.order_id) FROM order_items oi
				JOIN orders o ON o.id = oi.order_id
				WHERE oi.vendor_id = $1 AND o.status IN ('PENDING', 'CONFIRMED', 'PROCESSING')),
			(SELECT COALESCE(SUM(amount), 0) FROM vendor_payouts WHERE vendor_id = $1 AND status = 'PENDING')
	`, vendorID)

	err := row.Scan(
		&stats.TotalProducts,
		&stats.TotalOrders,
		&stats.TotalRevenue,
		&stats.PendingOrders,
		&stats.PendingPayouts,
	)
	if err != nil {
		r.logger.Error("Failed to get vendor stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}
