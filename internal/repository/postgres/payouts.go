package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
)

type payoutRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewPayoutRepository creates a new vendor payout repository
func NewPayoutRepository(db sqlx.ExtContext, logger *zap.Logger) *payoutRepository {
	return &payoutRepository{
		db:     db,
		logger: logger,
	}
}

const payoutColumns = `id, vendor_id, order_id, amount, status, payout_date, created_at`

func (r *payoutRepository) CreateIfAbsent(ctx context.Context, payout *domain.VendorPayout) (bool, error) {
	if payout.ID == uuid.Nil {
		payout.ID = uuid.New()
	}
	if payout.Status == "" {
		payout.Status = domain.PayoutStatusPending
	}
	payout.CreatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO vendor_payouts (`+payoutColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (vendor_id, order_id) DO NOTHING
	`,
		payout.ID,
		payout.VendorID,
		payout.OrderID,
		payout.Amount,
		payout.Status,
		payout.PayoutDate,
		payout.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vendor payout", zap.Error(err))
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *payoutRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit int) ([]*domain.VendorPayout, error) {
	var payouts []*domain.VendorPayout
	err := sqlx.SelectContext(ctx, r.db, &payouts, `
		SELECT `+payoutColumns+`
		FROM vendor_payouts
		WHERE vendor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, vendorID, limit)
	if err != nil {
		r.logger.Error("Failed to list vendor payouts", zap.Error(err))
		return nil, err
	}
	return payouts, nil
}
