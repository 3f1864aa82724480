package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/pkg/errors"
)

type vendorRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db sqlx.ExtContext, logger *zap.Logger) *vendorRepository {
	return &vendorRepository{
		db:     db,
		logger: logger,
	}
}

const vendorColumns = `id, user_id, business_name, business_type, description, business_phone,
	business_email, website, church_affiliation, faith_statement, status, is_active,
	total_sales, total_orders, average_rating, created_at, updated_at`

func (r *vendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	query := `
		INSERT INTO vendors (` + vendorColumns + `)
		VALUES (:id, :user_id, :business_name, :business_type, :description, :business_phone,
			:business_email, :website, :church_affiliation, :faith_statement, :status, :is_active,
			:total_sales, :total_orders, :average_rating, :created_at, :updated_at)
	`

	now := time.Now()
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	if vendor.Status == "" {
		vendor.Status = domain.VendorStatusPending
	}
	vendor.CreatedAt = now
	vendor.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, r.db, query, vendor)
	if isUniqueViolation(err) {
		return &errors.ErrConflict{Message: "You already have a vendor application"}
	}
	if err != nil {
		r.logger.Error("Failed to create vendor", zap.Error(err))
		return err
	}
	return nil
}

func (r *vendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := sqlx.GetContext(ctx, r.db, &vendor, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "vendor", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get vendor by ID", zap.Error(err))
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := sqlx.GetContext(ctx, r.db, &vendor, `SELECT `+vendorColumns+` FROM vendors WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "vendor", ID: userID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get vendor by user ID", zap.Error(err))
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) List(ctx context.Context, status *domain.VendorStatus) ([]*domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	var vendors []*domain.Vendor
	if err := sqlx.SelectContext(ctx, r.db, &vendors, query, args...); err != nil {
		r.logger.Error("Failed to list vendors", zap.Error(err))
		return nil, err
	}
	return vendors, nil
}

func (r *vendorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus, isActive bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE vendors SET status = $1, is_active = $2, updated_at = $3 WHERE id = $4`,
		status, isActive, time.Now(), id,
	)
	if err != nil {
		r.logger.Error("Failed to update vendor status", zap.Error(err))
		return err
	}
	return expectOneRow(result, "vendor", id)
}

func (r *vendorRepository) AddSales(ctx context.Context, id uuid.UUID, gross decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE vendors
		SET total_sales = total_sales + $1,
		    total_orders = total_orders + 1,
		    updated_at = $2
		WHERE id = $3
	`, gross, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to add vendor sales", zap.Error(err))
		return err
	}
	return expectOneRow(result, "vendor", id)
}
