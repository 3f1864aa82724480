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

type shippingAddressRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewShippingAddressRepository creates a new shipping address repository
func NewShippingAddressRepository(db sqlx.ExtContext, logger *zap.Logger) *shippingAddressRepository {
	return &shippingAddressRepository{
		db:     db,
		logger: logger,
	}
}

const shippingAddressColumns = `id, first_name, last_name, email, phone, address, city, state,
	zip_code, country, created_at`

func (r *shippingAddressRepository) Create(ctx context.Context, address *domain.ShippingAddress) error {
	query := `
		INSERT INTO shipping_addresses (` + shippingAddressColumns + `)
		VALUES (:id, :first_name, :last_name, :email, :phone, :address, :city, :state,
			:zip_code, :country, :created_at)
	`

	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	address.CreatedAt = time.Now()

	if _, err := sqlx.NamedExecContext(ctx, r.db, query, address); err != nil {
		r.logger.Error("Failed to create shipping address", zap.Error(err))
		return err
	}
	return nil
}

func (r *shippingAddressRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShippingAddress, error) {
	var address domain.ShippingAddress
	err := sqlx.GetContext(ctx, r.db, &address,
		`SELECT `+shippingAddressColumns+` FROM shipping_addresses WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shipping_address", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get shipping address", zap.Error(err))
		return nil, err
	}
	return &address, nil
}
