package postgres

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sqlx.DB, logger *zap.Logger) *repository.Repositories {
	return newRepositories(db, NewTransactor(db, DefaultTxOptions(), logger), logger)
}

// newRepositories binds every repository to db, which is either the pool or an open transaction
func newRepositories(db sqlx.ExtContext, tx repository.Transactor, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		User:            NewUserRepository(db, logger),
		Vendor:          NewVendorRepository(db, logger),
		Category:        NewCategoryRepository(db, logger),
		Product:         NewProductRepository(db, logger),
		Order:           NewOrderRepository(db, logger),
		ShippingAddress: NewShippingAddressRepository(db, logger),
		Payout:          NewPayoutRepository(db, logger),
		Review:          NewReviewRepository(db, logger),
		IdempotencyKey:  NewIdempotencyKeyRepository(db, logger),
		OrderEvent:      NewOrderEventRepository(db, logger),
		Stats:           NewStatsRepository(db, logger),
		Tx:              tx,
	}
}
