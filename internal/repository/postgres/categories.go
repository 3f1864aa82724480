package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/pkg/errors"
)

type categoryRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db sqlx.ExtContext, logger *zap.Logger) *categoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var category domain.Category
	err := sqlx.GetContext(ctx, r.db, &category, `
		SELECT id, name, slug, description, image, is_active, 0 AS product_count
		FROM categories
		WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "category", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get category by ID", zap.Error(err))
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.image, c.is_active,
			COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.status = 'ACTIVE'
		WHERE c.is_active = TRUE
		GROUP BY c.id
		ORDER BY c.name ASC
	`

	var categories []*domain.Category
	if err := sqlx.SelectContext(ctx, r.db, &categories, query); err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, err
	}
	return categories, nil
}
