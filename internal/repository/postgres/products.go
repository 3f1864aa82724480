package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

type productRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db sqlx.ExtContext, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `p.id, p.vendor_id, p.category_id, p.name, p.slug, p.description, p.short_desc,
	p.price, p.compare_price, p.stock_quantity, p.sales, p.sku, p.tags, p.is_digital, p.status,
	p.image_url, p.created_at, p.updated_at`

const listingSelect = `
	SELECT ` + productColumns + `,
		v.business_name AS vendor_name,
		c.name AS category_name,
		c.slug AS category_slug,
		COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.product_id = p.id AND r.status = 'APPROVED'), 0)::float8 AS average_rating,
		(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id AND r.status = 'APPROVED') AS review_count
	FROM products p
	JOIN vendors v ON v.id = p.vendor_id
	JOIN categories c ON c.id = p.category_id
`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, vendor_id, category_id, name, slug, description, short_desc,
			price, compare_price, stock_quantity, sales, sku, tags, is_digital, status,
			image_url, created_at, updated_at)
		VALUES (:id, :vendor_id, :category_id, :name, :slug, :description, :short_desc,
			:price, :compare_price, :stock_quantity, :sales, :sku, :tags, :is_digital, :status,
			:image_url, :created_at, :updated_at)
	`

	now := time.Now()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Status == "" {
		product.Status = domain.ProductStatusDraft
	}
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := sqlx.NamedExecContext(ctx, r.db, query, product)
	if isUniqueViolation(err) {
		return &errors.ErrValidation{Message: "Product slug already exists"}
	}
	if err != nil {
		r.logger.Error("Failed to create product", zap.Error(err))
		return err
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductListing, error) {
	var listing domain.ProductListing
	err := sqlx.GetContext(ctx, r.db, &listing, listingSelect+` WHERE p.id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get product by ID", zap.Error(err))
		return nil, err
	}
	return &listing, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var product domain.Product
	err := sqlx.GetContext(ctx, r.db, &product, `SELECT `+productColumns+` FROM products p WHERE p.slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: slug}
	}
	if err != nil {
		r.logger.Error("Failed to get product by slug", zap.Error(err))
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	var products []*domain.Product
	err := sqlx.SelectContext(ctx, r.db, &products,
		`SELECT `+productColumns+` FROM products p WHERE p.id = ANY($1::uuid[]) AND p.status = 'ACTIVE'`,
		pq.Array(strIDs),
	)
	if err != nil {
		r.logger.Error("Failed to list active products by IDs", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListPublic(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductListing, int, error) {
	where := []string{
		"p.status = 'ACTIVE'",
		"p.stock_quantity > 0",
		"v.status = 'APPROVED'",
		"v.is_active = TRUE",
	}
	var args []interface{}

	if filter.CategorySlug != "" && filter.CategorySlug != "all" {
		args = append(args, filter.CategorySlug)
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.short_desc ILIKE $%d OR p.description ILIKE $%d OR p.tags ILIKE $%d OR v.business_name ILIKE $%d)",
			n, n, n, n, n,
		))
	}
	whereClause := " WHERE " + strings.Join(where, " AND ")

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM products p
		JOIN vendors v ON v.id = p.vendor_id
		JOIN categories c ON c.id = p.category_id` + whereClause
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count products", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := listingSelect + whereClause +
		fmt.Sprintf(" ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var listings []*domain.ProductListing
	if err := sqlx.SelectContext(ctx, r.db, &listings, query, args...); err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *productRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*domain.Product, error) {
	var products []*domain.Product
	err := sqlx.SelectContext(ctx, r.db, &products,
		`SELECT `+productColumns+` FROM products p WHERE p.vendor_id = $1 ORDER BY p.created_at DESC`,
		vendorID,
	)
	if err != nil {
		r.logger.Error("Failed to list vendor products", zap.Error(err))
		return nil, err
	}
	return products, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	query := `
		UPDATE products p
		SET stock_quantity = GREATEST(p.stock_quantity - $1, 0),
		    sales = p.sales + $1,
		    updated_at = $2
		FROM (SELECT id, stock_quantity FROM products WHERE id = $3 FOR UPDATE) old
		WHERE p.id = old.id
		RETURNING old.stock_quantity
	`

	var previous int
	err := sqlx.GetContext(ctx, r.db, &previous, query, qty, time.Now(), id)
	if err == sql.ErrNoRows {
		return 0, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to decrement stock", zap.Error(err), zap.String("product_id", id.String()))
		return 0, err
	}
	return previous, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
