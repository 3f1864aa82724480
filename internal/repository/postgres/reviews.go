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

type reviewRepository struct {
	db     sqlx.ExtContext
	logger *zap.Logger
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db sqlx.ExtContext, logger *zap.Logger) *reviewRepository {
	return &reviewRepository{
		db:     db,
		logger: logger,
	}
}

const reviewSelect = `
	SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.is_verified, r.status,
		r.created_at, r.updated_at, u.name AS user_name
	FROM reviews r
	JOIN users u ON u.id = r.user_id
`

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	now := time.Now()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.Status == "" {
		review.Status = domain.ReviewStatusPending
	}
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, product_id, rating, comment, is_verified, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		review.ID,
		review.UserID,
		review.ProductID,
		review.Rating,
		review.Comment,
		review.IsVerified,
		review.Status,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return &errors.ErrValidation{Message: "You have already reviewed this product"}
	}
	if err != nil {
		r.logger.Error("Failed to create review", zap.Error(err))
		return err
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var review domain.Review
	err := sqlx.GetContext(ctx, r.db, &review, reviewSelect+` WHERE r.id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "review", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get review", zap.Error(err))
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.Review, error) {
	var review domain.Review
	err := sqlx.GetContext(ctx, r.db, &review, reviewSelect+` WHERE r.user_id = $1 AND r.product_id = $2`, userID, productID)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "review", ID: productID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get review by user and product", zap.Error(err))
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListApprovedByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.Review, error) {
	query := reviewSelect + ` WHERE r.product_id = $1 AND r.status = 'APPROVED' ORDER BY r.created_at DESC`
	args := []interface{}{productID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var reviews []*domain.Review
	if err := sqlx.SelectContext(ctx, r.db, &reviews, query, args...); err != nil {
		r.logger.Error("Failed to list product reviews", zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ListByStatus(ctx context.Context, status *domain.ReviewStatus) ([]*domain.Review, error) {
	query := reviewSelect
	var args []interface{}
	if status != nil {
		query += ` WHERE r.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY r.created_at DESC`

	var reviews []*domain.Review
	if err := sqlx.SelectContext(ctx, r.db, &reviews, query, args...); err != nil {
		r.logger.Error("Failed to list reviews", zap.Error(err))
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		r.logger.Error("Failed to update review status", zap.Error(err))
		return err
	}
	return expectOneRow(result, "review", id)
}

func (r *reviewRepository) Stats(ctx context.Context, productID uuid.UUID) (*domain.ReviewStats, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT rating, COUNT(*) AS n
		FROM reviews
		WHERE product_id = $1 AND status = 'APPROVED'
		GROUP BY rating
	`, productID)
	if err != nil {
		r.logger.Error("Failed to get review stats", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var stats domain.ReviewStats
	sum := 0
	for rows.Next() {
		var rating, n int
		if err := rows.Scan(&rating, &n); err != nil {
			return nil, err
		}
		if rating >= 1 && rating <= 5 {
			stats.RatingDistribution[rating-1] = n
		}
		stats.TotalReviews += n
		sum += rating * n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalReviews > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalReviews)
	}
	return &stats, nil
}
