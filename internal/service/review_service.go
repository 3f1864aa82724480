package service

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

// ReviewService handles product reviews and their moderation
type ReviewService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(repos *repository.Repositories, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		repos:  repos,
		logger: logger,
	}
}

// ListForProduct returns approved reviews and rating stats for a product
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID) (*ReviewList, error) {
	reviews, err := s.repos.Review.ListApprovedByProduct(ctx, productID, 0)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	stats, err := s.repos.Review.Stats(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ReviewList{Reviews: reviews, Stats: stats}, nil
}

// Create submits a PENDING review; a user reviews each product at most once
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, req CreateReviewRequest) (*domain.Review, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	productID := uuid.MustParse(req.ProductID)

	if _, err := s.repos.Product.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.repos.Review.GetByUserAndProduct(ctx, userID, productID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &errors.ErrValidation{Message: "You have already reviewed this product"}
	}

	verified, err := s.repos.Order.HasDeliveredPurchase(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		UserID:     userID,
		ProductID:  productID,
		Rating:     req.Rating,
		IsVerified: verified,
		Status:     domain.ReviewStatusPending,
	}
	if req.Comment != nil {
		if c := strings.TrimSpace(*req.Comment); c != "" {
			review.Comment = &c
		}
	}

	if err := s.repos.Review.Create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Bool("verified", verified),
	)
	return review, nil
}

// ListByStatus returns reviews for moderation; nil status lists all
func (s *ReviewService) ListByStatus(ctx context.Context, status *domain.ReviewStatus) ([]*domain.Review, error) {
	if status != nil && !status.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid review status"}
	}
	reviews, err := s.repos.Review.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, nil
}

// UpdateStatus moderates a review
func (s *ReviewService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) (*domain.Review, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid review status"}
	}
	if err := s.repos.Review.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.logger.Info("Review moderated", zap.String("review_id", id.String()), zap.String("status", string(status)))
	return s.repos.Review.GetByID(ctx, id)
}

func isNotFound(err error) bool {
	var nf *errors.ErrNotFound
	return stderrors.As(err, &nf)
}
