package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
)

const (
	defaultProductLimit = 50
	maxProductLimit     = 100
	productReviewLimit  = 10
)

// Catalog is the read side of the storefront
type Catalog interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductListResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

// CatalogService serves products and categories straight from the repositories
type CatalogService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repos *repository.Repositories, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repos:  repos,
		logger: logger,
	}
}

// ListProducts returns a page of purchasable products
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultProductLimit
	}
	if filter.Limit > maxProductLimit {
		filter.Limit = maxProductLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if strings.EqualFold(filter.CategorySlug, "all") {
		filter.CategorySlug = ""
	}
	filter.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.repos.Product.ListPublic(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*domain.ProductListing{}
	}

	return &ProductListResult{
		Products: products,
		Pagination: Pagination{
			Total:   total,
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			HasMore: filter.Offset+len(products) < total,
		},
	}, nil
}

// GetProduct returns a product with its vendor, category and latest approved reviews
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	listing, err := s.repos.Product.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vendor, err := s.repos.Vendor.GetByID(ctx, listing.VendorID)
	if err != nil {
		return nil, err
	}
	category, err := s.repos.Category.GetByID(ctx, listing.CategoryID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.repos.Review.ListApprovedByProduct(ctx, id, productReviewLimit)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}

	return &ProductDetail{
		ProductListing: listing,
		Vendor:         vendor,
		Category:       category,
		Reviews:        reviews,
	}, nil
}

// ListCategories returns active categories with their product counts
func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.repos.Category.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}
