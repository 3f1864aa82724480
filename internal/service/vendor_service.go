package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

const recentPayoutLimit = 10

// VendorService handles vendor applications, listings and approval
type VendorService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewVendorService creates a new vendor service
func NewVendorService(repos *repository.Repositories, logger *zap.Logger) *VendorService {
	return &VendorService{
		repos:  repos,
		logger: logger,
	}
}

// Apply creates a PENDING, inactive vendor for the user
func (s *VendorService) Apply(ctx context.Context, userID uuid.UUID, req VendorApplicationRequest) (*domain.Vendor, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	existing, err := s.repos.Vendor.GetByUserID(ctx, userID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, &errors.ErrConflict{Message: "You already have a vendor application"}
	}

	vendor := &domain.Vendor{
		UserID:            userID,
		BusinessName:      strings.TrimSpace(req.BusinessName),
		BusinessType:      req.BusinessType,
		Description:       req.Description,
		BusinessPhone:     req.BusinessPhone,
		BusinessEmail:     req.BusinessEmail,
		Website:           req.Website,
		ChurchAffiliation: req.ChurchAffiliation,
		FaithStatement:    req.FaithStatement,
		Status:            domain.VendorStatusPending,
		IsActive:          false,
	}
	if err := s.repos.Vendor.Create(ctx, vendor); err != nil {
		return nil, err
	}

	s.logger.Info("Vendor application submitted",
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("business_name", vendor.BusinessName),
	)
	return vendor, nil
}

// Dashboard summarises the caller's own vendor account
func (s *VendorService) Dashboard(ctx context.Context, userID uuid.UUID) (*VendorDashboard, error) {
	vendor, err := s.repos.Vendor.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.repos.Stats.Vendor(ctx, vendor.ID)
	if err != nil {
		return nil, err
	}
	payouts, err := s.repos.Payout.ListByVendor(ctx, vendor.ID, recentPayoutLimit)
	if err != nil {
		return nil, err
	}
	if payouts == nil {
		payouts = []*domain.VendorPayout{}
	}
	return &VendorDashboard{Vendor: vendor, Stats: stats, RecentPayouts: payouts}, nil
}

// ListProducts returns every product of the caller's vendor regardless of status
func (s *VendorService) ListProducts(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	vendor, err := s.repos.Vendor.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := s.repos.Product.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

// CreateProduct lists a new product for an approved, active vendor
func (s *VendorService) CreateProduct(ctx context.Context, userID uuid.UUID, req CreateProductRequest) (*domain.Product, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if !req.Price.IsPositive() {
		return nil, &errors.ErrValidation{
			Message: "validation failed",
			Fields:  map[string]string{"price": "price must be greater than 0"},
		}
	}

	vendor, err := s.repos.Vendor.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !vendor.CanSell() {
		return nil, &errors.ErrForbidden{Message: "Vendor account is not approved"}
	}

	categoryID := uuid.MustParse(req.CategoryID)
	if _, err := s.repos.Category.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	slug := domain.Slugify(req.Slug)
	if slug == "" {
		slug = domain.Slugify(req.Name)
	}
	if slug == "" {
		return nil, &errors.ErrValidation{Message: "Product name must contain letters or digits"}
	}
	if _, err := s.repos.Product.GetBySlug(ctx, slug); err == nil {
		return nil, &errors.ErrValidation{Message: "Product slug already exists"}
	} else if !isNotFound(err) {
		return nil, err
	}

	status := domain.ProductStatusDraft
	if req.Status != "" {
		status = domain.ProductStatus(req.Status)
	}

	product := &domain.Product{
		VendorID:      vendor.ID,
		CategoryID:    categoryID,
		Name:          strings.TrimSpace(req.Name),
		Slug:          slug,
		Description:   req.Description,
		ShortDesc:     req.ShortDesc,
		Price:         req.Price,
		ComparePrice:  req.ComparePrice,
		StockQuantity: req.StockQuantity,
		SKU:           req.SKU,
		Tags:          req.Tags,
		IsDigital:     req.IsDigital,
		Status:        status,
		ImageURL:      req.ImageURL,
	}
	if err := s.repos.Product.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("vendor_id", vendor.ID.String()),
		zap.String("slug", slug),
	)
	return product, nil
}

// List returns vendors for the admin, optionally filtered by status
func (s *VendorService) List(ctx context.Context, status *domain.VendorStatus) ([]*domain.Vendor, error) {
	if status != nil && !status.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid vendor status"}
	}
	vendors, err := s.repos.Vendor.List(ctx, status)
	if err != nil {
		return nil, err
	}
	if vendors == nil {
		vendors = []*domain.Vendor{}
	}
	return vendors, nil
}

// UpdateStatus moves a vendor between review states. Approval activates the
// vendor and promotes its owner to the VENDOR role.
func (s *VendorService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus) (*domain.Vendor, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid vendor status"}
	}

	var updated *domain.Vendor
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		vendor, err := tx.Vendor.GetByID(ctx, id)
		if err != nil {
			return err
		}

		active := status == domain.VendorStatusApproved
		if err := tx.Vendor.UpdateStatus(ctx, id, status, active); err != nil {
			return err
		}

		if active {
			user, err := tx.User.GetByID(ctx, vendor.UserID)
			if err != nil {
				return err
			}
			if user.Role == domain.UserRoleCustomer {
				if err := tx.User.UpdateRole(ctx, user.ID, domain.UserRoleVendor); err != nil {
					return err
				}
			}
		}

		updated, err = tx.Vendor.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vendor status updated",
		zap.String("vendor_id", id.String()),
		zap.String("status", string(status)),
	)
	return updated, nil
}
