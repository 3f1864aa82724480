package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harvesthub/marketplace/internal/domain"
)

// UserRepository defines user data access methods
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error
}

// VendorRepository defines vendor data access methods
type VendorRepository interface {
	Create(ctx context.Context, vendor *domain.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Vendor, error)
	List(ctx context.Context, status *domain.VendorStatus) ([]*domain.Vendor, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus, isActive bool) error
	// AddSales credits a paid order to the vendor's lifetime totals
	AddSales(ctx context.Context, id uuid.UUID, gross decimal.Decimal) error
}

// CategoryRepository defines category data access methods
type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	// ListActive returns active categories by name with their ACTIVE product counts
	ListActive(ctx context.Context) ([]*domain.Category, error)
}

// ProductFilter narrows the public catalog listing
type ProductFilter struct {
	CategorySlug string
	Search       string
	Limit        int
	Offset       int
}

// ProductRepository defines product data access methods
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ProductListing, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	// ListActiveByIDs returns the subset of ids whose product is ACTIVE
	ListActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	ListPublic(ctx context.Context, filter ProductFilter) ([]*domain.ProductListing, int, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*domain.Product, error)
	// DecrementStock floors stock at zero, adds qty to sales and returns the stock before the update
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error)
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	// Create inserts the order and its items
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
	// MarkPaid moves a PENDING order with a PENDING payment to CONFIRMED/PAID
	// and reports whether this call won
	MarkPaid(ctx context.Context, id uuid.UUID, gatewayReference string) (bool, error)
	// UpdateStatus sets the status only while the order is still in from and
	// reports whether the row changed
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) (bool, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.RecentOrder, error)
	HasDeliveredPurchase(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// ShippingAddressRepository defines shipping address data access methods
type ShippingAddressRepository interface {
	Create(ctx context.Context, address *domain.ShippingAddress) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ShippingAddress, error)
}

// PayoutRepository defines vendor payout data access methods
type PayoutRepository interface {
	// CreateIfAbsent inserts the payout unless one exists for (vendor, order)
	CreateIfAbsent(ctx context.Context, payout *domain.VendorPayout) (bool, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit int) ([]*domain.VendorPayout, error)
}

// ReviewRepository defines review data access methods
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	GetByUserAndProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.Review, error)
	ListApprovedByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]*domain.Review, error)
	ListByStatus(ctx context.Context, status *domain.ReviewStatus) ([]*domain.Review, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus) error
	Stats(ctx context.Context, productID uuid.UUID) (*domain.ReviewStats, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// OrderEventRepository defines order event data access methods
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
	ListUnpublished(ctx context.Context, limit int) ([]*domain.OrderEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
}

// StatsRepository runs the aggregate queries behind the dashboards
type StatsRepository interface {
	Platform(ctx context.Context) (*domain.PlatformStats, error)
	Period(ctx context.Context, from, to time.Time) (*domain.PeriodTotals, error)
	TopVendors(ctx context.Context, limit int) ([]*domain.TopVendor, error)
	Vendor(ctx context.Context, vendorID uuid.UUID) (*domain.VendorStats, error)
}

// TxFunc runs against repositories bound to a single transaction
type TxFunc func(ctx context.Context, repos *Repositories) error

// Transactor runs fn in one transaction, committing only when fn returns nil
type Transactor interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Repositories aggregates all repositories
type Repositories struct {
	User            UserRepository
	Vendor          VendorRepository
	Category        CategoryRepository
	Product         ProductRepository
	Order           OrderRepository
	ShippingAddress ShippingAddressRepository
	Payout          PayoutRepository
	Review          ReviewRepository
	IdempotencyKey  IdempotencyKeyRepository
	OrderEvent      OrderEventRepository
	Stats           StatsRepository
	Tx              Transactor
}
