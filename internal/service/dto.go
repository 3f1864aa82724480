package service

import (
	"github.com/shopspring/decimal"

	"github.com/harvesthub/marketplace/internal/domain"
)

// CheckoutRequest is the cart submitted by an authenticated customer
type CheckoutRequest struct {
	Items           []CheckoutItem        `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *ShippingAddressInput `json:"shippingAddress" binding:"required"`
	Totals          *CheckoutTotals       `json:"totals" binding:"required"`
}

type CheckoutItem struct {
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
	// VendorID is informational; the vendor is always taken from the live product
	VendorID string `json:"vendorId"`
}

type ShippingAddressInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country" binding:"required"`
}

type CheckoutTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CheckoutResult is everything the client needs to open the payment dialog
type CheckoutResult struct {
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
	Amount       int64  `json:"amount"`
	Email        string `json:"email"`
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Reference    string `json:"reference"`
}

// Customer identifies the authenticated caller placing an order
type Customer struct {
	ID    string
	Email string
}

// IdempotencyRecord is stored alongside a new order when the client sent an Idempotency-Key
type IdempotencyRecord struct {
	Key         string
	RequestHash string
}

// PaystackEvent is the webhook envelope
type PaystackEvent struct {
	Event string              `json:"event"`
	Data  PaystackEventCharge `json:"data"`
}

type PaystackEventCharge struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// PaymentOutcome reports what a confirmation attempt did
type PaymentOutcome struct {
	OrderFound bool
	Confirmed  bool
	Oversold   []string

	// PaidWhileCancelled is set when the gateway charged an order that was already cancelled
	PaidWhileCancelled bool
}

// VerifyResult is returned by the payment verification endpoint
type VerifyResult struct {
	OrderID       string               `json:"orderId"`
	OrderNumber   string               `json:"orderNumber"`
	Reference     string               `json:"reference"`
	GatewayStatus string               `json:"gatewayStatus"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	Status        domain.OrderStatus   `json:"status"`
}

// ProductListResult is a page of the public catalog
type ProductListResult struct {
	Products   []*domain.ProductListing `json:"products"`
	Pagination Pagination               `json:"pagination"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ProductDetail is a product with its vendor, category and latest approved reviews
type ProductDetail struct {
	*domain.ProductListing
	Vendor   *domain.Vendor   `json:"vendor"`
	Category *domain.Category `json:"category"`
	Reviews  []*domain.Review `json:"reviews"`
}

// ReviewList is the public review listing for a product
type ReviewList struct {
	Reviews []*domain.Review    `json:"reviews"`
	Stats   *domain.ReviewStats `json:"stats"`
}

type CreateReviewRequest struct {
	ProductID string  `json:"productId" binding:"required,uuid"`
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string `json:"comment"`
}

type VendorApplicationRequest struct {
	BusinessName      string  `json:"businessName" binding:"required"`
	BusinessType      string  `json:"businessType" binding:"required"`
	Description       string  `json:"description" binding:"required"`
	BusinessPhone     *string `json:"businessPhone"`
	BusinessEmail     *string `json:"businessEmail" binding:"omitempty,email"`
	Website           *string `json:"website" binding:"omitempty,url"`
	ChurchAffiliation *string `json:"churchAffiliation"`
	FaithStatement    *string `json:"faithStatement"`
}

type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required"`
	Slug          string           `json:"slug"`
	Description   *string          `json:"description"`
	ShortDesc     *string          `json:"shortDesc"`
	Price         decimal.Decimal  `json:"price"`
	ComparePrice  *decimal.Decimal `json:"comparePrice"`
	StockQuantity int              `json:"stockQuantity" binding:"min=0"`
	CategoryID    string           `json:"categoryId" binding:"required,uuid"`
	SKU           *string          `json:"sku"`
	Tags          string           `json:"tags"`
	IsDigital     bool             `json:"isDigital"`
	Status        string           `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE INACTIVE OUT_OF_STOCK"`
	ImageURL      *string          `json:"imageUrl" binding:"omitempty,url"`
}

// VendorDashboard is the vendor's own summary
type VendorDashboard struct {
	Vendor        *domain.Vendor         `json:"vendor"`
	Stats         *domain.VendorStats    `json:"stats"`
	RecentPayouts []*domain.VendorPayout `json:"recentPayouts"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Analytics backs the admin analytics dashboard
type Analytics struct {
	Totals     *domain.PlatformStats `json:"totals"`
	Growth     Growth                `json:"growth"`
	TopVendors []*domain.TopVendor   `json:"topVendors"`
}

type Growth struct {
	CurrentOrders   int             `json:"currentOrders"`
	PreviousOrders  int             `json:"previousOrders"`
	OrderGrowth     int             `json:"orderGrowth"`
	CurrentRevenue  decimal.Decimal `json:"currentRevenue"`
	PreviousRevenue decimal.Decimal `json:"previousRevenue"`
	RevenueGrowth   int             `json:"revenueGrowth"`
}
