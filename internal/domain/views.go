package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductListing is a product joined with the vendor and category it belongs to
type ProductListing struct {
	Product
	VendorName    string  `db:"vendor_name" json:"vendorName"`
	CategoryName  string  `db:"category_name" json:"categoryName"`
	CategorySlug  string  `db:"category_slug" json:"categorySlug"`
	AverageRating float64 `db:"average_rating" json:"averageRating"`
	ReviewCount   int     `db:"review_count" json:"reviewCount"`
}

// ReviewStats summarises the approved reviews of one product
type ReviewStats struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
	// RatingDistribution[i] counts reviews with rating i+1
	RatingDistribution [5]int `json:"ratingDistribution"`
}

// VendorStats backs the vendor dashboard
type VendorStats struct {
	TotalProducts  int             `json:"totalProducts"`
	TotalOrders    int             `json:"totalOrders"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	PendingOrders  int             `json:"pendingOrders"`
	PendingPayouts decimal.Decimal `json:"pendingPayouts"`
}

// PlatformStats backs the admin dashboard counters
type PlatformStats struct {
	TotalUsers      int             `db:"total_users" json:"totalUsers"`
	TotalVendors    int             `db:"total_vendors" json:"totalVendors"`
	PendingVendors  int             `db:"pending_vendors" json:"pendingVendors"`
	TotalOrders     int             `db:"total_orders" json:"totalOrders"`
	TotalRevenue    decimal.Decimal `db:"total_revenue" json:"totalRevenue"`
	TotalProducts   int             `db:"total_products" json:"totalProducts"`
	ActiveProducts  int             `db:"active_products" json:"activeProducts"`
	DraftProducts   int             `db:"draft_products" json:"draftProducts"`
	PendingReviews  int             `db:"pending_reviews" json:"pendingReviews"`
	ApprovedReviews int             `db:"approved_reviews" json:"approvedReviews"`
	RejectedReviews int             `db:"rejected_reviews" json:"rejectedReviews"`
}

// PeriodTotals is the order count and paid revenue within a time window
type PeriodTotals struct {
	Orders  int             `db:"orders"`
	Revenue decimal.Decimal `db:"revenue"`
}

// TopVendor is an approved vendor ranked by lifetime sales
type TopVendor struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	BusinessName string          `db:"business_name" json:"businessName"`
	TotalSales   decimal.Decimal `db:"total_sales" json:"totalSales"`
	TotalOrders  int             `db:"total_orders" json:"totalOrders"`
}

// RecentOrder is an order row for the admin activity feed
type RecentOrder struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	OrderNumber   string          `db:"order_number" json:"orderNumber"`
	Status        OrderStatus     `db:"status" json:"status"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	Total         decimal.Decimal `db:"total" json:"total"`
	CustomerName  string          `db:"customer_name" json:"customerName"`
	CustomerEmail string          `db:"customer_email" json:"customerEmail"`
	ItemCount     int             `db:"item_count" json:"itemCount"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}
