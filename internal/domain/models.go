package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a marketplace account (customer, vendor owner or admin)
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	IsVerified   bool      `db:"is_verified" json:"isVerified"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Vendor is a seller storefront owned by a user
type Vendor struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	UserID            uuid.UUID       `db:"user_id" json:"userId"`
	BusinessName      string          `db:"business_name" json:"businessName"`
	BusinessType      string          `db:"business_type" json:"businessType"`
	Description       string          `db:"description" json:"description"`
	BusinessPhone     *string         `db:"business_phone" json:"businessPhone,omitempty"`
	BusinessEmail     *string         `db:"business_email" json:"businessEmail,omitempty"`
	Website           *string         `db:"website" json:"website,omitempty"`
	ChurchAffiliation *string         `db:"church_affiliation" json:"churchAffiliation,omitempty"`
	FaithStatement    *string         `db:"faith_statement" json:"faithStatement,omitempty"`
	Status            VendorStatus    `db:"status" json:"status"`
	IsActive          bool            `db:"is_active" json:"isActive"`
	TotalSales        decimal.Decimal `db:"total_sales" json:"totalSales"`
	TotalOrders       int             `db:"total_orders" json:"totalOrders"`
	AverageRating     float64         `db:"average_rating" json:"averageRating"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

// CanSell reports whether the vendor may list products
func (v *Vendor) CanSell() bool {
	return v.Status == VendorStatusApproved && v.IsActive
}

// Category groups products in the marketplace
type Category struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Slug         string    `db:"slug" json:"slug"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Image        *string   `db:"image" json:"image,omitempty"`
	IsActive     bool      `db:"is_active" json:"-"`
	ProductCount int       `db:"product_count" json:"productCount"`
}

// Product is a vendor listing
type Product struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	VendorID      uuid.UUID        `db:"vendor_id" json:"vendorId"`
	CategoryID    uuid.UUID        `db:"category_id" json:"categoryId"`
	Name          string           `db:"name" json:"name"`
	Slug          string           `db:"slug" json:"slug"`
	Description   *string          `db:"description" json:"description,omitempty"`
	ShortDesc     *string          `db:"short_desc" json:"shortDesc,omitempty"`
	Price         decimal.Decimal  `db:"price" json:"price"`
	ComparePrice  *decimal.Decimal `db:"compare_price" json:"comparePrice,omitempty"`
	StockQuantity int              `db:"stock_quantity" json:"stockQuantity"`
	Sales         int              `db:"sales" json:"sales"`
	SKU           *string          `db:"sku" json:"sku,omitempty"`
	Tags          string           `db:"tags" json:"tags"`
	IsDigital     bool             `db:"is_digital" json:"isDigital"`
	Status        ProductStatus    `db:"status" json:"status"`
	ImageURL      *string          `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updatedAt"`
}

// ShippingAddress is attached to exactly one order and never edited
type ShippingAddress struct {
	ID        uuid.UUID `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	ZipCode   string    `db:"zip_code" json:"zipCode"`
	Country   string    `db:"country" json:"country"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// FullName joins first and last name the way the gateway expects it
func (a *ShippingAddress) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Order is a customer purchase spanning one or more vendors
type Order struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	OrderNumber       string           `db:"order_number" json:"orderNumber"`
	CustomerID        uuid.UUID        `db:"customer_id" json:"customerId"`
	Status            OrderStatus      `db:"status" json:"status"`
	PaymentStatus     PaymentStatus    `db:"payment_status" json:"paymentStatus"`
	Subtotal          decimal.Decimal  `db:"subtotal" json:"subtotal"`
	Tax               decimal.Decimal  `db:"tax" json:"tax"`
	Shipping          decimal.Decimal  `db:"shipping" json:"shipping"`
	Total             decimal.Decimal  `db:"total" json:"total"`
	PaymentReference  string           `db:"payment_reference" json:"paymentReference"`
	GatewayReference  *string          `db:"gateway_reference" json:"gatewayReference,omitempty"`
	ShippingAddressID uuid.UUID        `db:"shipping_address_id" json:"shippingAddressId"`
	ShippingAddress   *ShippingAddress `db:"-" json:"shippingAddress,omitempty"`
	Items             []OrderItem      `db:"-" json:"items"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updatedAt"`
}

// AmountMinor converts the order total into gateway minor units (kobo/cents)
func (o *Order) AmountMinor() int64 {
	return ToMinorUnits(o.Total)
}

// OrderItem is a snapshot of one product line at purchase time
type OrderItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	OrderID      uuid.UUID       `db:"order_id" json:"orderId"`
	ProductID    uuid.UUID       `db:"product_id" json:"productId"`
	VendorID     uuid.UUID       `db:"vendor_id" json:"vendorId"`
	Quantity     int             `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Total        decimal.Decimal `db:"total" json:"total"`
	ProductName  string          `db:"product_name" json:"productName"`
	ProductImage *string         `db:"product_image" json:"productImage,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// VendorPayout is a vendor's share of one order after commission
type VendorPayout struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	VendorID   uuid.UUID       `db:"vendor_id" json:"vendorId"`
	OrderID    uuid.UUID       `db:"order_id" json:"orderId"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Status     PayoutStatus    `db:"status" json:"status"`
	PayoutDate *time.Time      `db:"payout_date" json:"payoutDate"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// Review is a customer's rating of a product, visible once approved
type Review struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	UserID     uuid.UUID    `db:"user_id" json:"userId"`
	ProductID  uuid.UUID    `db:"product_id" json:"productId"`
	Rating     int          `db:"rating" json:"rating"`
	Comment    *string      `db:"comment" json:"comment,omitempty"`
	IsVerified bool         `db:"is_verified" json:"isVerified"`
	Status     ReviewStatus `db:"status" json:"status"`
	UserName   string       `db:"user_name" json:"userName,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updatedAt"`
}

// IdempotencyKey stores idempotency information for checkout retries
type IdempotencyKey struct {
	Key         string    `db:"key"`
	CustomerID  uuid.UUID `db:"customer_id"`
	OrderID     uuid.UUID `db:"order_id"`
	RequestHash string    `db:"request_hash"`
	CreatedAt   time.Time `db:"created_at"`
}

// OrderEvent represents an audit event for an order; it is relayed to the
// message bus once and then marked published
type OrderEvent struct {
	ID          uuid.UUID              `db:"id"`
	OrderID     uuid.UUID              `db:"order_id"`
	EventType   string                 `db:"event_type"`
	EventData   map[string]interface{} `db:"-"`
	CreatedAt   time.Time              `db:"created_at"`
	PublishedAt *time.Time             `db:"published_at"`
}
