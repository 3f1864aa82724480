package domain

// OrderStatus represents the fulfilment status of a customer order
type OrderStatus string

const (
	// PENDING - Order placed, awaiting payment
	OrderStatusPending OrderStatus = "PENDING"
	// CONFIRMED - Payment received
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// PROCESSING - Vendors are preparing the items
	OrderStatusProcessing OrderStatus = "PROCESSING"
	// SHIPPED - Handed to the carrier
	OrderStatusShipped OrderStatus = "SHIPPED"
	// DELIVERED - Received by the customer
	OrderStatusDelivered OrderStatus = "DELIVERED"
	// CANCELLED - Order canceled before shipping
	OrderStatusCancelled OrderStatus = "CANCELLED"
	// REFUNDED - Payment returned
	OrderStatusRefunded OrderStatus = "REFUNDED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
		OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid.
// PENDING -> CONFIRMED is owned by payment confirmation and is not an administrative move.
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusCancelled
	case OrderStatusConfirmed:
		return newStatus == OrderStatusProcessing ||
			newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled ||
			newStatus == OrderStatusRefunded
	case OrderStatusProcessing:
		return newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled ||
			newStatus == OrderStatusRefunded
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered ||
			newStatus == OrderStatusRefunded
	case OrderStatusDelivered:
		return newStatus == OrderStatusRefunded
	case OrderStatusCancelled, OrderStatusRefunded:
		return false // Terminal states
	default:
		return false
	}
}

// PaymentStatus represents the payment lifecycle of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// UserRole is the role carried in the session token
type UserRole string

const (
	UserRoleCustomer UserRole = "CUSTOMER"
	UserRoleVendor   UserRole = "VENDOR"
	UserRoleAdmin    UserRole = "ADMIN"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleCustomer || r == UserRoleVendor || r == UserRoleAdmin
}

// VendorStatus is the moderation state of a vendor application
type VendorStatus string

const (
	VendorStatusPending   VendorStatus = "PENDING"
	VendorStatusApproved  VendorStatus = "APPROVED"
	VendorStatusRejected  VendorStatus = "REJECTED"
	VendorStatusSuspended VendorStatus = "SUSPENDED"
)

func (s VendorStatus) IsValid() bool {
	switch s {
	case VendorStatusPending, VendorStatusApproved, VendorStatusRejected, VendorStatusSuspended:
		return true
	default:
		return false
	}
}

// ProductStatus controls marketplace visibility
type ProductStatus string

const (
	ProductStatusDraft      ProductStatus = "DRAFT"
	ProductStatusActive     ProductStatus = "ACTIVE"
	ProductStatusInactive   ProductStatus = "INACTIVE"
	ProductStatusOutOfStock ProductStatus = "OUT_OF_STOCK"
)

func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusInactive, ProductStatusOutOfStock:
		return true
	default:
		return false
	}
}

// ReviewStatus is the moderation state of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "PENDING"
	ReviewStatusApproved ReviewStatus = "APPROVED"
	ReviewStatusRejected ReviewStatus = "REJECTED"
)

func (s ReviewStatus) IsValid() bool {
	return s == ReviewStatusPending || s == ReviewStatusApproved || s == ReviewStatusRejected
}

// PayoutStatus tracks whether a vendor payout has been settled
type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "PENDING"
	PayoutStatusPaid    PayoutStatus = "PAID"
)

// Order event types recorded in order_events
const (
	EventOrderCreated       = "order_created"
	EventPaymentConfirmed   = "payment_confirmed"
	EventPaymentOnCancelled = "payment_on_cancelled"
	EventOversold           = "oversold"
	EventStatusChange       = "status_change"
)
