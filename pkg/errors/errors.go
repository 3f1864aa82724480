package errors

import (
	"fmt"

	"github.com/harvesthub/marketplace/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication required"
}

// ErrForbidden is returned when the caller is authenticated but lacks the role or ownership
type ErrForbidden struct {
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "access denied"
}

// ErrConflict is returned when there's a conflict (e.g., idempotency)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.OrderStatus
	To   domain.OrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrProductsUnavailable is returned by checkout when a cart references a product
// that no longer exists or is not ACTIVE
type ErrProductsUnavailable struct {
	Requested int
	Found     int
}

func (e *ErrProductsUnavailable) Error() string {
	return "Some products are no longer available"
}

// ErrInsufficientStock is returned by checkout when a cart quantity exceeds live stock
type ErrInsufficientStock struct {
	ProductID   string
	ProductName string
}

func (e *ErrInsufficientStock) Error() string {
	name := e.ProductName
	if name == "" {
		name = "product"
	}
	return fmt.Sprintf("Insufficient stock for %s", name)
}

// ErrInvalidSignature is returned when a payment webhook signature does not match the body
type ErrInvalidSignature struct{}

func (e *ErrInvalidSignature) Error() string {
	return "Invalid signature"
}
