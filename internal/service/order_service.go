package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// OrderService exposes orders to their customers and drives administrative status changes
type OrderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:  repos,
		logger: logger,
	}
}

// ListForCustomer returns the customer's orders, newest first
func (s *OrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}
	if offset < 0 {
		offset = 0
	}
	orders, err := s.repos.Order.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// Get returns an order visible to its owner or an admin
func (s *OrderService) Get(ctx context.Context, callerID uuid.UUID, role domain.UserRole, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != callerID && role != domain.UserRoleAdmin {
		return nil, &errors.ErrForbidden{Message: "You do not have access to this order"}
	}
	return order, nil
}

// UpdateStatus moves an order along the status machine (idempotent: same status returns success)
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid order status"}
	}

	var updated *domain.Order
	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		order, err := tx.Order.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if order.Status == status {
			updated = order
			return nil
		}

		if !order.Status.CanTransitionTo(status) {
			return &errors.ErrInvalidStateTransition{
				From: order.Status,
				To:   status,
			}
		}

		// Only move the order from the status read above; a payment confirmation
		// committed in between leaves zero rows changed
		changed, err := tx.Order.UpdateStatus(ctx, orderID, order.Status, status)
		if err != nil {
			return err
		}
		if !changed {
			return &errors.ErrInvalidStateTransition{
				From: order.Status,
				To:   status,
			}
		}

		event := &domain.OrderEvent{
			OrderID:   orderID,
			EventType: domain.EventStatusChange,
			EventData: map[string]interface{}{
				"from": order.Status,
				"to":   status,
			},
		}
		if err := tx.OrderEvent.Create(ctx, event); err != nil {
			return err
		}

		updated, err = tx.Order.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(status)),
	)
	return updated, nil
}
