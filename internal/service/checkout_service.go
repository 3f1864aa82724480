package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

// CheckoutOptions tunes order intake
type CheckoutOptions struct {
	OrderNumberPrefix string
	EnforceLivePrice  bool
	Now               func() time.Time
}

// CheckoutService turns a customer's cart into a PENDING order awaiting payment
type CheckoutService struct {
	repos  *repository.Repositories
	opts   CheckoutOptions
	logger *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, opts CheckoutOptions, logger *zap.Logger) *CheckoutService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &CheckoutService{
		repos:  repos,
		opts:   opts,
		logger: logger,
	}
}

// PlaceOrder validates the cart against live products and persists the order, its
// shipping address and items in one transaction. Stock is not touched until payment.
func (s *CheckoutService) PlaceOrder(ctx context.Context, customer Customer, req CheckoutRequest, idem *IdempotencyRecord) (*CheckoutResult, error) {
	customerID, err := uuid.Parse(customer.ID)
	if err != nil {
		return nil, &errors.ErrUnauthorized{}
	}

	// Validate request
	if err := validateCheckout(&req); err != nil {
		return nil, err
	}

	// Fetch live products; drafts and missing ids drop out of the count
	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = uuid.MustParse(item.ProductID)
	}

	products, err := s.repos.Product.ListActiveByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	if len(products) != len(req.Items) {
		return nil, &errors.ErrProductsUnavailable{Requested: len(req.Items), Found: len(products)}
	}

	byID := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Check stock and snapshot items
	items := make([]domain.OrderItem, 0, len(req.Items))
	for i, cartItem := range req.Items {
		product := byID[productIDs[i]]
		if product == nil || product.StockQuantity < cartItem.Quantity {
			e := &errors.ErrInsufficientStock{ProductID: cartItem.ProductID}
			if product != nil {
				e.ProductName = product.Name
			}
			return nil, e
		}

		if !cartItem.Price.Equal(product.Price) {
			if s.opts.EnforceLivePrice {
				return nil, &errors.ErrValidation{
					Message: "Price for " + product.Name + " has changed",
					Fields:  map[string]string{"items": "price does not match the current product price"},
				}
			}
			s.logger.Warn("Cart price differs from live product price",
				zap.String("product_id", product.ID.String()),
				zap.String("cart_price", cartItem.Price.String()),
				zap.String("live_price", product.Price.String()),
			)
		}

		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			VendorID:     product.VendorID,
			Quantity:     cartItem.Quantity,
			Price:        cartItem.Price,
			Total:        domain.LineTotal(cartItem.Price, cartItem.Quantity),
			ProductName:  product.Name,
			ProductImage: product.ImageURL,
		})
	}

	// Generate order number and payment reference
	now := s.opts.Now()
	orderNumber := domain.NewOrderNumber(s.opts.OrderNumberPrefix, now)
	reference := domain.NewPaymentReference(orderNumber, now)

	addr := req.ShippingAddress
	address := &domain.ShippingAddress{
		FirstName: addr.FirstName,
		LastName:  addr.LastName,
		Email:     addr.Email,
		Phone:     addr.Phone,
		Address:   addr.Address,
		City:      addr.City,
		State:     addr.State,
		ZipCode:   addr.ZipCode,
		Country:   addr.Country,
	}

	order := &domain.Order{
		OrderNumber:      orderNumber,
		CustomerID:       customerID,
		Status:           domain.OrderStatusPending,
		PaymentStatus:    domain.PaymentStatusPending,
		Subtotal:         req.Totals.Subtotal,
		Tax:              req.Totals.Tax,
		Shipping:         req.Totals.Shipping,
		Total:            req.Totals.Total,
		PaymentReference: reference,
		Items:            items,
	}

	err = s.repos.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if err := tx.ShippingAddress.Create(ctx, address); err != nil {
			return err
		}

		// Create order
		order.ShippingAddressID = address.ID
		if err := tx.Order.Create(ctx, order); err != nil {
			return err
		}

		// Record order created event
		event := &domain.OrderEvent{
			OrderID:   order.ID,
			EventType: domain.EventOrderCreated,
			EventData: map[string]interface{}{
				"order_number":   order.OrderNumber,
				"customer_id":    customerID.String(),
				"total":          order.Total.StringFixed(2),
				"item_count":     len(order.Items),
				"reference":      reference,
				"payment_status": order.PaymentStatus,
			},
		}
		if err := tx.OrderEvent.Create(ctx, event); err != nil {
			return err
		}

		// Store idempotency key if provided
		if idem != nil && idem.Key != "" {
			return tx.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
				Key:         idem.Key,
				CustomerID:  customerID,
				OrderID:     order.ID,
				RequestHash: idem.RequestHash,
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to persist order", zap.Error(err), zap.String("order_number", orderNumber))
		return nil, err
	}

	order.ShippingAddress = address
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("item_count", len(order.Items)),
	)

	return checkoutResult(order), nil
}

// ResultForOrder rebuilds the checkout payload of an existing order owned by the customer
func (s *CheckoutService) ResultForOrder(ctx context.Context, customer Customer, orderID uuid.UUID) (*CheckoutResult, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID.String() != customer.ID {
		return nil, &errors.ErrConflict{Message: "idempotency key belongs to another customer"}
	}
	return checkoutResult(order), nil
}

func checkoutResult(order *domain.Order) *CheckoutResult {
	res := &CheckoutResult{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.AmountMinor(),
		Reference:   order.PaymentReference,
	}
	if a := order.ShippingAddress; a != nil {
		res.Email = a.Email
		res.CustomerName = a.FullName()
		res.Phone = a.Phone
	}
	return res
}

// maxAmount is the largest value a NUMERIC(12,2) money column holds
var maxAmount = decimal.RequireFromString("9999999999.99")

func validateCheckout(req *CheckoutRequest) error {
	if len(req.Items) == 0 {
		return &errors.ErrValidation{Message: "Cart items are required"}
	}
	if req.ShippingAddress == nil || req.Totals == nil {
		return &errors.ErrValidation{Message: "Shipping address and totals are required"}
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	fields := make(map[string]string)
	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if item.Price.IsNegative() {
			fields["items.price"] = "price must be at least 0"
		}
		if seen[item.ProductID] {
			fields["items.productId"] = "each product may appear only once; combine duplicate lines into one quantity"
		}
		seen[item.ProductID] = true
		if item.Price.GreaterThan(maxAmount) || domain.LineTotal(item.Price, item.Quantity).GreaterThan(maxAmount) {
			fields["items.price"] = "line total exceeds " + maxAmount.String()
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"totals.subtotal": req.Totals.Subtotal,
		"totals.tax":      req.Totals.Tax,
		"totals.shipping": req.Totals.Shipping,
		"totals.total":    req.Totals.Total,
	} {
		if v.IsNegative() {
			fields[name] = name + " must be at least 0"
		}
		if v.GreaterThan(maxAmount) {
			fields[name] = name + " exceeds " + maxAmount.String()
		}
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "validation failed", Fields: fields}
	}
	return nil
}
