package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/paystack"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

const eventChargeSuccess = "charge.success"

// ProductCacheInvalidator drops cached product entries after their stock changed
type ProductCacheInvalidator interface {
	InvalidateProducts(ctx context.Context, ids []uuid.UUID)
}

// PaymentService reconciles gateway notifications with PENDING orders
type PaymentService struct {
	repos          *repository.Repositories
	secretKey      []byte
	commissionRate decimal.Decimal
	gateway        paystack.Gateway
	cache          ProductCacheInvalidator
	logger         *zap.Logger
}

// NewPaymentService creates a payment service. gateway and cache may be nil.
func NewPaymentService(
	repos *repository.Repositories,
	secretKey string,
	commissionRate decimal.Decimal,
	gateway paystack.Gateway,
	cache ProductCacheInvalidator,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		repos:          repos,
		secretKey:      []byte(secretKey),
		commissionRate: commissionRate,
		gateway:        gateway,
		cache:          cache,
		logger:         logger,
	}
}

// VerifySignature checks the hex HMAC-SHA512 of the raw body against the header value
func (s *PaymentService) VerifySignature(body []byte, signature string) bool {
	if signature == "" || len(s.secretKey) == 0 {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, s.secretKey)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// HandleWebhook authenticates and applies one gateway notification
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*PaymentOutcome, error) {
	if !s.VerifySignature(body, signature) {
		s.logger.Warn("Rejected webhook with invalid signature", zap.Int("body_size", len(body)))
		return nil, &errors.ErrInvalidSignature{}
	}

	var event PaystackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, &errors.ErrValidation{Message: "malformed webhook payload"}
	}

	if event.Event != eventChargeSuccess || event.Data.Status != "success" {
		s.logger.Info("Ignoring webhook event",
			zap.String("event", event.Event),
			zap.String("status", event.Data.Status),
		)
		return &PaymentOutcome{}, nil
	}
	if event.Data.Reference == "" {
		return nil, &errors.ErrValidation{Message: "webhook reference is required"}
	}

	return s.ConfirmPayment(ctx, event.Data.Reference, event.Data.Amount)
}

// ConfirmPayment marks the order PAID exactly once and applies its side effects:
// stock and sales, vendor payouts and vendor totals. Replays are no-ops.
func (s *PaymentService) ConfirmPayment(ctx context.Context, reference string, gatewayAmount int64) (*PaymentOutcome, error) {
	outcome := &PaymentOutcome{}
	var touched []uuid.UUID

	err := s.repos.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		*outcome = PaymentOutcome{}
		touched = touched[:0]

		// Find order by stored reference
		order, err := tx.Order.GetByPaymentReference(ctx, reference)
		if err != nil {
			var nf *errors.ErrNotFound
			if stderrors.As(err, &nf) {
				return nil
			}
			return fmt.Errorf("lookup order by reference: %w", err)
		}
		outcome.OrderFound = true

		// Claim the order; only a PENDING order with a PENDING payment can be won
		won, err := tx.Order.MarkPaid(ctx, order.ID, reference)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if !won {
			return s.flagPaymentOnCancelled(ctx, tx, order.ID, reference, gatewayAmount, outcome)
		}

		// Reserve stock, never below zero
		for _, item := range order.Items {
			previous, err := tx.Product.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
			}
			touched = append(touched, item.ProductID)
			if previous >= item.Quantity {
				continue
			}

			outcome.Oversold = append(outcome.Oversold, item.ProductID.String())
			if err := tx.OrderEvent.Create(ctx, &domain.OrderEvent{
				OrderID:   order.ID,
				EventType: domain.EventOversold,
				EventData: map[string]interface{}{
					"product_id":   item.ProductID.String(),
					"product_name": item.ProductName,
					"requested":    item.Quantity,
					"available":    previous,
					"shortfall":    item.Quantity - previous,
				},
			}); err != nil {
				return fmt.Errorf("record oversold event: %w", err)
			}
		}

		// Create vendor payouts
		for _, share := range domain.ComputeVendorShares(order.Items, s.commissionRate) {
			created, err := tx.Payout.CreateIfAbsent(ctx, &domain.VendorPayout{
				VendorID: share.VendorID,
				OrderID:  order.ID,
				Amount:   share.Payout,
				Status:   domain.PayoutStatusPending,
			})
			if err != nil {
				return fmt.Errorf("create vendor payout: %w", err)
			}
			if !created {
				continue
			}
			// Credit vendor totals only for a new payout
			if err := tx.Vendor.AddSales(ctx, share.VendorID, share.Gross); err != nil {
				return fmt.Errorf("credit vendor sales: %w", err)
			}
		}

		// Record confirmation event
		expected := order.AmountMinor()
		if err := tx.OrderEvent.Create(ctx, &domain.OrderEvent{
			OrderID:   order.ID,
			EventType: domain.EventPaymentConfirmed,
			EventData: map[string]interface{}{
				"reference":       reference,
				"gateway_amount":  gatewayAmount,
				"expected_amount": expected,
				"amount_mismatch": gatewayAmount != expected,
			},
		}); err != nil {
			return fmt.Errorf("record payment event: %w", err)
		}

		if gatewayAmount != expected {
			s.logger.Warn("Gateway amount differs from order total",
				zap.String("order_number", order.OrderNumber),
				zap.Int64("gateway_amount", gatewayAmount),
				zap.Int64("expected_amount", expected),
			)
		}
		outcome.Confirmed = true
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to confirm payment", zap.Error(err), zap.String("reference", reference))
		return nil, err
	}

	switch {
	case !outcome.OrderFound:
		s.logger.Warn("No order for payment reference", zap.String("reference", reference))
	case outcome.PaidWhileCancelled:
		s.logger.Warn("Payment received for cancelled order", zap.String("reference", reference))
	case outcome.Confirmed:
		s.logger.Info("Order payment confirmed",
			zap.String("reference", reference),
			zap.Strings("oversold_products", outcome.Oversold),
		)
		if s.cache != nil && len(touched) > 0 {
			s.cache.InvalidateProducts(ctx, touched)
		}
	default:
		s.logger.Info("Payment already applied", zap.String("reference", reference))
	}

	return outcome, nil
}

// flagPaymentOnCancelled records a payment_on_cancelled event once per reference
// when the lost claim was against a cancelled, unpaid order. Stock and payouts stay untouched.
func (s *PaymentService) flagPaymentOnCancelled(
	ctx context.Context,
	tx *repository.Repositories,
	orderID uuid.UUID,
	reference string,
	gatewayAmount int64,
	outcome *PaymentOutcome,
) error {
	current, err := tx.Order.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("reload order: %w", err)
	}
	if current.Status != domain.OrderStatusCancelled || current.PaymentStatus != domain.PaymentStatusPending {
		return nil
	}
	outcome.PaidWhileCancelled = true

	events, err := tx.OrderEvent.GetByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list order events: %w", err)
	}
	for _, e := range events {
		if e.EventType == domain.EventPaymentOnCancelled && e.EventData["reference"] == reference {
			return nil
		}
	}

	if err := tx.OrderEvent.Create(ctx, &domain.OrderEvent{
		OrderID:   orderID,
		EventType: domain.EventPaymentOnCancelled,
		EventData: map[string]interface{}{
			"reference":      reference,
			"gateway_amount": gatewayAmount,
		},
	}); err != nil {
		return fmt.Errorf("record payment on cancelled order: %w", err)
	}
	return nil
}

// VerifyReference asks the gateway about a reference owned by the customer and
// confirms the order when the gateway reports success
func (s *PaymentService) VerifyReference(ctx context.Context, customer Customer, reference string) (*VerifyResult, error) {
	order, err := s.repos.Order.GetByPaymentReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if order.CustomerID.String() != customer.ID {
		return nil, &errors.ErrForbidden{Message: "order belongs to another customer"}
	}

	gatewayStatus := ""
	if order.PaymentStatus == domain.PaymentStatusPending && s.gateway != nil {
		tx, err := s.gateway.VerifyTransaction(ctx, reference)
		if err != nil {
			return nil, fmt.Errorf("verify transaction: %w", err)
		}
		gatewayStatus = tx.Status
		if tx.Succeeded() {
			if _, err := s.ConfirmPayment(ctx, reference, tx.Amount); err != nil {
				return nil, err
			}
			if order, err = s.repos.Order.GetByID(ctx, order.ID); err != nil {
				return nil, err
			}
		}
	}

	return &VerifyResult{
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		Reference:     reference,
		GatewayStatus: gatewayStatus,
		PaymentStatus: order.PaymentStatus,
		Status:        order.Status,
	}, nil
}
