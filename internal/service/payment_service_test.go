package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/paystack"
	"github.com/harvesthub/marketplace/pkg/errors"
)

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func chargeSuccess(t *testing.T, reference string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data": map[string]interface{}{
			"reference": reference,
			"status":    "success",
			"amount":    amount,
		},
	})
	require.NoError(t, err)
	return body
}

func TestVerifySignature(t *testing.T) {
	f := newFixture(t)
	svc := f.payments(nil)
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, svc.VerifySignature(body, sign(body)))
	assert.False(t, svc.VerifySignature(body, ""))
	assert.False(t, svc.VerifySignature(body, "zz-not-hex"))
	assert.False(t, svc.VerifySignature(append(body, ' '), sign(body)))
}

func TestHandleWebhook_ConfirmsOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 2)
	require.Equal(t, int64(2160), order.AmountMinor())

	body := chargeSuccess(t, order.PaymentReference, 2160)
	outcome, err := f.payments(nil).HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	assert.True(t, outcome.OrderFound)
	assert.True(t, outcome.Confirmed)
	assert.Empty(t, outcome.Oversold)

	paid, err := f.store.Repositories().Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, paid.Status)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	require.NotNil(t, paid.GatewayReference)
	assert.Equal(t, order.PaymentReference, *paid.GatewayReference)

	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 3, product.StockQuantity)
	assert.Equal(t, 2, product.Sales)

	payouts := f.store.Payouts(order.ID)
	require.Len(t, payouts, 1)
	assert.Equal(t, f.vendor.ID, payouts[0].VendorID)
	assert.True(t, payouts[0].Amount.Equal(decimal.RequireFromString("19.00")), "payout %s", payouts[0].Amount)
	assert.Equal(t, domain.PayoutStatusPending, payouts[0].Status)

	vendor, _ := f.store.Vendor(f.vendor.ID)
	assert.True(t, vendor.TotalSales.Equal(decimal.NewFromInt(20)), "total sales %s", vendor.TotalSales)
	assert.Equal(t, 1, vendor.TotalOrders)

	events := f.store.Events(order.ID, domain.EventPaymentConfirmed)
	require.Len(t, events, 1)
	assert.Equal(t, false, events[0].EventData["amount_mismatch"])
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)
	body := chargeSuccess(t, order.PaymentReference, order.AmountMinor())
	tampered := chargeSuccess(t, order.PaymentReference, 1)

	_, err := f.payments(nil).HandleWebhook(context.Background(), tampered, sign(body))

	var sigErr *errors.ErrInvalidSignature
	require.True(t, stderrors.As(err, &sigErr), "got %v", err)
	assert.Equal(t, "Invalid signature", sigErr.Error())

	unchanged, _ := f.store.Repositories().Order.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.PaymentStatusPending, unchanged.PaymentStatus)
	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 5, product.StockQuantity)
}

func TestHandleWebhook_IgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)
	svc := f.payments(nil)

	for _, payload := range []map[string]interface{}{
		{"event": "transfer.success", "data": map[string]interface{}{"reference": order.PaymentReference, "status": "success"}},
		{"event": "charge.success", "data": map[string]interface{}{"reference": order.PaymentReference, "status": "failed"}},
	} {
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		outcome, err := svc.HandleWebhook(context.Background(), body, sign(body))
		require.NoError(t, err)
		assert.False(t, outcome.Confirmed)
	}

	unchanged, _ := f.store.Repositories().Order.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.PaymentStatusPending, unchanged.PaymentStatus)
}

func TestHandleWebhook_MalformedBody(t *testing.T) {
	f := newFixture(t)
	body := []byte("{not json")

	_, err := f.payments(nil).HandleWebhook(context.Background(), body, sign(body))

	var verr *errors.ErrValidation
	assert.True(t, stderrors.As(err, &verr), "got %v", err)
}

func TestHandleWebhook_UnknownReference(t *testing.T) {
	f := newFixture(t)
	body := chargeSuccess(t, "MHH-0-NOPE0-0", 100)

	outcome, err := f.payments(nil).HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	assert.False(t, outcome.OrderFound)
	assert.False(t, outcome.Confirmed)
}

func TestHandleWebhook_ReplayIsNoOp(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 2)
	svc := f.payments(nil)
	body := chargeSuccess(t, order.PaymentReference, 2160)

	first, err := svc.HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	require.True(t, first.Confirmed)

	second, err := svc.HandleWebhook(context.Background(), body, sign(body))
	require.NoError(t, err)
	assert.True(t, second.OrderFound)
	assert.False(t, second.Confirmed)

	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 3, product.StockQuantity)
	assert.Len(t, f.store.Payouts(order.ID), 1)
	vendor, _ := f.store.Vendor(f.vendor.ID)
	assert.Equal(t, 1, vendor.TotalOrders)
}

func TestHandleWebhook_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 2)
	svc := f.payments(nil)
	body := chargeSuccess(t, order.PaymentReference, 2160)
	signature := sign(body)

	const deliveries = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.HandleWebhook(context.Background(), body, signature)
			if err != nil {
				t.Errorf("webhook: %v", err)
				return
			}
			if outcome.Confirmed {
				mu.Lock()
				confirmed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, confirmed)
	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 3, product.StockQuantity)
	assert.Equal(t, 2, product.Sales)
	assert.Len(t, f.store.Payouts(order.ID), 1)
	assert.Len(t, f.store.Events(order.ID, domain.EventPaymentConfirmed), 1)
}

func TestConfirmPayment_TwoVendors(t *testing.T) {
	f := newFixture(t)
	other := f.store.PutVendor(domain.Vendor{
		UserID:       uuid.New(),
		BusinessName: "Date Palm Co",
		IsActive:     true,
		TotalSales:   decimal.Zero,
	})
	dates := f.store.PutProduct(domain.Product{
		VendorID:      other.ID,
		CategoryID:    f.category.ID,
		Name:          "Dates",
		Price:         decimal.RequireFromString("5.50"),
		StockQuantity: 10,
	})

	res, err := f.checkout().PlaceOrder(context.Background(), f.caller(),
		cartFor(itemFor(f.product, 1), itemFor(dates, 2)), nil)
	require.NoError(t, err)

	outcome, err := f.payments(nil).ConfirmPayment(context.Background(), res.Reference, res.Amount)
	require.NoError(t, err)
	require.True(t, outcome.Confirmed)

	orderID := uuid.MustParse(res.OrderID)
	byVendor := make(map[uuid.UUID]decimal.Decimal)
	for _, p := range f.store.Payouts(orderID) {
		byVendor[p.VendorID] = p.Amount
	}
	require.Len(t, byVendor, 2)
	assert.True(t, byVendor[f.vendor.ID].Equal(decimal.RequireFromString("9.50")), "got %s", byVendor[f.vendor.ID])
	assert.True(t, byVendor[other.ID].Equal(decimal.RequireFromString("10.45")), "got %s", byVendor[other.ID])

	v, _ := f.store.Vendor(other.ID)
	assert.True(t, v.TotalSales.Equal(decimal.NewFromInt(11)), "got %s", v.TotalSales)
}

func TestConfirmPayment_Oversold(t *testing.T) {
	f := newFixture(t)
	first := f.placeOrder(t, 4)
	second := f.placeOrder(t, 3)
	svc := f.payments(nil)

	_, err := svc.ConfirmPayment(context.Background(), first.PaymentReference, first.AmountMinor())
	require.NoError(t, err)

	outcome, err := svc.ConfirmPayment(context.Background(), second.PaymentReference, second.AmountMinor())
	require.NoError(t, err)
	assert.True(t, outcome.Confirmed)
	assert.Equal(t, []string{f.product.ID.String()}, outcome.Oversold)

	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 0, product.StockQuantity)
	assert.Equal(t, 7, product.Sales)

	events := f.store.Events(second.ID, domain.EventOversold)
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].EventData["shortfall"])
}

func TestConfirmPayment_AmountMismatchIsRecorded(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)

	outcome, err := f.payments(nil).ConfirmPayment(context.Background(), order.PaymentReference, 1)
	require.NoError(t, err)
	assert.True(t, outcome.Confirmed)

	events := f.store.Events(order.ID, domain.EventPaymentConfirmed)
	require.Len(t, events, 1)
	assert.Equal(t, true, events[0].EventData["amount_mismatch"])
}

func TestConfirmPayment_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 2)
	svc := f.payments(nil)
	f.store.FailOn("Payout.CreateIfAbsent", stderrors.New("connection reset"))

	_, err := svc.ConfirmPayment(context.Background(), order.PaymentReference, 2160)
	require.Error(t, err)

	unchanged, _ := f.store.Repositories().Order.GetByID(context.Background(), order.ID)
	assert.Equal(t, domain.PaymentStatusPending, unchanged.PaymentStatus)
	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 5, product.StockQuantity)

	// the gateway retries and the second delivery applies everything
	f.store.FailOn("Payout.CreateIfAbsent", nil)
	outcome, err := svc.ConfirmPayment(context.Background(), order.PaymentReference, 2160)
	require.NoError(t, err)
	assert.True(t, outcome.Confirmed)
	product, _ = f.store.Product(f.product.ID)
	assert.Equal(t, 3, product.StockQuantity)
}

func TestVerifyReference(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)
	gateway := &stubGateway{tx: paystack.Transaction{Status: "success", Amount: order.AmountMinor()}}
	svc := f.payments(gateway)

	res, err := svc.VerifyReference(context.Background(), f.caller(), order.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, "success", res.GatewayStatus)
	assert.Equal(t, domain.PaymentStatusPaid, res.PaymentStatus)
	assert.Equal(t, domain.OrderStatusConfirmed, res.Status)

	// already paid: the gateway is not asked again
	res, err = svc.VerifyReference(context.Background(), f.caller(), order.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, res.PaymentStatus)
	assert.Equal(t, 1, gateway.calls)
}

func TestVerifyReference_PendingAtGateway(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)
	svc := f.payments(&stubGateway{tx: paystack.Transaction{Status: "abandoned"}})

	res, err := svc.VerifyReference(context.Background(), f.caller(), order.PaymentReference)
	require.NoError(t, err)
	assert.Equal(t, "abandoned", res.GatewayStatus)
	assert.Equal(t, domain.PaymentStatusPending, res.PaymentStatus)
}

func TestVerifyReference_OtherCustomer(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)
	gateway := &stubGateway{tx: paystack.Transaction{Status: "success"}}

	_, err := f.payments(gateway).VerifyReference(context.Background(), Customer{ID: uuid.NewString()}, order.PaymentReference)

	var forbidden *errors.ErrForbidden
	assert.True(t, stderrors.As(err, &forbidden), "got %v", err)
	assert.Zero(t, gateway.calls)
}

func TestVerifyReference_GatewayError(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1)

	_, err := f.payments(&stubGateway{err: stderrors.New("circuit open")}).
		VerifyReference(context.Background(), f.caller(), order.PaymentReference)
	assert.Error(t, err)
}

func TestHandleWebhook_CancelledOrderIsNotCredited(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 2)
	_, err := NewOrderService(f.store.Repositories(), zap.NewNop()).
		UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)

	svc := f.payments(nil)
	body := chargeSuccess(t, order.PaymentReference, 2160)
	for i := 0; i < 2; i++ {
		outcome, err := svc.HandleWebhook(context.Background(), body, sign(body))
		require.NoError(t, err)
		assert.True(t, outcome.OrderFound)
		assert.False(t, outcome.Confirmed)
		assert.True(t, outcome.PaidWhileCancelled)
	}

	stored, err := f.store.Repositories().Order.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
	assert.Equal(t, domain.PaymentStatusPending, stored.PaymentStatus)
	assert.Nil(t, stored.GatewayReference)

	product, _ := f.store.Product(f.product.ID)
	assert.Equal(t, 5, product.StockQuantity)
	assert.Equal(t, 0, product.Sales)
	assert.Empty(t, f.store.Payouts(order.ID))
	assert.Empty(t, f.store.Events(order.ID, domain.EventPaymentConfirmed))

	flagged := f.store.Events(order.ID, domain.EventPaymentOnCancelled)
	require.Len(t, flagged, 1, "replays must not duplicate the follow-up event")
	assert.Equal(t, order.PaymentReference, flagged[0].EventData["reference"])
	assert.Equal(t, int64(2160), flagged[0].EventData["gateway_amount"])
}
