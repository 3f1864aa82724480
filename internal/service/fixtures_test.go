package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/paystack"
	"github.com/harvesthub/marketplace/internal/repository/memory"
)

type fixture struct {
	store    *memory.Store
	customer domain.User
	owner    domain.User
	vendor   domain.Vendor
	category domain.Category
	product  domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()

	owner := store.PutUser(domain.User{Email: "seller@example.com", Name: "Seller", Role: domain.UserRoleVendor})
	vendor := store.PutVendor(domain.Vendor{
		UserID:       owner.ID,
		BusinessName: "Olive Grove",
		BusinessType: "Farm",
		Status:       domain.VendorStatusApproved,
		IsActive:     true,
		TotalSales:   decimal.Zero,
	})
	category := store.PutCategory(domain.Category{Name: "Pantry", IsActive: true})
	product := store.PutProduct(domain.Product{
		VendorID:      vendor.ID,
		CategoryID:    category.ID,
		Name:          "Olive Oil",
		Price:         decimal.NewFromInt(10),
		StockQuantity: 5,
	})

	return &fixture{
		store:    store,
		customer: store.PutUser(domain.User{Email: "buyer@example.com", Name: "Buyer"}),
		owner:    owner,
		vendor:   vendor,
		category: category,
		product:  product,
	}
}

func (f *fixture) caller() Customer {
	return Customer{ID: f.customer.ID.String(), Email: f.customer.Email}
}

func (f *fixture) checkout() *CheckoutService {
	return NewCheckoutService(f.store.Repositories(), CheckoutOptions{OrderNumberPrefix: "MHH"}, zap.NewNop())
}

func (f *fixture) payments(gateway paystack.Gateway) *PaymentService {
	return NewPaymentService(f.store.Repositories(), testSecret, domain.DefaultCommissionRate, gateway, nil, zap.NewNop())
}

const testSecret = "sk_test_secret"

func validAddress() *ShippingAddressInput {
	return &ShippingAddressInput{
		FirstName: "Ada",
		LastName:  "Obi",
		Email:     "ada@example.com",
		Phone:     "+2348000000000",
		Address:   "1 Marina Road",
		City:      "Lagos",
		State:     "LA",
		ZipCode:   "100001",
		Country:   "NG",
	}
}

func cartFor(items ...CheckoutItem) CheckoutRequest {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(domain.LineTotal(it.Price, it.Quantity))
	}
	tax := subtotal.Mul(decimal.RequireFromString("0.08")).Round(2)
	return CheckoutRequest{
		Items:           items,
		ShippingAddress: validAddress(),
		Totals: &CheckoutTotals{
			Subtotal: subtotal,
			Tax:      tax,
			Shipping: decimal.Zero,
			Total:    subtotal.Add(tax),
		},
	}
}

func itemFor(p domain.Product, qty int) CheckoutItem {
	return CheckoutItem{ProductID: p.ID.String(), Quantity: qty, Price: p.Price}
}

// placeOrder checks out qty units of the fixture product and returns the stored order
func (f *fixture) placeOrder(t *testing.T, qty int) *domain.Order {
	t.Helper()
	res, err := f.checkout().PlaceOrder(context.Background(), f.caller(), cartFor(itemFor(f.product, qty)), nil)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	order, err := f.store.Repositories().Order.GetByID(context.Background(), uuid.MustParse(res.OrderID))
	if err != nil {
		t.Fatalf("load order: %v", err)
	}
	return order
}

type stubGateway struct {
	tx    paystack.Transaction
	err   error
	calls int
}

func (g *stubGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	tx := g.tx
	tx.Reference = reference
	return &tx, nil
}
