package api

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/auth"
	"github.com/harvesthub/marketplace/internal/config"
	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository/memory"
	"github.com/harvesthub/marketplace/internal/service"
)

const webhookSecret = "sk_test_webhook"

type testServer struct {
	router   *gin.Engine
	store    *memory.Store
	tokens   *auth.TokenManager
	customer domain.User
	admin    domain.User
	product  domain.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := memory.NewStore()
	repos := store.Repositories()
	tokens := auth.NewTokenManager("jwt-secret", time.Hour)

	owner := store.PutUser(domain.User{Email: "seller@example.com", Name: "Seller", Role: domain.UserRoleVendor})
	vendor := store.PutVendor(domain.Vendor{UserID: owner.ID, BusinessName: "Olive Grove", IsActive: true, TotalSales: decimal.Zero})
	category := store.PutCategory(domain.Category{Name: "Pantry", IsActive: true})
	product := store.PutProduct(domain.Product{
		VendorID:      vendor.ID,
		CategoryID:    category.ID,
		Name:          "Olive Oil",
		Price:         decimal.NewFromInt(10),
		StockQuantity: 5,
	})

	cfg := &config.Config{
		Environment: "test",
		Auth:        config.AuthConfig{LoginRatePerMinute: 3},
	}
	router := NewRouter(cfg, Dependencies{
		Repos:    repos,
		Tokens:   tokens,
		Auth:     service.NewAuthService(repos, tokens, logger),
		Catalog:  service.NewCatalogService(repos, logger),
		Checkout: service.NewCheckoutService(repos, service.CheckoutOptions{}, logger),
		Payments: service.NewPaymentService(repos, webhookSecret, domain.DefaultCommissionRate, nil, nil, logger),
		Orders:   service.NewOrderService(repos, logger),
		Reviews:  service.NewReviewService(repos, logger),
		Vendors:  service.NewVendorService(repos, logger),
		Admin:    service.NewAdminService(repos, logger),
	}, logger)

	return &testServer{
		router:   router,
		store:    store,
		tokens:   tokens,
		customer: store.PutUser(domain.User{Email: "buyer@example.com", Name: "Buyer"}),
		admin:    store.PutUser(domain.User{Email: "admin@example.com", Name: "Admin", Role: domain.UserRoleAdmin}),
		product:  product,
	}
}

func (s *testServer) token(t *testing.T, u domain.User) string {
	t.Helper()
	token, err := s.tokens.Issue(&u)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case []byte:
		buf.Write(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (s *testServer) cart(qty int) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": s.product.ID.String(), "quantity": qty, "price": 10, "vendorId": s.product.VendorID.String()},
		},
		"shippingAddress": map[string]interface{}{
			"firstName": "Ada", "lastName": "Obi", "email": "ada@example.com", "phone": "+2348000000000",
			"address": "1 Marina Road", "city": "Lagos", "state": "LA", "zipCode": "100001", "country": "NG",
		},
		"totals": map[string]interface{}{"subtotal": 20, "tax": 1.6, "shipping": 0, "total": 21.6},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func signBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCheckout_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/api/checkout", s.cart(1), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())
}

func TestCheckout_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.customer)

	w := s.do(t, http.MethodPost, "/api/checkout", map[string]interface{}{"items": []interface{}{}}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/checkout", []byte("{broken"), bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/checkout", s.cart(9), bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Insufficient stock for Olive Oil"}`, w.Body.String())

	cart := s.cart(1)
	cart["items"].([]map[string]interface{})[0]["productId"] = uuid.NewString()
	w = s.do(t, http.MethodPost, "/api/checkout", cart, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Some products are no longer available"}`, w.Body.String())
}

func TestCheckoutThenWebhook(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.customer)

	w := s.do(t, http.MethodPost, "/api/checkout", s.cart(2), bearer(token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var placed service.CheckoutResult
	decode(t, w, &placed)
	assert.Equal(t, int64(2160), placed.Amount)
	assert.Equal(t, "Ada Obi", placed.CustomerName)
	assert.Regexp(t, `^MHH-\d+-[0-9A-Z]{5}$`, placed.OrderNumber)

	body, err := json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data":  map[string]interface{}{"reference": placed.Reference, "status": "success", "amount": 2160},
	})
	require.NoError(t, err)

	w = s.do(t, http.MethodPost, "/api/paystack/webhook", body, map[string]string{"x-paystack-signature": "deadbeef"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid signature"}`, w.Body.String())

	for i := 0; i < 2; i++ {
		w = s.do(t, http.MethodPost, "/api/paystack/webhook", body, map[string]string{"x-paystack-signature": signBody(body)})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	}

	p, _ := s.store.Product(s.product.ID)
	assert.Equal(t, 3, p.StockQuantity)

	w = s.do(t, http.MethodGet, "/api/orders/"+placed.OrderID, nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	var order domain.Order
	decode(t, w, &order)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)

	w = s.do(t, http.MethodGet, "/api/orders/"+placed.OrderID, nil, bearer(s.token(t, domain.User{ID: uuid.New(), Role: domain.UserRoleCustomer})))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/orders", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Orders []domain.Order `json:"orders"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Orders, 1)

	w = s.do(t, http.MethodPatch, "/api/admin/orders/"+placed.OrderID+"/status",
		map[string]string{"status": "DELIVERED"}, bearer(s.token(t, s.admin)))
	assert.Equal(t, http.StatusBadRequest, w.Code, "CONFIRMED cannot jump to DELIVERED")

	w = s.do(t, http.MethodPatch, "/api/admin/orders/"+placed.OrderID+"/status",
		map[string]string{"status": "SHIPPED"}, bearer(s.token(t, s.admin)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_IgnoredEventsAreAcknowledged(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{"event":"subscription.create","data":{}}`)

	w := s.do(t, http.MethodPost, "/api/paystack/webhook", body, map[string]string{"x-paystack-signature": signBody(body)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

func TestCheckout_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.customer)
	headers := bearer(token)
	headers["Idempotency-Key"] = "cart-42"

	first := s.do(t, http.MethodPost, "/api/checkout", s.cart(1), headers)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	replay := s.do(t, http.MethodPost, "/api/checkout", s.cart(1), headers)
	require.Equal(t, http.StatusOK, replay.Code, replay.Body.String())
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	orders, _ := s.store.Counts()
	assert.Equal(t, 1, orders)

	changed := s.do(t, http.MethodPost, "/api/checkout", s.cart(2), headers)
	assert.Equal(t, http.StatusConflict, changed.Code)
}

func TestRoleGuardedRoutes(t *testing.T) {
	s := newTestServer(t)
	customer := bearer(s.token(t, s.customer))
	admin := bearer(s.token(t, s.admin))

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/admin/stats", nil, customer).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/vendor/dashboard", nil, customer).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/stats", nil, admin).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/admin/analytics", nil, admin).Code)

	apply := s.do(t, http.MethodPost, "/api/vendor/apply", map[string]string{
		"businessName": "Sunrise Bakery",
		"businessType": "Bakery",
		"description":  "Bread",
	}, customer)
	require.Equal(t, http.StatusCreated, apply.Code, apply.Body.String())
	var vendor domain.Vendor
	decode(t, apply, &vendor)

	w := s.do(t, http.MethodGet, "/api/admin/vendors?status=PENDING", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Sunrise Bakery")

	w = s.do(t, http.MethodPatch, "/api/admin/vendors/"+vendor.ID.String()+"/status", map[string]string{"status": "APPROVED"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the promoted user needs a fresh token carrying the VENDOR role
	promoted := s.customer
	promoted.Role = domain.UserRoleVendor
	w = s.do(t, http.MethodGet, "/api/vendor/dashboard", nil, bearer(s.token(t, promoted)))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPublicCatalog(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/products?category=all&limit=10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.ProductListResult
	decode(t, w, &page)
	assert.Equal(t, 1, page.Pagination.Total)

	w = s.do(t, http.MethodGet, "/api/products/"+s.product.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/reviews", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Product ID is required"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/categories", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "correct horse",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var verr struct {
		Details map[string]string `json:"details"`
	}
	decode(t, w, &verr)
	assert.Contains(t, verr.Details, "password")

	w = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "grace@example.com", "password": "correct horse"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result service.AuthResult
	decode(t, w, &result)
	claims, err := s.tokens.Parse(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", claims.Email)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, s.do(t, http.MethodPost, "/api/auth/login",
			map[string]string{"email": "grace@example.com", "password": "wrong password"}, nil).Code)
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
