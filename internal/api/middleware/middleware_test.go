package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/auth"
	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, role domain.UserRole) (string, uuid.UUID) {
	t.Helper()
	user := &domain.User{ID: uuid.New(), Email: "caller@example.com", Role: role}
	token, err := tokens.Issue(user)
	require.NoError(t, err)
	return token, user.ID
}

func guardedRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	g := r.Group("/api")
	g.Use(AuthMiddleware(tokens, zap.NewNop()), RoleGuard(DefaultRoleRules(), zap.NewNop()))
	ok := func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.String(), "role": GetRole(c)})
	}
	g.GET("/orders", ok)
	g.POST("/vendor/apply", ok)
	g.GET("/vendor/dashboard", ok)
	g.GET("/vendors-directory", ok)
	g.GET("/admin/stats", ok)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	router := guardedRouter(tokens)
	token, userID := tokenFor(t, tokens, domain.UserRoleCustomer)
	foreign, _ := tokenFor(t, auth.NewTokenManager("other-secret", time.Hour), domain.UserRoleCustomer)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"invalid authorization header format"}`},
		{"empty token", "Bearer  ", http.StatusUnauthorized, `{"error":"Unauthorized"}`},
		{"bad signature", "Bearer " + foreign, http.StatusUnauthorized, `{"error":"invalid or expired token"}`},
		{"valid", "Bearer " + token, http.StatusOK, `{"userId":"` + userID.String() + `","role":"CUSTOMER"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRoleGuard(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	router := guardedRouter(tokens)

	tests := []struct {
		role   domain.UserRole
		method string
		path   string
		status int
	}{
		{domain.UserRoleCustomer, http.MethodGet, "/api/orders", http.StatusOK},
		{domain.UserRoleCustomer, http.MethodPost, "/api/vendor/apply", http.StatusOK},
		{domain.UserRoleCustomer, http.MethodGet, "/api/vendor/dashboard", http.StatusForbidden},
		{domain.UserRoleCustomer, http.MethodGet, "/api/vendors-directory", http.StatusOK},
		{domain.UserRoleCustomer, http.MethodGet, "/api/admin/stats", http.StatusForbidden},
		{domain.UserRoleVendor, http.MethodGet, "/api/vendor/dashboard", http.StatusOK},
		{domain.UserRoleVendor, http.MethodGet, "/api/admin/stats", http.StatusForbidden},
		{domain.UserRoleAdmin, http.MethodGet, "/api/vendor/dashboard", http.StatusOK},
		{domain.UserRoleAdmin, http.MethodGet, "/api/admin/stats", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.path, func(t *testing.T) {
			token, _ := tokenFor(t, tokens, tt.role)
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())
			}
		})
	}
}

func TestMatchRule(t *testing.T) {
	rules := []RoleRule{
		{Prefix: "/api/vendor/apply"},
		{Prefix: "/api/vendor"},
		{Prefix: "/api/admin/"},
	}

	rule, ok := matchRule(rules, "/api/vendor/apply")
	require.True(t, ok)
	assert.Equal(t, "/api/vendor/apply", rule.Prefix)

	rule, ok = matchRule(rules, "/api/vendor/products/1")
	require.True(t, ok)
	assert.Equal(t, "/api/vendor", rule.Prefix)

	_, ok = matchRule(rules, "/api/vendorsmith")
	assert.False(t, ok)

	_, ok = matchRule(rules, "/api/admin/vendors")
	assert.True(t, ok)
}

func TestRoleGuard_WithoutClaims(t *testing.T) {
	r := gin.New()
	r.Use(RoleGuard(DefaultRoleRules(), zap.NewNop()))
	r.GET("/api/admin/stats", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "buckets are per IP")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(NewIPRateLimiter(2), zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.10:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIdempotencyMiddleware(t *testing.T) {
	store := memory.NewStore()
	keys := store.Repositories().IdempotencyKey
	tokens := auth.NewTokenManager("secret", time.Hour)
	token, userID := tokenFor(t, tokens, domain.UserRoleCustomer)

	r := gin.New()
	r.POST("/checkout",
		AuthMiddleware(tokens, zap.NewNop()),
		IdempotencyMiddleware(keys, zap.NewNop()),
		func(c *gin.Context) {
			key, hash, existing, replay := GetIdempotencyInfo(c)
			c.JSON(http.StatusOK, gin.H{"key": key, "hash": hash, "existing": existing, "replay": replay})
		},
	)
	send := func(key, body, bearer string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+bearer)
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send("", `{"a":1}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"replay":false`)
	assert.Contains(t, w.Body.String(), `"key":""`)

	w = send("k-1", `{"a":1}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"k-1"`)

	orderID := uuid.New()
	// sha256 of {"a":1}
	const hash = "015abd7f5cc57a2dd94b7590f04ad8084273905ee33ec5cebeae62276a97f862"
	require.NoError(t, keys.Create(context.Background(), &domain.IdempotencyKey{
		Key:         "k-1",
		CustomerID:  userID,
		OrderID:     orderID,
		RequestHash: hash,
	}))

	w = send("k-1", `{"a":1}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"existing":"`+orderID.String()+`"`)
	assert.Contains(t, w.Body.String(), `"replay":true`)

	w = send("k-1", `{"a":2}`, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	other, _ := tokenFor(t, tokens, domain.UserRoleCustomer)
	w = send("k-1", `{"a":1}`, other)
	assert.Equal(t, http.StatusConflict, w.Code)
}
