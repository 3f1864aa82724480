package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/api/handlers"
	"github.com/harvesthub/marketplace/internal/api/middleware"
	"github.com/harvesthub/marketplace/internal/config"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/internal/service"
)

// Dependencies are the services the HTTP layer dispatches to
type Dependencies struct {
	Repos    *repository.Repositories
	Tokens   middleware.TokenParser
	Auth     *service.AuthService
	Catalog  service.Catalog
	Checkout *service.CheckoutService
	Payments *service.PaymentService
	Orders   *service.OrderService
	Reviews  *service.ReviewService
	Vendors  *service.VendorService
	Admin    *service.AdminService
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		service.RegisterJSONFieldNames(v)
	}

	router := gin.New()

	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		loginLimiter := middleware.NewIPRateLimiter(cfg.Auth.LoginRatePerMinute)
		api.POST("/auth/register", handlers.HandleRegister(deps.Auth, logger))
		api.POST("/auth/login", middleware.RateLimit(loginLimiter, logger), handlers.HandleLogin(deps.Auth, logger))

		api.GET("/products", handlers.HandleListProducts(deps.Catalog, logger))
		api.GET("/products/:id", handlers.HandleGetProduct(deps.Catalog, logger))
		api.GET("/categories", handlers.HandleListCategories(deps.Catalog, logger))
		api.GET("/reviews", handlers.HandleListReviews(deps.Reviews, logger))

		// Gateway callback: authenticated by body signature, not by token
		api.POST("/paystack/webhook", handlers.HandlePaystackWebhook(deps.Payments, logger))

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(deps.Tokens, logger))
		authed.Use(middleware.RoleGuard(middleware.DefaultRoleRules(), logger))
		{
			authed.POST("/checkout",
				middleware.IdempotencyMiddleware(deps.Repos.IdempotencyKey, logger),
				handlers.HandleCheckout(deps.Checkout, logger),
			)
			authed.GET("/checkout/verify/:reference", handlers.HandleVerifyPayment(deps.Payments, logger))

			authed.GET("/orders", handlers.HandleListOrders(deps.Orders, logger))
			authed.GET("/orders/:id", handlers.HandleGetOrder(deps.Orders, logger))
			authed.POST("/reviews", handlers.HandleCreateReview(deps.Reviews, logger))

			vendor := authed.Group("/vendor")
			{
				vendor.POST("/apply", handlers.HandleVendorApply(deps.Vendors, logger))
				vendor.GET("/dashboard", handlers.HandleVendorDashboard(deps.Vendors, logger))
				vendor.GET("/products", handlers.HandleVendorListProducts(deps.Vendors, logger))
				vendor.POST("/products", handlers.HandleVendorCreateProduct(deps.Vendors, logger))
			}

			admin := authed.Group("/admin")
			{
				admin.GET("/stats", handlers.HandleAdminStats(deps.Admin, logger))
				admin.GET("/analytics", handlers.HandleAdminAnalytics(deps.Admin, logger))
				admin.GET("/orders/recent", handlers.HandleAdminRecentOrders(deps.Admin, logger))
				admin.PATCH("/orders/:id/status", handlers.HandleAdminUpdateOrderStatus(deps.Orders, logger))
				admin.GET("/vendors", handlers.HandleAdminListVendors(deps.Vendors, logger))
				admin.PATCH("/vendors/:id/status", handlers.HandleAdminUpdateVendorStatus(deps.Vendors, logger))
				admin.GET("/reviews", handlers.HandleAdminListReviews(deps.Reviews, logger))
				admin.PATCH("/reviews/:id/status", handlers.HandleAdminUpdateReviewStatus(deps.Reviews, logger))
			}
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
