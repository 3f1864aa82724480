package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/service"
)

// HandleAdminStats handles GET /api/admin/stats
func HandleAdminStats(admin *service.AdminService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := admin.Stats(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// HandleAdminAnalytics handles GET /api/admin/analytics
func HandleAdminAnalytics(admin *service.AdminService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		analytics, err := admin.Analytics(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, analytics)
	}
}

// HandleAdminRecentOrders handles GET /api/admin/orders/recent
func HandleAdminRecentOrders(admin *service.AdminService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := admin.RecentOrders(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// UpdateOrderStatusRequest represents an administrative order status change
type UpdateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

// HandleAdminUpdateOrderStatus handles PATCH /api/admin/orders/:id/status
func HandleAdminUpdateOrderStatus(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var req UpdateOrderStatusRequest
		if !bindJSON(c, &req) {
			return
		}

		order, err := orders.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
