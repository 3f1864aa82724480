package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/api/middleware"
	"github.com/harvesthub/marketplace/internal/service"
)

// HandleListOrders handles GET /api/orders (the caller's own orders)
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		list, err := orders.ListForCustomer(c.Request.Context(), userID, queryInt(c, "limit", 20), queryInt(c, "offset", 0))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	}
}

// HandleGetOrder handles GET /api/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		order, err := orders.Get(c.Request.Context(), userID, middleware.GetRole(c), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
