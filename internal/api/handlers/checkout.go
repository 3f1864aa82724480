package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/api/middleware"
	"github.com/harvesthub/marketplace/internal/service"
)

// HandleCheckout handles POST /api/checkout
func HandleCheckout(checkout *service.CheckoutService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.GetClaimsFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		customer := service.Customer{ID: claims.Subject, Email: claims.Email}

		key, requestHash, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			orderID, err := uuid.Parse(existingOrderID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			result, err := checkout.ResultForOrder(c.Request.Context(), customer, orderID)
			if err != nil {
				respondError(c, logger, err)
				return
			}
			c.JSON(http.StatusOK, result)
			return
		}

		var req service.CheckoutRequest
		if !bindJSON(c, &req) {
			return
		}

		var idem *service.IdempotencyRecord
		if key != "" {
			idem = &service.IdempotencyRecord{Key: key, RequestHash: requestHash}
		}

		result, err := checkout.PlaceOrder(c.Request.Context(), customer, req, idem)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// HandleVerifyPayment handles GET /api/checkout/verify/:reference
func HandleVerifyPayment(payments *service.PaymentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := middleware.GetClaimsFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		result, err := payments.VerifyReference(c.Request.Context(), service.Customer{ID: claims.Subject, Email: claims.Email}, c.Param("reference"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
