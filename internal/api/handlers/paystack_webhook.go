package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/service"
	"github.com/harvesthub/marketplace/pkg/errors"
)

const (
	paystackSignatureHeader = "x-paystack-signature"
	maxWebhookBodyBytes     = 1 << 20
)

// HandlePaystackWebhook handles POST /api/paystack/webhook.
// The signature covers the exact bytes received, so the body is read raw.
func HandlePaystackWebhook(payments *service.PaymentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
		if err != nil {
			logger.Error("Failed to read webhook body", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook error"})
			return
		}

		outcome, err := payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(paystackSignatureHeader))
		if err != nil {
			var signature *errors.ErrInvalidSignature
			var validation *errors.ErrValidation
			switch {
			case stderrors.As(err, &signature):
				c.JSON(http.StatusBadRequest, gin.H{"error": signature.Error()})
			case stderrors.As(err, &validation):
				c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
			default:
				logger.Error("Paystack webhook error", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook error"})
			}
			return
		}

		logger.Debug("Paystack webhook processed",
			zap.Bool("order_found", outcome.OrderFound),
			zap.Bool("confirmed", outcome.Confirmed),
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}
