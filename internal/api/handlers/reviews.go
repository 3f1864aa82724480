package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/service"
)

// HandleListReviews handles GET /api/reviews?productId=
func HandleListReviews(reviews *service.ReviewService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("productId")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product ID is required"})
			return
		}
		productID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		result, err := reviews.ListForProduct(c.Request.Context(), productID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleCreateReview handles POST /api/reviews
func HandleCreateReview(reviews *service.ReviewService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req service.CreateReviewRequest
		if !bindJSON(c, &req) {
			return
		}

		review, err := reviews.Create(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

// HandleAdminListReviews handles GET /api/admin/reviews?status=
func HandleAdminListReviews(reviews *service.ReviewService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *domain.ReviewStatus
		if s := strings.ToUpper(c.DefaultQuery("status", "PENDING")); s != "ALL" {
			rs := domain.ReviewStatus(s)
			status = &rs
		}

		list, err := reviews.ListByStatus(c.Request.Context(), status)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

type reviewStatusRequest struct {
	Status domain.ReviewStatus `json:"status" binding:"required"`
}

// HandleAdminUpdateReviewStatus handles PATCH /api/admin/reviews/:id/status
func HandleAdminUpdateReviewStatus(reviews *service.ReviewService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var req reviewStatusRequest
		if !bindJSON(c, &req) {
			return
		}

		review, err := reviews.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}
