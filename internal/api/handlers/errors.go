package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/api/middleware"
	"github.com/harvesthub/marketplace/pkg/errors"
)

// respondError maps typed service errors to status codes; anything else is a logged 500
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		validation   *errors.ErrValidation
		unauthorized *errors.ErrUnauthorized
		forbidden    *errors.ErrForbidden
		notFound     *errors.ErrNotFound
		conflict     *errors.ErrConflict
		transition   *errors.ErrInvalidStateTransition
		unavailable  *errors.ErrProductsUnavailable
		stock        *errors.ErrInsufficientStock
		signature    *errors.ErrInvalidSignature
	)

	switch {
	case stderrors.As(err, &validation):
		body := gin.H{"error": validation.Error()}
		if len(validation.Fields) > 0 {
			body["details"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case stderrors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Error()})
	case stderrors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Resource + " not found"})
	case stderrors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case stderrors.As(err, &transition):
		c.JSON(http.StatusBadRequest, gin.H{"error": transition.Error()})
	case stderrors.As(err, &unavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": unavailable.Error()})
	case stderrors.As(err, &stock):
		c.JSON(http.StatusBadRequest, gin.H{"error": stock.Error()})
	case stderrors.As(err, &signature):
		c.JSON(http.StatusBadRequest, gin.H{"error": signature.Error()})
	default:
		logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bindJSON decodes the body into req, answering 400 with field details on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		verr := errors.FromValidation(err)
		body := gin.H{"error": verr.Message}
		if len(verr.Fields) > 0 {
			body["details"] = verr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
		return false
	}
	return true
}

// pathUUID parses a uuid path parameter, answering 400 when malformed
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// requireUser returns the authenticated user id, answering 401 when absent
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return uuid.Nil, false
	}
	return id, true
}
