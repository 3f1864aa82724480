package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/internal/service"
)

// HandleListProducts handles GET /api/products
func HandleListProducts(catalog service.Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.ProductFilter{
			CategorySlug: c.Query("category"),
			Search:       c.Query("search"),
			Limit:        queryInt(c, "limit", 50),
			Offset:       queryInt(c, "offset", 0),
		}

		result, err := catalog.ListProducts(c.Request.Context(), filter)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// HandleGetProduct handles GET /api/products/:id
func HandleGetProduct(catalog service.Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}

		product, err := catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// HandleListCategories handles GET /api/categories
func HandleListCategories(catalog service.Catalog, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := catalog.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// queryInt reads a non-negative integer query parameter, falling back on bad input
func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
