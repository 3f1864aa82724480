package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/service"
)

// HandleVendorApply handles POST /api/vendor/apply
func HandleVendorApply(vendors *service.VendorService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var req service.VendorApplicationRequest
		if !bindJSON(c, &req) {
			return
		}

		vendor, err := vendors.Apply(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, vendor)
	}
}

// HandleVendorDashboard handles GET /api/vendor/dashboard
func HandleVendorDashboard(vendors *service.VendorService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		dashboard, err := vendors.Dashboard(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, dashboard)
	}
}

// HandleVendorListProducts handles GET /api/vendor/products
func HandleVendorListProducts(vendors *service.VendorService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		products, err := vendors.ListProducts(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// HandleVendorCreateProduct handles POST /api/vendor/products
func HandleVendorCreateProduct(vendors *service.VendorService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var req service.CreateProductRequest
		if !bindJSON(c, &req) {
			return
		}

		product, err := vendors.CreateProduct(c.Request.Context(), userID, req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

// HandleAdminListVendors handles GET /api/admin/vendors?status=
func HandleAdminListVendors(vendors *service.VendorService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status *domain.VendorStatus
		if s := strings.ToUpper(c.Query("status")); s != "" && s != "ALL" {
			vs := domain.VendorStatus(s)
			status = &vs
		}

		list, err := vendors.List(c.Request.Context(), status)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

type vendorStatusRequest struct {
	Status domain.VendorStatus `json:"status" binding:"required"`
}

// HandleAdminUpdateVendorStatus handles PATCH /api/admin/vendors/:id/status
func HandleAdminUpdateVendorStatus(vendors *service.VendorService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathUUID(c, "id")
		if !ok {
			return
		}
		var req vendorStatusRequest
		if !bindJSON(c, &req) {
			return
		}

		vendor, err := vendors.UpdateStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, vendor)
	}
}
