package middleware

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvesthub/marketplace/internal/domain"
)

// RoleRule grants a path prefix to a set of roles
type RoleRule struct {
	Prefix string
	Roles  []domain.UserRole
}

// DefaultRoleRules guards the vendor and admin areas
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{Prefix: "/api/vendor/apply", Roles: []domain.UserRole{domain.UserRoleCustomer, domain.UserRoleVendor, domain.UserRoleAdmin}},
		{Prefix: "/api/vendor", Roles: []domain.UserRole{domain.UserRoleVendor, domain.UserRoleAdmin}},
		{Prefix: "/api/admin", Roles: []domain.UserRole{domain.UserRoleAdmin}},
	}
}

// RoleGuard enforces rules by longest matching path prefix. Paths no rule
// covers pass through. Must run after AuthMiddleware.
func RoleGuard(rules []RoleRule, logger *zap.Logger) gin.HandlerFunc {
	sorted := append([]RoleRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	return func(c *gin.Context) {
		rule, ok := matchRule(sorted, c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		role := GetRole(c)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, allowed := range rule.Roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		logger.Warn("Role not permitted",
			zap.String("path", c.Request.URL.Path),
			zap.String("role", string(role)),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

func matchRule(sorted []RoleRule, path string) (RoleRule, bool) {
	for _, r := range sorted {
		if path == r.Prefix || strings.HasPrefix(path, strings.TrimSuffix(r.Prefix, "/")+"/") {
			return r, true
		}
	}
	return RoleRule{}, false
}
