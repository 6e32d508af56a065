package middleware

import (
	"net/http"
	"slices"

	"mail_admin/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware creates a middleware that rejects sessions whose role is not allowed
func RoleMiddleware(deniedMessage string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": deniedMessage})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok || !slices.Contains(allowedRoles, userRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": deniedMessage})
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the session belongs to an admin. Must run after SessionAuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware("Forbidden: Admins only", model.RoleAdmin)
}
