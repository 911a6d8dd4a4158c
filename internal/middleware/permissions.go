// internal/middleware/permissions.go

package middleware

import (
	"net/http"

	"shoplink-push/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireElevated restricts an endpoint to roles that receive admin alerts
// (admin, super_admin, manager, support)
func RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := currentRole(c)
		if !ok {
			return
		}

		if !role.IsElevated() {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "Elevated role required",
				"user_role": role.String(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole restricts an endpoint to an explicit set of roles
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := currentRole(c)
		if !ok {
			return
		}

		for _, candidate := range allowed {
			if role == candidate {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Insufficient role",
			"user_role": role.String(),
		})
		c.Abort()
	}
}

// currentRole reads the role AuthMiddleware put on the context. Aborts the
// request itself when the role is absent or unknown.
func currentRole(c *gin.Context) (models.Role, bool) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		c.Abort()
		return "", false
	}

	roleStr, ok := roleInterface.(string)
	if !ok || roleStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid user role",
		})
		c.Abort()
		return "", false
	}

	role, ok := models.RoleFromString(roleStr)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Invalid role",
		})
		c.Abort()
		return "", false
	}

	return role, true
}
