package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/domain"
	"societyhub/internal/pkg/response"
)

// RequireRole ensures that the authenticated user has one of the roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}

		if !actor.Is(roles...) {
			response.CustomError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}

		c.Next()
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}

// StaffOnly admits guards and admins.
func StaffOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleGuard, domain.RoleAdmin)
}
