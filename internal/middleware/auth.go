package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"societyhub/internal/domain"
	"societyhub/internal/pkg/jwt"
	"societyhub/internal/pkg/logger"
	"societyhub/internal/pkg/response"
)

const actorKey = "actor"

// JWTAuth verifies the bearer token and stores the caller's actor
// descriptor on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.CustomError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		SetActor(c, claims.Actor())
		c.Next()
	}
}

// SetActor stores the actor on the gin context and tags the request
// context for logging.
func SetActor(c *gin.Context, actor domain.Actor) {
	c.Set(actorKey, actor)
	c.Set("user_id", actor.UserID)
	c.Set("role", string(actor.Role))
	ctx := logger.ContextWith(c.Request.Context(), logger.UserIDKey, actor.UserID)
	c.Request = c.Request.WithContext(ctx)
}

func ActorFromContext(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

// CurrentActor returns the caller or writes a 401 and reports false.
func CurrentActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := ActorFromContext(c)
	if !ok {
		response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return actor, ok
}
