package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"projectdesk/internal/application/port"
	"projectdesk/internal/domain/entity"
)

const actorKey = "actor"

// authMiddleware resolves the bearer token to a user row and stores it on
// the request context. Token issuing lives outside this service; the token
// is the account id.
func authMiddleware(userRepo port.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "missing bearer token"})
			return
		}

		user, err := userRepo.GetByID(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
			return
		}
		if user == nil || user.Status != entity.UserActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: "invalid token"})
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

// actor returns the authenticated user stored by authMiddleware
func actor(c *gin.Context) *entity.User {
	return c.MustGet(actorKey).(*entity.User)
}
