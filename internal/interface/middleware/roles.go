package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wander-api/wander/internal/domain/entity"
	"github.com/wander-api/wander/pkg/response"
)

// RequireRoles is the role gate. It must run after Protect: a missing
// identity in the context is a wiring bug, not a normal rejection, and is
// reported as an internal error.
func RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	allowed := make(map[entity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
			c.Abort()
			return
		}
		if _, ok := allowed[u.Role]; !ok {
			response.Error[any](c, http.StatusForbidden, "you do not have permission to perform this action", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
