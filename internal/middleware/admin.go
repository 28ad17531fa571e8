package middleware

import (
	"net/http"

	"studio-ledger/internal/models"
	"studio-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// RequireAdmin gates a route group to admin accounts. Must run after
// AuthMiddleware. This check is a UX convenience on top of per-owner query
// scoping, not the only line of defense.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUser)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not signed in")
			c.Abort()
			return
		}
		user, ok := v.(*models.User)
		if !ok || !user.IsAdmin() {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
