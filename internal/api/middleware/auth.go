package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginPath is where the browser is sent when it has to sign in again.
const LoginPath = "/login"

// AuthMiddleware requires a logged in browse session. Assumes
// SessionMiddleware runs first.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required", "redirect": LoginPath})
			return
		}
		user, ok := sess.Auth.User()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required", "redirect": LoginPath})
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyIsAdmin, sess.Auth.IsAdmin())
		c.Next()
	}
}

// AdminMiddleware requires ROLE_ADMIN. Assumes AuthMiddleware runs first.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextKeyIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Administrator privileges required"})
			return
		}
		c.Next()
	}
}

// AgentMiddleware requires ROLE_AGENT. Assumes AuthMiddleware runs first.
func AgentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil || !sess.Auth.IsAgent() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Agent privileges required"})
			return
		}
		c.Next()
	}
}
