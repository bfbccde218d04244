package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"proptech/portal/internal/browse"
)

const (
	// HeaderSessionID carries the browse session id in both directions.
	HeaderSessionID = "X-SPA"
	// ContextKeySession holds the *browse.Session of the request.
	ContextKeySession = "browseSession"
	// ContextKeyUserID holds the logged in user id.
	ContextKeyUserID = "userID"
	// ContextKeyIsAdmin holds the admin flag of the logged in user.
	ContextKeyIsAdmin = "isAdmin"
)

// SessionResolver finds or creates the state of a browse session.
type SessionResolver interface {
	Get(ctx context.Context, id string) (*browse.Session, error)
}

// SessionMiddleware attaches the browse session named by X-SPA, assigning a
// new id when the header is absent. The id is echoed on every response.
func SessionMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderSessionID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		sess, err := resolver.Get(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore session"})
			return
		}
		c.Header(HeaderSessionID, id)
		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// CurrentSession returns the browse session set by SessionMiddleware.
func CurrentSession(c *gin.Context) *browse.Session {
	if v, ok := c.Get(ContextKeySession); ok {
		if sess, ok := v.(*browse.Session); ok {
			return sess
		}
	}
	return nil
}
