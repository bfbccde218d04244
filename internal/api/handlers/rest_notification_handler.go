package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/notify"
)

type RestNotificationHandler struct {
	inbox notify.Inbox
}

func NewRestNotificationHandler(inbox notify.Inbox) *RestNotificationHandler {
	return &RestNotificationHandler{inbox: inbox}
}

// Drain handles GET /v1/notifications. Returned notifications are not
// delivered again.
func (h *RestNotificationHandler) Drain(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	items, err := h.inbox.Drain(c.Request.Context(), sess.ID)
	if err != nil {
		respondError(c, err, "Failed to load notifications")
		return
	}
	if items == nil {
		items = []notify.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
