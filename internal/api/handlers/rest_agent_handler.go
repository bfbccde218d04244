package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/api/middleware"
)

type RestAgentHandler struct {
	now func() time.Time
}

func NewRestAgentHandler() *RestAgentHandler {
	return &RestAgentHandler{now: time.Now}
}

// AgentListings handles GET /v1/agents/:id/listings, the public agent page.
func (h *RestAgentHandler) AgentListings(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	listings, err := sess.Agents.AgentListings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to load agent listings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// AgentStats handles GET /v1/agents/:id/stats.
func (h *RestAgentHandler) AgentStats(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	stats, err := sess.Agents.Stats(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err, "Failed to load agent statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RestAdminHandler serves the admin dashboard.
type RestAdminHandler struct {
	now func() time.Time
}

func NewRestAdminHandler() *RestAdminHandler {
	return &RestAdminHandler{now: time.Now}
}

// Users handles GET /v1/admin/users.
func (h *RestAdminHandler) Users(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	users, err := sess.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// UserByUsername handles GET /v1/admin/users/by-username/:username.
func (h *RestAdminHandler) UserByUsername(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	user, err := sess.Accounts.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err, "Failed to look up user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /v1/admin/users/:id.
func (h *RestAdminHandler) DeleteUser(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := sess.Accounts.DeleteUser(c.Request.Context(), c.GetString(middleware.ContextKeyUserID), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

type roleRequest struct {
	Role string `json:"role"`
}

// UserAction handles POST /v1/admin/users/:id/:action where action is one of
// enable, disable, add-role or remove-role.
func (h *RestAdminHandler) UserAction(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	userID := c.Param("id")

	var err error
	switch action := c.Param("action"); action {
	case "enable":
		err = sess.Accounts.SetEnabled(ctx, userID, true)
	case "disable":
		err = sess.Accounts.SetEnabled(ctx, userID, false)
	case "add-role", "remove-role":
		var req roleRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil || req.Role == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
			return
		}
		if action == "add-role" {
			err = sess.Accounts.AddRole(ctx, userID, req.Role)
		} else {
			err = sess.Accounts.RemoveRole(ctx, userID, req.Role)
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown action " + action})
		return
	}
	if err != nil {
		respondError(c, err, "Action failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// Stats handles GET /v1/admin/stats.
func (h *RestAdminHandler) Stats(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	stats, err := sess.Agents.PlatformStats(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err, "Failed to load statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
