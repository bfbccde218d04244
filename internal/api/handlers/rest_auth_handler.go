package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/apiclient"
	"proptech/portal/internal/models"
	"proptech/portal/internal/session"
)

// AccountGateway is the part of the security service that needs no login.
type AccountGateway interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.JwtResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	ValidateResetToken(ctx context.Context, token string) (bool, error)
}

// RestAuthHandler handles login state and account recovery.
type RestAuthHandler struct {
	accounts AccountGateway
	log      *slog.Logger
}

func NewRestAuthHandler(accounts AccountGateway, log *slog.Logger) *RestAuthHandler {
	return &RestAuthHandler{accounts: accounts, log: log}
}

type sessionResponse struct {
	State     string              `json:"state"`
	User      *models.SessionUser `json:"user,omitempty"`
	IsAdmin   bool                `json:"isAdmin"`
	IsAgent   bool                `json:"isAgent"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
}

func describeSession(m *session.Manager) sessionResponse {
	resp := sessionResponse{IsAdmin: m.IsAdmin(), IsAgent: m.IsAgent()}
	current, state := m.Current()
	resp.State = state.String()
	if current != nil {
		user := current.User
		resp.User = &user
		if claims, err := session.ParseClaims(current.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			resp.ExpiresAt = &exp
		}
	}
	return resp
}

// Login handles POST /v1/auth/login.
func (h *RestAuthHandler) Login(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}
	if _, err := sess.Auth.Login(c.Request.Context(), &req); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) || apiclient.StatusCode(err) == http.StatusBadRequest {
			_ = c.Error(err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondError(c, err, "Login failed")
		return
	}
	h.log.Info("user logged in", "browse_session", sess.ID, "username", req.Username)
	c.JSON(http.StatusOK, describeSession(sess.Auth))
}

// Logout handles POST /v1/auth/logout. Only local state is cleared.
func (h *RestAuthHandler) Logout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := sess.Auth.Logout(c.Request.Context()); err != nil {
		respondError(c, err, "Logout failed")
		return
	}
	sess.Detail.Close()
	c.JSON(http.StatusOK, describeSession(sess.Auth))
}

// GetSession handles GET /v1/auth/session.
func (h *RestAuthHandler) GetSession(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, describeSession(sess.Auth))
}

// Register handles POST /v1/auth/register.
func (h *RestAuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration: " + err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}
	resp, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		if apiclient.StatusCode(err) == http.StatusBadRequest || apiclient.StatusCode(err) == http.StatusConflict {
			_ = c.Error(err)
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email is already taken"})
			return
		}
		respondError(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": resp.ID, "fullName": resp.FullName})
}

// ForgotPassword handles POST /v1/auth/forgot-password. The answer does not
// reveal whether the email is registered.
func (h *RestAuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}
	if err := h.accounts.ForgotPassword(c.Request.Context(), req.Email); err != nil && !errors.Is(err, apiclient.ErrNotFound) {
		respondError(c, err, "Failed to send reset email")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// ValidateResetToken handles GET /v1/auth/reset-password?token=.
func (h *RestAuthHandler) ValidateResetToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token is required"})
		return
	}
	valid, err := h.accounts.ValidateResetToken(c.Request.Context(), token)
	if err != nil {
		respondError(c, err, "Failed to validate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// ResetPassword handles POST /v1/auth/reset-password.
func (h *RestAuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}
	if err := h.accounts.ResetPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
