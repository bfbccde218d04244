package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"proptech/portal/internal/api/handlers"
	"proptech/portal/internal/api/middleware"
	"proptech/portal/internal/config"
	"proptech/portal/internal/notify"
	"proptech/portal/internal/render"
	"proptech/portal/internal/tasks"
)

// Dependencies are the long lived collaborators of the public router.
type Dependencies struct {
	Sessions middleware.SessionResolver
	Inbox    notify.Inbox
	Accounts handlers.AccountGateway
	// Enqueuer is nil when mark-sold runs inline.
	Enqueuer tasks.Enqueuer
	Limiter  *middleware.RateLimiterMiddleware
	Log      *slog.Logger
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Log))

	// Order matters: preflights must not consume tokens or create sessions.
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigin))
	if deps.Limiter != nil {
		r.Use(deps.Limiter.Limit())
	}

	browseHandler := handlers.NewRestBrowseHandler(render.Options{DefaultLat: cfg.DefaultMapLat, DefaultLng: cfg.DefaultMapLng})
	detailHandler := handlers.NewRestDetailHandler()
	authHandler := handlers.NewRestAuthHandler(deps.Accounts, deps.Log)
	profileHandler := handlers.NewRestProfileHandler(deps.Enqueuer, deps.Log)
	agentHandler := handlers.NewRestAgentHandler()
	adminHandler := handlers.NewRestAdminHandler()
	notificationHandler := handlers.NewRestNotificationHandler(deps.Inbox)

	v1 := r.Group("/v1")
	v1.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	sessions := v1.Group("/")
	sessions.Use(middleware.SessionMiddleware(deps.Sessions))
	{
		// Listing page
		sessions.GET("/listings", browseHandler.InitListings)
		sessions.GET("/listings/view", browseHandler.GetView)
		sessions.PATCH("/listings/filter", browseHandler.UpdateFilter)
		sessions.GET("/listings/filter/options", browseHandler.FilterOptions)
		sessions.GET("/listings/nearby", browseHandler.Nearby)
		sessions.GET("/listings/search", browseHandler.SearchAddress)

		// Detail overlay
		sessions.POST("/listings/:id/open", detailHandler.OpenDetail)
		sessions.GET("/listings/detail", detailHandler.GetDetail)
		sessions.POST("/listings/detail/back", detailHandler.Back)
		sessions.POST("/listings/detail/slides/:index", detailHandler.SelectSlide)

		sessions.GET("/agents/:id/listings", agentHandler.AgentListings)

		// Auth
		sessions.POST("/auth/login", authHandler.Login)
		sessions.POST("/auth/logout", authHandler.Logout)
		sessions.GET("/auth/session", authHandler.GetSession)
		sessions.POST("/auth/register", authHandler.Register)
		sessions.POST("/auth/forgot-password", authHandler.ForgotPassword)
		sessions.GET("/auth/reset-password", authHandler.ValidateResetToken)
		sessions.POST("/auth/reset-password", authHandler.ResetPassword)

		sessions.GET("/notifications", notificationHandler.Drain)

		authRequired := sessions.Group("/")
		authRequired.Use(middleware.AuthMiddleware())
		{
			authRequired.GET("/agents/:id/stats", agentHandler.AgentStats)

			profile := authRequired.Group("/profile")
			profile.GET("/me", profileHandler.Me)
			profile.PUT("/me", profileHandler.UpdateMe)
			profile.GET("/properties", profileHandler.Properties)
			profile.POST("/properties", profileHandler.CreateProperty)
			profile.GET("/properties/amenities", profileHandler.AmenityOptions)
			profile.GET("/properties/:id", profileHandler.GetProperty)
			profile.PUT("/properties/:id", profileHandler.UpdateProperty)
			profile.DELETE("/properties/:id", profileHandler.DeleteProperty)
			profile.GET("/listings", profileHandler.MyListings)
			profile.POST("/listings", profileHandler.CreateListing)
			profile.GET("/listings/upload-progress", profileHandler.UploadProgress)
			profile.PUT("/listings/:id", profileHandler.UpdateListing)
			profile.DELETE("/listings/:id", profileHandler.DeleteListing)
			profile.POST("/listings/:id/sold", profileHandler.MarkSold)
			profile.GET("/stats", profileHandler.Stats)
			profile.GET("/quota", profileHandler.Quota)
			profile.POST("/packages/:id/buy", profileHandler.BuyPackage)
			profile.GET("/wallet", profileHandler.Wallet)
			profile.POST("/wallet/topup", profileHandler.TopUp)
			profile.POST("/wallet/pay", profileHandler.Withdraw)
			profile.POST("/wallet/deposit", profileHandler.DepositQR)
		}

		adminRequired := sessions.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			adminRequired.GET("/users", adminHandler.Users)
			adminRequired.GET("/users/by-username/:username", adminHandler.UserByUsername)
			adminRequired.DELETE("/users/:id", adminHandler.DeleteUser)
			adminRequired.POST("/users/:id/:action", adminHandler.UserAction)
			adminRequired.GET("/stats", adminHandler.Stats)
		}
	}

	return r
}

// SessionAdmin is the operator view of the browse session registry.
type SessionAdmin interface {
	Len() int
	Evict(id string)
}

// SetupServiceRouter configures the internal service engine. It must not be
// exposed publicly.
func SetupServiceRouter(sessions SessionAdmin, inbox notify.Inbox, shutdownChan chan<- struct{}, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			log.Info("received shutdown command via service api")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				log.Warn("shutdown already signalled")
			}
		case "sessionCount":
			c.JSON(http.StatusOK, gin.H{"success": true, "result": sessions.Len()})
		case "evictSession", "drainNotifications":
			var args []string // ["sessionId"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 || args[0] == "" {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [sessionId]"})
				return
			}
			if req.Method == "evictSession" {
				sessions.Evict(args[0])
				c.JSON(http.StatusOK, gin.H{"success": true})
				return
			}
			items, err := inbox.Drain(c.Request.Context(), args[0])
			if err != nil {
				log.Error("service api: failed to drain notifications", "session", args[0], "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Inbox error"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"session", c.Writer.Header().Get(middleware.HeaderSessionID),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request failed", attrs...)
		case len(c.Errors) > 0:
			log.Warn("request rejected", attrs...)
		default:
			log.Debug("request served", attrs...)
		}
	}
}
