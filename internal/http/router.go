package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/uploadauth/internal/auth"
	"github.com/mrlokans/uploadauth/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(MetricsMiddleware(cfg.Metrics))

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.Accounts, log, cfg.SecureCookies)
	uploads := NewUploadTokenController(cfg.Uploads, log)
	admin := NewAdminController(cfg.Accounts, log)
	logins := NewLoginHistoryController(cfg.History, cfg.Accounts, log)

	// Service info and health endpoints
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.AppName})
	})
	router.GET("/health", health.Status)
	router.GET("/ping", health.Status)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Public API
	api := router.Group("/api")
	api.POST("/register", authController.Register)
	api.POST("/login", authController.Login)
	api.POST("/logout", authController.Logout)
	api.POST("/bootstrap-admin", authController.BootstrapAdmin)

	// Authenticated API
	authed := api.Group("", cfg.Middleware.RequireAuthenticated())
	authed.GET("/me", authController.Me)
	authed.GET("/me/logins", logins.Mine)
	authed.GET("/upload-token", uploads.Get)
	authed.POST("/upload-token", uploads.Post)

	// Admin surface. CSRF applies to the whole group, login included.
	adminGroup := router.Group("/admin")
	if len(cfg.CSRFSecret) > 0 {
		adminGroup.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.Resolver))
		adminGroup.GET("/csrf", auth.CSRFTokenHandler)
	}
	adminGroup.POST("/login", authController.AdminLogin)

	admins := adminGroup.Group("", cfg.Middleware.RequireAuthenticated(), cfg.Middleware.RequireAdmin())
	admins.GET("/users", admin.ListUsers)
	admins.POST("/users", admin.CreateUser)
	admins.GET("/users/:id", admin.GetUser)
	admins.PUT("/users/:id", admin.UpdateUser)
	admins.DELETE("/users/:id", admin.DeleteUser)
	admins.GET("/users/:id/logins", logins.ForAccount)
	admins.GET("/logins", logins.All)

	return router
}
