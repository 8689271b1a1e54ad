// Package router assembles the gin engine and API routes.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/auth"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/config"
	"github.com/nasrosoft/invoice-generator-saas/internal/infrastructure/logger"
	"github.com/nasrosoft/invoice-generator-saas/internal/interfaces/http/handler"
	"github.com/nasrosoft/invoice-generator-saas/internal/interfaces/http/middleware"
)

// Dependencies holds everything the router needs to wire routes
type Dependencies struct {
	Config          *config.Config
	Logger          *zap.Logger
	JWTService      *auth.JWTService
	TokenBlacklist  auth.TokenBlacklist
	AuthHandler     *handler.AuthHandler
	CustomerHandler *handler.CustomerHandler
	InvoiceHandler  *handler.InvoiceHandler
	SystemHandler   *handler.SystemHandler
}

// New builds the gin engine with all middleware and routes
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidations()

	engine := gin.New()
	_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(corsConfig(deps.Config)))
	if deps.Config.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.Config.HTTP.MaxBodySize))
	}

	engine.GET("/health", deps.SystemHandler.Health)
	engine.GET("/ready", deps.SystemHandler.Ready)

	v1 := engine.Group("/api/v1")

	// Public auth endpoints
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", deps.AuthHandler.Register)
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/refresh", deps.AuthHandler.RefreshToken)
	}

	// Everything below requires a valid access token
	protected := v1.Group("")
	protected.Use(middleware.JWTAuth(middleware.JWTConfig{
		JWTService: deps.JWTService,
		Blacklist:  deps.TokenBlacklist,
		Logger:     deps.Logger,
	}))

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.POST("/logout", deps.AuthHandler.Logout)
		protectedAuth.GET("/me", deps.AuthHandler.Me)
		protectedAuth.PUT("/password", deps.AuthHandler.ChangePassword)
	}

	customers := protected.Group("/customers")
	{
		customers.POST("", deps.CustomerHandler.Create)
		customers.GET("", deps.CustomerHandler.List)
		customers.GET("/:id", deps.CustomerHandler.Get)
		customers.PUT("/:id", deps.CustomerHandler.Update)
		customers.DELETE("/:id", deps.CustomerHandler.Delete)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.POST("", deps.InvoiceHandler.Create)
		invoices.GET("", deps.InvoiceHandler.List)
		invoices.GET("/summary", deps.InvoiceHandler.Summary)
		invoices.GET("/:id", deps.InvoiceHandler.Get)
		invoices.PUT("/:id", deps.InvoiceHandler.Update)
		invoices.DELETE("/:id", deps.InvoiceHandler.Delete)
		invoices.POST("/:id/duplicate", deps.InvoiceHandler.Duplicate)
		invoices.POST("/:id/send", deps.InvoiceHandler.Send)
		invoices.POST("/:id/pay", deps.InvoiceHandler.Pay)
		invoices.PUT("/:id/status", deps.InvoiceHandler.UpdateStatus)
		invoices.GET("/:id/pdf", deps.InvoiceHandler.PDF)
	}

	return engine
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return corsCfg
}
