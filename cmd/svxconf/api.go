package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/svxtools/svxconf/pkg/backup"
	"github.com/svxtools/svxconf/pkg/handlers"
	"github.com/svxtools/svxconf/pkg/logger"
	"github.com/svxtools/svxconf/pkg/middleware"
	"github.com/svxtools/svxconf/pkg/toolconfig"
	"github.com/svxtools/svxconf/pkg/version"
)

func startAPIServer(port int, cfg *toolconfig.Config, backups *backup.Manager) error {
	// Server mode: structured JSON logs
	logger.SetJSONOutput()

	if port == 0 {
		port = cfg.API.Port
	}

	nodeHandler := handlers.NewNodeHandler(cfg, backups)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// Security headers early in the chain
	r.Use(middleware.SecurityHeadersMiddleware())

	if cfg.API.EnableCORS {
		r.Use(corsMiddleware(cfg.API.AllowedOrigins))
	}

	r.Use(middleware.RequestLoggingMiddleware())

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	r.Use(middleware.RateLimitMiddleware(limiter))

	r.GET("/health", healthHandler)

	api := r.Group("/api")
	{
		api.GET("/nodes", nodeHandler.ListNodes)
		api.POST("/nodes", nodeHandler.CreateNode)
		api.GET("/nodes/:name", nodeHandler.GetNode)
		api.GET("/nodes/:name/online", nodeHandler.ProbeNode)
		api.GET("/document", nodeHandler.ExportDocument)
	}

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting API server", "addr", addr, "config", cfg.General.SvxlinkConf)
	return r.Run(addr)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": version.GetVersion(),
	})
}

// corsMiddleware creates a CORS middleware with specified allowed origins
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
