package main

import (
	"context"
	"net/http"
	"time"

	"cinenacional-backend/internal/shared/crud"
	"cinenacional-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthHandler serves the session endpoints.
type AuthHandler interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Session(c *gin.Context)
}

type RouterDeps struct {
	CORSOrigins   []string
	Registry      *prometheus.Registry
	Health        func(ctx context.Context) (map[string]string, bool)
	Auth          AuthHandler
	Authenticator middleware.Authenticator
	CookieName    string
	Resources     []crud.Resource
}

func SetupRouter(d RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(d.CORSOrigins),
		middleware.NewMetrics(d.Registry).Handler(),
	)

	router.GET("/health", healthCheckHandler(d.Health))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))

	requireEditor := middleware.RequireEditor(d.Authenticator, d.CookieName)

	v1 := router.Group("/api/v1")
	setupAuthRoutes(v1, d.Auth, requireEditor)
	for _, res := range d.Resources {
		res.Register(v1, requireEditor)
	}

	return router
}

func setupAuthRoutes(v1 *gin.RouterGroup, h AuthHandler, requireEditor gin.HandlerFunc) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", requireEditor, h.Logout)
		auth.GET("/session", requireEditor, h.Session)
	}
}

func healthCheckHandler(check func(ctx context.Context) (map[string]string, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		services, healthy := check(ctx)
		status, code := "ok", http.StatusOK
		if !healthy {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"services":  services,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
