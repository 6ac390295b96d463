package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cinenacional-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const healthAddr = ":9999"

// startServices verifies the backends and starts the probe server.
func startServices(ctx context.Context, c *container.Container) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	services, healthy := c.HealthCheck(checkCtx)
	for name, status := range services {
		log.Info().Str("service", name).Str("status", status).Msg("[Startup] health check")
	}
	if !healthy {
		return fmt.Errorf("backends unavailable: %v", services)
	}

	go startHealthCheckServer(c)
	return nil
}

func startHealthCheckServer(c *container.Container) {
	log.Info().Str("addr", healthAddr).Msg("[Health] starting probe server")
	if err := http.ListenAndServe(healthAddr, probeRouter(c.HealthCheck)); err != nil {
		log.Error().Err(err).Msg("[Health] failed to start")
	}
}

// probeRouter serves /health (liveness) and /ready (backends reachable).
func probeRouter(check func(context.Context) (map[string]string, bool)) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "cinenacional-worker"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		services, healthy := check(ctx)
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "services": services})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "READY", "services": services})
	})
	return r
}
