package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinenacional-backend/pkg/container"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func Serve() error {
	ctx := context.Background()

	c, err := container.NewContainer(ctx, container.WithObjects(), container.WithQueue())
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer c.Cleanup()

	resources, err := c.Resources()
	if err != nil {
		return fmt.Errorf("failed to build resources: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := SetupRouter(RouterDeps{
		CORSOrigins:   c.Config.App.CORSOrigins,
		Registry:      registry,
		Health:        c.HealthCheck,
		Auth:          c.UserHandler,
		Authenticator: c.UserService,
		CookieName:    c.Config.Session.CookieName,
		Resources:     resources,
	})

	poolCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go c.DB.MonitorPoolHealth(poolCtx, time.Minute)

	port := c.Config.App.Port
	srv := &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", port).Str("env", c.Config.App.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited gracefully")
	return nil
}
