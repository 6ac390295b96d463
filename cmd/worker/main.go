package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"cinenacional-backend/pkg/container"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using system environment variables")
	}

	ctx := context.Background()
	c, err := container.NewContainer(ctx, container.WithObjects())
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] failed to initialize")
	}
	defer c.Cleanup()

	handlers, err := initializeHandlers(c)
	if err != nil {
		log.Fatal().Err(err).Msg("[Worker] failed to build handlers")
	}

	srv := setupAsynqServer(c, handlers)

	scheduler, err := setupScheduler(c)
	if err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] failed to start")
	}

	if err := startServices(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] health check failed")
	}

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] gracefully stopping")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] stopped")
}
