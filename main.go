package main

import (
	"context"
	"embed"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spikereview/internal"
	"spikereview/internal/config"
	"spikereview/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

//go:embed ui/templates ui/static
var embeddedFiles embed.FS

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))
	gin.SetMode(appConfig.Server.GinMode)

	c, err := container.New(appConfig, embeddedFiles, logger)
	if err != nil {
		logger.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.LoadInBackground(ctx)

	srv := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           c.Server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// open event streams would otherwise hold Shutdown until the timeout
	srv.RegisterOnShutdown(c.SSEHub.Close)

	go func() {
		logger.Info("Review UI listening on http://localhost:%s", appConfig.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown: %v", err)
	}
	_ = c.Shutdown(shutdownCtx)
}
