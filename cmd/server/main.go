package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/pkg/config"
	"waifuhub/backend/pkg/di"
	"waifuhub/backend/pkg/logger"
	"waifuhub/backend/pkg/observability"
	"waifuhub/backend/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting waifuhub backend", "env", cfg.Server.Env)

	shutdownTracing := observability.SetupTracing("waifuhub-backend")
	defer shutdownTracing()
	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":2112"
	}
	observability.SetupPrometheusMetrics(metricsAddr)

	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Waifu{},
		&models.Vote{},
		&models.ChatMessage{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}
	container.Health.Start()
	defer container.Health.Stop()

	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r.Engine,
		ReadTimeout: cfg.Server.Timeout,
		// Video generation is synchronous; the write timeout must cover it
		WriteTimeout: cfg.Upstream.VideoTimeout + cfg.Server.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
		os.Exit(1)
	}

	log.Info("Server exited")
}
