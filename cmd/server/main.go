package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/bizdir-ops/internal/api"
	"github.com/andresuchdata/bizdir-ops/internal/config"
	"github.com/andresuchdata/bizdir-ops/internal/cors"
	"github.com/andresuchdata/bizdir-ops/internal/records"
	"github.com/andresuchdata/bizdir-ops/internal/service"
	"github.com/andresuchdata/bizdir-ops/internal/storage"
	"github.com/andresuchdata/bizdir-ops/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.App.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	target, err := storage.ResolveTarget(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to resolve storage target")
	}
	store, err := storage.Open(ctx, cfg.Storage, target)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open bucket")
	}

	policyPath := cors.Resolve(cfg.App.CorsFile, cors.ExecutableDir())
	policy, err := cors.Load(policyPath)
	if err != nil {
		logger.Log.Warn().Err(err).Str("file", policyPath).Msg("CORS document unavailable, using default API origins")
	}

	services := &api.Services{
		CORSService:   service.NewCORSService(store),
		UploadService: service.NewUploadService(store, service.UploadOptions{Concurrency: cfg.App.UploadConcurrency}),
		PolicyPath:    policyPath,
	}

	recordStore, err := records.Open(ctx, cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Records store unavailable, records routes disabled")
	} else {
		defer recordStore.Close()
		services.RecordsService = service.NewRecordsService(recordStore)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(services, policy),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("bucket", store.Bucket()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
