package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/endpoint-nf-store/internal/config"
	"github.com/endpoint-nf-store/internal/infrastructure/dynamo"
	jwtinfra "github.com/endpoint-nf-store/internal/infrastructure/jwt"
	"github.com/endpoint-nf-store/internal/pkg/logger"
	transporthttp "github.com/endpoint-nf-store/internal/transport/http"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	lg, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	if envErr != nil {
		lg.Info("No .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dynamoClient, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		lg.Fatal("Failed to create DynamoDB client", zap.Error(err))
	}
	if cfg.BootstrapTables {
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, lg.Named("bootstrap"))
	}

	// JWT provider is optional; without it admin routes are closed.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		lg.Warn("JWT provider not available", zap.Error(err))
	}

	endpointsByApp := dynamo.NewEndpointByAppRepo(dynamoClient, cfg.DynamoTables.EndpointsByApp, lg)
	deps := &transporthttp.Deps{
		NotificationRepo: dynamo.NewEndpointNotificationRepo(dynamoClient,
			cfg.DynamoTables.EndpointNotifications, cfg.DynamoTables.NotificationsByApp, endpointsByApp, lg),
		NotificationByAppRepo: dynamo.NewNotificationByAppRepo(dynamoClient, cfg.DynamoTables.NotificationsByApp, lg),
		EndpointByAppRepo:     endpointsByApp,
		JWTProvider:           jwtProvider,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps, lg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("Server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	lg.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Forced shutdown", zap.Error(err))
		return
	}
	lg.Info("Server stopped")
}
