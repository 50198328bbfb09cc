package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sqlkit/paginate/pkg/api"
	"github.com/sqlkit/paginate/pkg/auth"
	"github.com/sqlkit/paginate/pkg/config"
	"github.com/sqlkit/paginate/pkg/database"
	"github.com/sqlkit/paginate/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	db, err := database.NewConnection(cfg, logg)
	if err != nil {
		logg.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(); err != nil {
		db.Close()
		logg.Fatal("failed to migrate database", zap.Error(err))
	}
	defer db.Close()

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)

	server := api.NewServer(cfg, db, jwtManager, logg)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutdown signal received")

	// Give the server 30 seconds to finish current requests
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logg.Fatal("server forced to shutdown", zap.Error(err))
	}

	logg.Info("server exited")
}
