/*
Package main is the entry point for the linkhub server.

It is responsible for loading configuration, initializing the global logging system, opening
the user directory and the message log, setting up the HTTP server with the WebSocket hub,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkhub/internal/app/db"
	"linkhub/internal/app/directory"
	"linkhub/internal/app/hub"
	"linkhub/internal/app/messagelog"
	"linkhub/internal/app/presence"
	"linkhub/internal/app/social"
	"linkhub/internal/app/storage"
	"linkhub/internal/configs"
	"linkhub/internal/handler"
	"linkhub/internal/pkg/auth/jwt"
	"linkhub/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("directory_backend", cfg.DirectoryBackend).
		Bool("message_log", cfg.MessageLogPath != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openDirectoryStore(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open directory store")
	}
	defer closeStore()

	dir := directory.New(store)
	if err := dir.Load(ctx); err != nil {
		logx.Fatal(err, "Failed to load user directory", "store", store.Name())
	}

	var opts []social.Option
	if cfg.MessageLogPath != "" {
		msgLog, err := messagelog.OpenBadger(cfg.MessageLogPath)
		if err != nil {
			logx.Fatal(err, "Failed to open message log", "path", cfg.MessageLogPath)
		}
		defer func() {
			if err := msgLog.Close(); err != nil {
				logx.Error(err, "Failed to close message log")
			}
		}()
		opts = append(opts, social.WithMessageLog(msgLog))
	}

	wsHub := hub.NewHub()
	opts = append(opts, social.WithBroadcaster(wsHub))

	deps := &handler.AppDeps{
		Service: social.NewService(dir, presence.NewRegistry(), opts...),
		Hub:     wsHub,
		Tokens:  jwt.NewIssuer(cfg.JWTSecret, jwt.SessionExpiration),
		Config:  cfg,
	}

	// Setup HTTP server and routes
	router, stopLimiters := handler.Router(deps)
	defer stopLimiters()

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("linkhub server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	wsHub.Shutdown()

	logx.Info("Server gracefully stopped.")
}

// openDirectoryStore builds the BlobStore selected by DIRECTORY_BACKEND. The returned
// function releases its resources.
func openDirectoryStore(ctx context.Context, cfg *configs.AppConfig) (storage.BlobStore, func(), error) {
	noop := func() {}

	switch cfg.DirectoryBackend {
	case configs.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, noop, err
		}
		return db.NewBlobStore(pool, db.DirectorySnapshot), pool.Close, nil

	case configs.BackendS3:
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			Key:               cfg.S3DirectoryKey,
		})
		return store, noop, err

	default:
		store, err := storage.NewFileStore(cfg.DirectoryFile)
		return store, noop, err
	}
}
