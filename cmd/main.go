/*
Package main is the entry point for the lobby chat server.

It loads configuration, initializes the global logger, connects the optional presence
sinks and avatar storage, starts the WebSocket hub and HTTP server, and shuts everything
down in order on SIGINT/SIGTERM.
*/
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

	"lobbychat/internal/app/chat"
	"lobbychat/internal/app/db"
	"lobbychat/internal/app/presence"
	"lobbychat/internal/app/storage"
	"lobbychat/internal/configs"
	"lobbychat/internal/handler"
	"lobbychat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("static_dir", cfg.StaticDir).
		Bool("redis", cfg.RedisURL != "").
		Bool("amqp", cfg.AMQPURL != "").
		Bool("postgres", cfg.DatabaseDSN != "").
		Bool("s3", cfg.StorageEnabled()).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, err := buildSinks(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize presence sinks")
	}
	feed := presence.NewFeed(sinks...)

	var store storage.StorageService
	if cfg.StorageEnabled() {
		store, err = storage.NewStorageService(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
	}

	manager := chat.NewManager(cfg.SendBuffer, feed)

	router := handler.Router(&handler.AppDeps{
		Manager: manager,
		Config:  cfg,
		Storage: store,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Lobby chat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "HTTP server forced to shutdown")
	}

	if err := manager.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Some WebSocket clients did not detach in time")
	}

	feed.Shutdown()

	logx.Info("Server gracefully stopped.")
}

// buildSinks connects every configured presence sink. Unconfigured sinks are skipped.
func buildSinks(ctx context.Context, cfg *configs.AppConfig) ([]presence.Sink, error) {
	var sinks []presence.Sink

	if cfg.RedisURL != "" {
		rdb, err := presence.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}

		mirror, err := presence.NewRedisMirror(ctx, rdb)
		if err != nil {
			_ = rdb.Close()
			return nil, err
		}

		sinks = append(sinks, mirror)
		logx.Info("Presence mirror connected to Redis", "key", presence.OnlineKey)
	}

	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}

		sinks = append(sinks, presence.NewJournal(pool))
		logx.Info("Presence journal connected to PostgreSQL")
	}

	if cfg.AMQPURL != "" {
		conn, err := presence.DialAMQP(ctx, cfg.AMQPURL)
		if err != nil {
			return nil, err
		}

		publisher, err := presence.NewAMQPPublisher(conn)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}

		sinks = append(sinks, publisher)
		logx.Info("Presence events published to RabbitMQ", "exchange", presence.PresenceExchange)
	}

	return sinks, nil
}
