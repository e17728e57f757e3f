package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CaioWF/ignite-finapi/internal/auth"
	"github.com/CaioWF/ignite-finapi/internal/config"
	"github.com/CaioWF/ignite-finapi/internal/events/kafka"
	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/server"
	"github.com/CaioWF/ignite-finapi/internal/statement"
	"github.com/CaioWF/ignite-finapi/internal/storage/memory"
	"github.com/CaioWF/ignite-finapi/internal/storage/postgres"
	"github.com/CaioWF/ignite-finapi/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("finapi starting", zap.String("storage", cfg.StorageDriver))

	var userStore interfaces.UserStore
	var entryStore interfaces.StatementStore

	switch cfg.StorageDriver {
	case "postgres":
		db, err := postgres.Open(cfg.DSN())
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Connected to postgres")

		m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.MigrateDSN())
		if err != nil {
			logger.Fatal("Failed to create migrate instance", zap.Error(err))
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}
		logger.Info("Database migrations applied")

		userStore = postgres.NewUserStore(db)
		entryStore = postgres.NewStatementStore(db)
	default:
		userStore = memory.NewUserStore()
		entryStore = memory.NewStatementStore()
	}

	var publisher interfaces.EventPublisher
	if cfg.KafkaBrokerURL != "" {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers(), cfg.KafkaTopic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Error("Error closing kafka publisher", zap.Error(err))
			}
		}()
		publisher = kafkaPublisher
		logger.Info("Kafka publisher configured", zap.String("topic", cfg.KafkaTopic))
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	userService := users.NewService(userStore, tokens, logger.With(zap.String("component", "UserService")))
	engine := statement.NewEngine(userStore, entryStore, logger.With(zap.String("component", "StatementEngine")))

	srv := server.New(userService, engine, tokens, publisher, logger.With(zap.String("component", "HTTPServer")))
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
