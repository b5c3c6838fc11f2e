package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"launder-manager-backend/config"
	"launder-manager-backend/internal/api"
	"launder-manager-backend/internal/db"
	"launder-manager-backend/internal/notification"
	"launder-manager-backend/internal/service"
	"launder-manager-backend/internal/store"
	"launder-manager-backend/internal/ws"
)

func main() {
	logger := log.New(os.Stdout, "launder-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	registry := ws.NewRegistry()

	// Web push is optional: without VAPID keys the pool is not started and
	// state changes are only published over the socket.
	var webpushOptions *webpush.Options
	var push service.PushDispatcher
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		push = pool
		logger.Printf("push worker pool started with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys are not configured; web push is disabled")
	}

	notificationSvc := service.NewNotificationService(appStore, registry, push)
	configurationSvc := service.NewConfigurationService(appStore, registry)

	dispatcher := ws.NewDispatcher(notificationSvc, configurationSvc)
	wsServer := ws.NewServer(registry, dispatcher, cfg.WebSocket.MaxMessageBytes)

	handler := api.NewHandler(appStore, configurationSvc, notificationSvc, webpushOptions)
	router := api.NewRouter(&cfg.Server, handler, wsServer)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}
	registry.CloseAll()

	logger.Println("Server gracefully stopped")
}
