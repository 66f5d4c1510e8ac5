package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"cloudfiles/internal/auth"
	"cloudfiles/internal/config"
	"cloudfiles/internal/handler"
	"cloudfiles/internal/handler/sse"
	"cloudfiles/internal/handler/ws"
	"cloudfiles/internal/middleware"
	"cloudfiles/internal/repository"
	"cloudfiles/internal/service/activity"
	"cloudfiles/internal/service/broadcast"
	"cloudfiles/internal/service/drive"
	"cloudfiles/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" || cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verification is optional; without a JWKS URL every request is anonymous
	var verifier auth.JWTVerifier
	if cfg.AuthJWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(ctx, cfg.AuthJWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("AUTH_JWKS_URL not set, authentication disabled")
	}

	repos, err := repository.Setup(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up repositories: %v", err)
	}
	defer repos.Close()

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up storage: %v", err)
	}

	// Live updates
	registry := broadcast.NewRegistry(logger)
	dispatcher := broadcast.NewDispatcher(registry, logger)

	// Activity log
	activityClient := activity.NewClient(cfg.Activity, logger)
	if !activityClient.Enabled() {
		logger.Info("activity logging disabled")
	}

	// Services
	folderService := drive.NewFolderService(repos.Folders, repos.Files, repos.TxManager, dispatcher, activityClient, logger)
	fileService := drive.NewFileService(repos.Files, repos.Folders, blobs, cfg.Upload, dispatcher, activityClient, logger)

	logger.Info("services initialized",
		"persistence", repos.Backend,
		"storage", blobs.Backend(),
	)

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Handlers{
		Folders:     handler.NewFolderHandler(folderService, logger),
		Files:       handler.NewFileHandler(fileService, handler.NewConfigInfo(cfg, blobs.Backend()), logger),
		Events:      handler.NewEventsHandler(registry, sse.NewConfig(cfg.SSEKeepAlive), ws.NewUpgrader(corsOrigins), logger),
		Logs:        handler.NewLogsHandler(activityClient, logger),
		Subscribers: registry,
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → ClientInfo → Auth → Routes
	h = middleware.Auth(verifier, logger)(h)
	h = middleware.ClientInfo(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived event streams
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// End event streams first; Shutdown does not wait for hijacked or
	// streaming connections to go idle on its own.
	registry.Shutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}
	if err := activityClient.Close(shutdownCtx); err != nil {
		logger.Warn("pending activity records dropped", "error", err)
	}

	logger.Info("server stopped")
}
