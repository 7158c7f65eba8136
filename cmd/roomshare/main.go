package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jbpratt/roomshare/internal/api"
	"github.com/jbpratt/roomshare/internal/api/handlers"
	"github.com/jbpratt/roomshare/internal/api/middleware"
	"github.com/jbpratt/roomshare/internal/config"
	"github.com/jbpratt/roomshare/internal/metrics"
	"github.com/jbpratt/roomshare/internal/storage"
	"github.com/jbpratt/roomshare/internal/storage/filesystem"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "config.json", "Path to configuration file")
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("roomshare v%s - LAN file sharing rooms\n", version)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Override with environment variables
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logging)
	logger.Info("Starting roomshare", "version", version, "config_file", *configFile)

	baseStore, err := filesystem.New(cfg.Storage.Path,
		filesystem.WithMaxConcurrentWrites(cfg.Upload.MaxConcurrentWrites))
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Storage initialized",
		"type", cfg.Storage.Type,
		"path", baseStore.BasePath(),
		"max_concurrent_writes", cfg.Upload.MaxConcurrentWrites)

	var store storage.Store = baseStore

	var metricsRegistry *metrics.Registry
	if cfg.Metrics.Enabled {
		metricsRegistry = metrics.NewRegistry()
		store = metrics.NewStorageMetrics(store, metricsRegistry)
		logger.Info("Metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	}

	handler := newHandler(cfg, store, metricsRegistry, logger)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		logger.Info("Starting HTTP server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// In-flight chunks keep whatever they flushed; clients resume from status
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exited")
}

// newHandler wires handlers, routes and middleware
func newHandler(cfg *config.Config, store storage.Store, metricsRegistry *metrics.Registry, logger *slog.Logger) http.Handler {
	roomHandler := handlers.NewRoomHandler(store, logger)
	pasteboardHandler := handlers.NewPasteboardHandler(store, logger, cfg.Pasteboard.MaxEntryBytes)
	fileHandler := handlers.NewFileHandler(store, logger)
	uploadHandler := handlers.NewUploadHandler(store, logger, handlers.UploadOptions{
		MaxChunkBytes: cfg.Upload.MaxChunkBytes,
		LenientOffset: cfg.Upload.LenientOffset,
	})
	healthHandler := handlers.NewHealthHandler(store, logger)

	router := api.NewRouter()
	router.Use(middleware.ValidateNames)

	router.GET("/healthz", healthHandler.CheckHealth)

	// Rooms
	router.GET("/list", roomHandler.ListRooms)
	router.POST("/new", roomHandler.CreateRoom)
	router.DELETE("/delete/{room}", roomHandler.DeleteRoom)

	// Pasteboard
	router.GET("/list_pasteboard/{room}", pasteboardHandler.ListEntries)
	router.POST("/new_pasteboard/{room}", pasteboardHandler.PutEntry)
	router.DELETE("/delete_pasteboard/{room}/{id}", pasteboardHandler.DeleteEntry)

	// Files
	router.GET("/list_files/{room}", fileHandler.ListFiles)
	router.GET("/files/{room}/{name}", fileHandler.GetFile)
	router.DELETE("/delete_files/{room}/{name}", fileHandler.DeleteFile)

	// Resumable uploads
	router.POST("/new_file/{room}/{name}/{offset}", uploadHandler.WriteChunk)
	router.GET("/check_new_file/{room}/{name}", uploadHandler.CheckUpload)
	router.POST("/done_new_file/{room}/{name}", uploadHandler.FinalizeUpload)

	if metricsRegistry != nil {
		router.GET(cfg.Metrics.Endpoint, metricsRegistry.Handler(cfg.Metrics.BasicAuth).ServeHTTP)
	}

	if cfg.Server.StaticDir != "" {
		router.NotFound(http.FileServer(http.Dir(cfg.Server.StaticDir)))
		logger.Info("Serving web client", "dir", cfg.Server.StaticDir)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.RequestLogger(logger),
	}

	if metricsRegistry != nil {
		middlewares = append([]func(http.Handler) http.Handler{
			metrics.HTTPMetrics(metricsRegistry, cfg.Metrics.Endpoint),
		}, middlewares...)
	}

	return middleware.Chain(middlewares...)(router)
}

// setupLogger creates a structured logger based on configuration
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
