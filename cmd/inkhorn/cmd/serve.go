package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkhorn/inkhorn/internal/audio"
	"github.com/inkhorn/inkhorn/internal/config"
	"github.com/inkhorn/inkhorn/internal/database"
	internalhttp "github.com/inkhorn/inkhorn/internal/http"
	"github.com/inkhorn/inkhorn/internal/http/handlers"
	"github.com/inkhorn/inkhorn/internal/repository"
	"github.com/inkhorn/inkhorn/internal/service"
	"github.com/inkhorn/inkhorn/internal/speech"
	"github.com/inkhorn/inkhorn/internal/svgsanitize"
	"github.com/inkhorn/inkhorn/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inkhorn server",
	Long: `Start the inkhorn HTTP server and API.

The server provides:
- REST API for theme derivation, contrast validation, and repair
- Read-aloud playback sessions with transport controls
- An advisory offline cache of posts and feeds
- SVG sanitizing with id and class namespacing
- Health check endpoints and OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server flags
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("database", "inkhorn.db", "Cache database file path")
	serveCmd.Flags().String("audio-backend", "auto", "Audio backend (auto, portaudio, wav)")

	// Bind flags to viper
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("database.dsn", serveCmd.Flags().Lookup("database"))
	viper.BindPFlag("audio.backend", serveCmd.Flags().Lookup("audio-backend"))
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	// The global viper already carries defaults, config file, env, and
	// the serve flag bindings.
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Initialize the cache database. The cache is advisory, so a failed
	// open degrades to a cacheless server rather than aborting startup.
	var db *database.DB
	if opened, err := database.New(cfg.Database, logger, nil); err != nil {
		logger.Warn("offline cache unavailable, continuing without it",
			slog.String("error", err.Error()))
	} else if err := opened.Migrate(); err != nil {
		logger.Warn("offline cache migration failed, continuing without it",
			slog.String("error", err.Error()))
		_ = opened.Close()
	} else {
		db = opened
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize the cache service over the repositories. Nil repositories
	// degrade every operation to a miss.
	var cacheService *service.CacheService
	if db != nil {
		cacheService = service.NewCacheService(
			repository.NewPostCacheRepository(db.DB),
			repository.NewFeedCacheRepository(db.DB),
		).WithLogger(logger)
	} else {
		cacheService = service.NewCacheService(nil, nil).WithLogger(logger)
	}

	// Age-bounding janitor is optional; row-count caps always apply.
	if cfg.Cache.JanitorEnabled && db != nil {
		janitor := service.NewCacheJanitor(cacheService, cfg.Cache.JanitorCron, cfg.Cache.Retention).
			WithLogger(logger)
		if err := janitor.Start(); err != nil {
			return fmt.Errorf("starting cache janitor: %w", err)
		}
		defer janitor.Stop()
	}

	// Speech sessions synthesize with the in-process engine and play
	// through whichever audio backend the capability check accepts.
	sampleRate := cfg.Audio.SampleRate
	controller := speech.NewController(
		func() (speech.Worker, error) {
			return speech.NewInProcessWorker(speech.NewToneSynthesizer(sampleRate)), nil
		},
		func(clock audio.Clock) (audio.Sink, error) {
			return audio.OpenSink(audio.SinkConfig{
				Backend:    cfg.Audio.Backend,
				SampleRate: sampleRate,
				RenderPath: cfg.Audio.RenderPath,
			}, clock, logger)
		},
		speech.InitOptions{
			Device: cfg.Speech.Device,
			DType:  cfg.Speech.DType,
			Voice:  cfg.Speech.Voice,
		},
	).WithLogger(logger)
	defer controller.Stop()

	sanitizer := svgsanitize.NewSanitizer(svgsanitize.NewNamespacer()).WithLogger(logger)

	// Initialize HTTP server
	serverConfig := internalhttp.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		CORSOrigins:     cfg.Server.CORSOrigins,
	}
	server := internalhttp.NewServer(serverConfig, logger, version.Version)

	// Register handlers
	healthHandler := handlers.NewHealthHandler(version.Version)
	if db != nil {
		healthHandler = healthHandler.WithDB(db.DB)
	}
	healthHandler.Register(server.API())

	themeHandler := handlers.NewThemeHandler()
	themeHandler.Register(server.API())

	sanitizeHandler := handlers.NewSanitizeHandler(sanitizer)
	sanitizeHandler.Register(server.API())

	cacheHandler := handlers.NewCacheHandler(cacheService)
	cacheHandler.Register(server.API())

	speechHandler := handlers.NewSpeechHandler(controller)
	speechHandler.Register(server.API())
	speechHandler.RegisterChiRoutes(server.Router())

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	logger.Info("starting inkhorn server",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.String("version", version.Version),
	)

	return server.ListenAndServe(ctx)
}
