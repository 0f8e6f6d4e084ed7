// posecoach: pose match scoring and session timing service
// Accepts landmark frames over WebSocket and streams scores and timer state back.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-posecoach/internal/config"
	"github.com/teslashibe/go-posecoach/internal/log"
	"github.com/teslashibe/go-posecoach/pkg/activity"
	"github.com/teslashibe/go-posecoach/pkg/coach"
	"github.com/teslashibe/go-posecoach/pkg/events"
	"github.com/teslashibe/go-posecoach/pkg/history"
	"github.com/teslashibe/go-posecoach/pkg/metrics"
	"github.com/teslashibe/go-posecoach/pkg/profile"
)

var (
	version     = "1.0.0"
	port        = flag.Int("port", 0, "HTTP server port (overrides POSECOACH_PORT)")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	profileFlag = flag.String("profile", "", "Default reference profile (overrides POSECOACH_DEFAULT_PROFILE)")
	noHistory   = flag.Bool("no-history", false, "Do not record finished sessions")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if *profileFlag != "" {
		cfg.DefaultProfile = *profileFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.LogLevel)
	logger := log.Component("main")

	fmt.Println()
	fmt.Println("🧘 Pose Coach v" + version)
	fmt.Println("   Pose match scoring and session timing")
	fmt.Println()

	if err := run(cfg); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger := log.Component("main")
	m := metrics.New()

	// Profiles: built-ins plus anything captured in earlier runs
	registry, err := profile.NewDefaultRegistry()
	if err != nil {
		return fmt.Errorf("load built-in profiles: %w", err)
	}
	store, err := profile.NewJSONStore(cfg.ProfilesPath)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	if err := registry.LoadStore(store); err != nil {
		return fmt.Errorf("load stored profiles: %w", err)
	}
	logger.Info("profiles loaded", "count", registry.Count(), "stored", store.Count(), "path", cfg.ProfilesPath)

	opts := coach.Options{
		Config: coach.Config{
			DefaultProfile: cfg.DefaultProfile,
			AutoStart:      cfg.AutoStart,
			TickInterval:   cfg.TickInterval,
			FeedbackHints:  coach.DefaultConfig().FeedbackHints,
			Debug:          cfg.Debug,
		},
		Profiles: registry,
		Store:    store,
		Metrics:  m,
		Logger:   log.Component("coach"),
	}

	if !*noHistory {
		if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
		db, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.History = db
		logger.Info("history enabled", "path", cfg.HistoryPath)
	}

	publisher, err := events.NewPublisher(events.Config{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	}, log.Component("events"), m)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	publisher.Start(ctx)
	opts.Events = publisher

	feed := activity.New(activity.DefaultLimit)
	go feed.Run(ctx)
	opts.Activity = feed

	server, err := coach.NewServer(opts)
	if err != nil {
		return err
	}
	defer server.Close()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "posecoach",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if cfg.Debug {
		app.Use(fiberlogger.New())
	}

	server.RegisterRoutes(app)
	server.RegisterAPIRoutes(app.Group("/api"))
	feed.RegisterRoutes(app)

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"version":  version,
			"sessions": server.SessionCount(),
			"events":   publisher.Enabled(),
		})
	})

	app.Get("/metrics", m.Handler())

	// Start server
	errc := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("starting server", "addr", addr,
			"websocket", fmt.Sprintf("ws://localhost:%d/ws/session", cfg.Port),
			"api", fmt.Sprintf("http://localhost:%d/api/profiles", cfg.Port),
		)
		errc <- app.Listen(addr)
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("shutdown error", "error", err)
	}
	// Open sockets are hijacked and outlive Shutdown; finish their runs
	// while history and the publisher are still up.
	server.Close()
	if err := publisher.Stop(shutdownCtx); err != nil {
		logger.Warn("event publisher stop error", "error", err)
	}

	logger.Info("goodbye")
	return nil
}
