package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/terra-clan/practice-engine/internal/api"
	"github.com/terra-clan/practice-engine/internal/channels"
	"github.com/terra-clan/practice-engine/internal/cleanup"
	"github.com/terra-clan/practice-engine/internal/config"
	"github.com/terra-clan/practice-engine/internal/personas"
	"github.com/terra-clan/practice-engine/internal/practice"
	"github.com/terra-clan/practice-engine/internal/rooms"
	"github.com/terra-clan/practice-engine/internal/sessions"
	"github.com/terra-clan/practice-engine/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	level, _ := config.ParseLogLevel(cfg.Server.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting practice-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"auth", cfg.Auth.Enabled(),
		"redis", cfg.Redis.Enabled,
		"archive", cfg.Database.Enabled(),
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Persona catalog: built-in data plus optional overrides
	catalog, err := personas.NewCatalog()
	if err != nil {
		slog.Error("failed to load persona catalog", "error", err)
		os.Exit(1)
	}
	if cfg.Personas.Dir != "" {
		if err := catalog.LoadFromDir(cfg.Personas.Dir); err != nil {
			slog.Warn("failed to load personas from dir", "dir", cfg.Personas.Dir, "error", err)
		}
	}

	directory := channels.NewDirectory(cfg.Channels.SendTimeout)
	roomRegistry := rooms.NewRegistry(
		rooms.WithPrefix(cfg.Rooms.NamePrefix),
		rooms.WithLimits(cfg.Rooms.MaxParticipants, cfg.Rooms.TimeoutMinutes),
	)
	sessionRegistry := sessions.NewRegistry(directory)

	var opts []practice.Option

	var redisFactory *channels.RedisFactory
	if cfg.Redis.Enabled {
		redisFactory, err = channels.NewRedisFactory(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.ChannelPrefix)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		opts = append(opts, practice.WithChannelFactory(redisFactory))
		slog.Info("redis room channels enabled", "address", cfg.Redis.Address, "prefix", cfg.Redis.ChannelPrefix)
	}

	var repo *storage.PostgresRepository
	if cfg.Database.Enabled() {
		repo, err = storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxConns),
		})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}

		migrations, err := storage.Migrations(cfg.Database.MigrationsDir)
		if err != nil {
			slog.Error("failed to open migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.RunMigrations(initCtx, repo.Pool(), migrations); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		opts = append(opts, practice.WithArchive(repo))
		slog.Info("session archive connected successfully")
	}

	manager := practice.NewOrchestrator(catalog, roomRegistry, sessionRegistry, directory, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expired room sweeper
	cleaner := cleanup.NewCleaner(manager, cfg.Cleanup.Interval)
	cleaner.Start(ctx)

	// Setup HTTP server. No WriteTimeout: room event streams are long-lived
	// and handlers are bounded by the router's request timeout.
	server := api.NewServer(cfg.Server, cfg.Auth, manager)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Stop background workers
	cancel()
	<-cleaner.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Archive what is still live before the process exits
	for _, room := range manager.ListRooms("") {
		if err := manager.CleanupRoom(shutdownCtx, room.RoomName); err != nil {
			slog.Warn("failed to clean up room on shutdown", "room", room.RoomName, "error", err)
		}
	}

	if redisFactory != nil {
		if err := redisFactory.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if repo != nil {
		if err := repo.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("practice-engine stopped")
}
