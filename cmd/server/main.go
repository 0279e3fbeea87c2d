package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/storage/redis/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartroute/internal/config"
	"smartroute/internal/db"
	"smartroute/internal/generation"
	"smartroute/internal/handlers"
	"smartroute/internal/jobs"
	"smartroute/internal/logging"
	"smartroute/internal/metrics"
	"smartroute/internal/prompt"
	"smartroute/internal/render"
	"smartroute/internal/router"
	"smartroute/internal/server"
	"smartroute/internal/state"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server exited")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	prospectText, routeText := yamlCfg.Instructions()

	gemini, err := generation.NewGeminiClient(ctx, generation.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		return err
	}
	logger.Info("generation client ready", zap.String("client", gemini.Name()))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)
	gen := generation.Instrument(gemini, recorder, logger)

	// Sessions and visitor state share one backend
	var sessionStorage fiber.Storage
	var stateStore state.Store
	if cfg.RedisURL != "" {
		storage := redis.New(redis.Config{URL: cfg.RedisURL})
		defer storage.Close()
		sessionStorage = storage
		stateStore = state.NewKVStore(storage, "smartroute:state:", cfg.SessionTTL)
		logger.Info("using redis for sessions and visitor state")
	} else {
		memory, err := state.NewMemoryStore(cfg.StateCacheSize)
		if err != nil {
			return err
		}
		stateStore = memory
		logger.Info("using in-memory visitor state", zap.Int("capacity", cfg.StateCacheSize))
	}
	machine := state.NewMachine(stateStore)
	checks := []handlers.Check{{Name: "state store", Ping: machine.Ping}}

	g, gctx := errgroup.WithContext(ctx)

	var flusher *jobs.UsageFlusher
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")

		registry.MustRegister(metrics.NewUsageCollector(database, logger))
		checks = append(checks, handlers.Check{Name: "database", Ping: database.Ping})

		flusher = jobs.NewUsageFlusher(recorder, database, cfg.UsageFlushInterval, logger)
		g.Go(func() error {
			flusher.Start(gctx)
			return nil
		})
	} else {
		logger.Info("usage counters are not persisted. Set DATABASE_URL to enable.")
	}

	rt := router.New(
		machine,
		prompt.NewBuilder(prospectText, routeText),
		gen,
		logger,
		router.Config{Timeout: cfg.GenerationTimeout, Messages: yamlCfg.Messages()},
	)

	srv := server.New(cfg, sessionStorage, logger)
	if err := srv.RegisterRoutes(ctx, server.Deps{
		Router:   rt,
		Renderer: render.New(),
		Gatherer: registry,
		Checks:   checks,
	}); err != nil {
		rt.Close()
		return err
	}

	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv, rt, flusher, logger)
	})

	return g.Wait()
}

type shutdowner interface {
	Shutdown() error
}

type closer interface {
	Close()
}

// shutdown stops accepting requests, waits for in-flight generation calls
// and then writes the usage they produced.
func shutdown(srv shutdowner, rt closer, flusher *jobs.UsageFlusher, logger *zap.Logger) error {
	logger.Info("shutting down server")
	err := srv.Shutdown()
	rt.Close()

	if flusher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		flusher.Flush(ctx)
	}
	return err
}
