// Package bootstrap assembles the runtime graph shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"skillhive/internal/ai"
	"skillhive/internal/cache"
	"skillhive/internal/config"
	"skillhive/internal/database"
	"skillhive/internal/events"
	"skillhive/internal/mirror"
	"skillhive/internal/notifications"
	"skillhive/internal/observability"
	"skillhive/internal/repository"
	"skillhive/internal/seed"
	"skillhive/internal/server"
	"skillhive/internal/service"
	"skillhive/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	busBuffer      = 256
	serviceName    = "skillhive-api"
	serviceVersion = "1.0.0"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedRemote fills an empty remote database with the default dataset.
	SeedRemote bool
	// Registerer receives the HTTP metrics. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Runtime owns every long-lived resource of a running process.
type Runtime struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Bus      *events.Bus
	Repos    *repository.Repositories
	Notifier *notifications.Notifier
	Hub      *notifications.Hub
	Services *service.Services
	Server   *server.Server

	cancel          context.CancelFunc
	shutdownTracing func(context.Context) error
}

// InitRuntime connects the configured backends and builds the HTTP server.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	observability.SetLogger(observability.NewLogger(os.Stdout, cfg.Env))

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		OTLPInsecure:   cfg.OTLPInsecure,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{Config: cfg, cancel: cancel, shutdownTracing: shutdownTracing}
	if err := rt.init(ctx, runCtx, opts); err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) init(ctx, runCtx context.Context, opts Options) error {
	cfg := rt.Config

	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			rt.Redis = rdb
		case cfg.StoreDriver == config.StoreRedis:
			return fmt.Errorf("redis connection failed: %w", err)
		default:
			observability.Logger.Warn("redis unavailable, continuing without it", slog.String("error", err.Error()))
		}
	}

	rt.Bus = events.NewBus(busBuffer)

	var kv store.KV = store.NewMemoryKV()
	if cfg.StoreDriver == config.StoreRedis {
		kv = store.NewRedisKV(rt.Redis, "")
	}
	records := store.NewRecords(kv, rt.Bus, store.WithReseedBelow(store.Users, cfg.StoreUsersReseedBelow))

	switch cfg.Backend {
	case config.BackendRemote:
		db, err := database.Connect(cfg, mirror.Tables()...)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
		rt.Repos = mirror.NewRemote(db, rt.Redis, rt.Bus, records)
		if opts.SeedRemote {
			if err := mirror.Seed(ctx, db, rt.Repos, DefaultSeedData(cfg.SeedPassword)); err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
		}
	default:
		rt.Repos = repository.NewLocal(records, cfg.SeedPassword)
	}

	assistant := newAssistant(ctx, cfg)

	rt.Notifier = notifications.NewNotifier(rt.Redis)
	rt.Hub = notifications.NewHub()
	if err := rt.Hub.StartWiring(runCtx, rt.Notifier); err != nil {
		return fmt.Errorf("notification wiring failed: %w", err)
	}
	if err := rt.Notifier.BridgeChanges(runCtx, rt.Bus); err != nil {
		return fmt.Errorf("change bridge failed: %w", err)
	}
	rt.Hub.ServeChanges(runCtx, rt.Bus)

	rt.Services = service.New(service.Deps{
		Repos:     rt.Repos,
		Pusher:    rt.Notifier,
		Assistant: assistant,
		Config:    cfg,
	})

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rt.Server = server.New(server.Deps{
		Config:     cfg,
		Services:   rt.Services,
		Hub:        rt.Hub,
		Redis:      rt.Redis,
		DB:         rt.DB,
		Registerer: reg,
	})
	return nil
}

func newAssistant(ctx context.Context, cfg *config.Config) *ai.Assistant {
	if cfg.GeminiAPIKey == "" {
		observability.Logger.Info("GEMINI_API_KEY not set, AI assistant disabled")
		return nil
	}
	model, err := ai.NewGeminiModel(ctx, cfg.GeminiAPIKey)
	if err != nil {
		observability.Logger.Warn("AI assistant disabled", slog.String("error", err.Error()))
		return nil
	}
	return ai.NewAssistant(model, ai.Config{
		Model:     cfg.GeminiModel,
		LiteModel: cfg.GeminiLiteModel,
		Timeout:   cfg.AITimeout(),
	})
}

// DefaultSeedData is the built-in dataset with every user sharing password.
func DefaultSeedData(password string) mirror.SeedData {
	return mirror.SeedData{
		Users:       seed.Users(),
		Credentials: seed.Credentials(password)(),
		Skills:      seed.Skills(),
		Matches:     seed.Matches(),
		Tasks:       seed.Tasks(),
		Posts:       seed.Posts(),
	}
}

// Close stops background workers and releases connections.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.cancel != nil {
		rt.cancel()
	}
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if rt.Redis != nil {
		errs = append(errs, rt.Redis.Close())
	}
	if rt.shutdownTracing != nil {
		errs = append(errs, rt.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
