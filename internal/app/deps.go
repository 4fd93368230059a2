package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"rsvp-chunker/internal/cache"
	"rsvp-chunker/internal/config"
	"rsvp-chunker/internal/logger"
	"rsvp-chunker/internal/queue"
	"rsvp-chunker/internal/store"
	"rsvp-chunker/internal/tokenizer"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     store.Store
	Queue     queue.Queue
	Cache     cache.Cache
	Tokenizer tokenizer.Loader
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	deps, err := BuildLocal(os.Stdout)
	if err != nil {
		return Deps{}, err
	}
	cfg, log := deps.Config, deps.Log

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	deps.Store = st
	deps.Queue = q
	deps.Cache = c
	return deps, nil
}

// BuildLocal prepares only what an in-process engine needs: config, a logger writing
// to logOut and the tokenizer loader. No network connections are made.
func BuildLocal(logOut io.Writer) (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.NewWithWriter(logOut, cfg.LogLevel, cfg.LogFormat)

	load, err := buildTokenizer(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	return Deps{Config: cfg, Log: log, Tokenizer: load}, nil
}

// Close releases the store and cache connections.
func (d Deps) Close() error {
	var errs []error
	if c, ok := d.Store.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	return errors.Join(errs...)
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

// buildCache never fails on an unreachable Redis; results are then simply recomputed.
func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none":
		log.Info("result cache disabled")
		return cache.NewNoOpCache(), nil
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache(), nil
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr)
		return c, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: redis, none)", cfg.CacheProvider)
	}
}

func buildTokenizer(cfg config.Config, log *slog.Logger) (tokenizer.Loader, error) {
	load, err := tokenizer.NewLoader(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	log.Info("using tokenizer", "name", cfg.Tokenizer)
	return load, nil
}
