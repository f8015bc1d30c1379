package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"globetrotter/internal/app"
	"globetrotter/internal/config"
	"globetrotter/internal/infra/backend"
	"globetrotter/internal/infra/file"
	"globetrotter/internal/infra/memory"
	"globetrotter/internal/infra/postgres"
	redisstore "globetrotter/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// cliNamespace prefixes the terminal player's keys when identities live in Redis.
const cliNamespace = "cli"

// runtime is everything a command needs, built from config and flags.
type runtime struct {
	cfg    config.Config
	client *backend.Client
	ctrl   *app.Controller
	redis  *redis.Client
	pool   *pgxpool.Pool
}

func loadConfig(opts *Options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", opts.configPath, err)
	}
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}
	if opts.sessionDir != "" {
		cfg.Session.Dir = opts.sessionDir
	}
	if opts.shareOrigin != "" {
		cfg.Share.Origin = opts.shareOrigin
	}
	return cfg, nil
}

// newRuntime connects the configured backends. Redis holds the identity when
// configured, otherwise a YAML file does. Postgres holds the ledger when
// configured, otherwise it lives in memory for the process.
func newRuntime(ctx context.Context, opts *Options) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	rt := &runtime{
		cfg:    cfg,
		client: backend.NewClient(cfg.BaseURL(), &http.Client{Timeout: cfg.APITimeout()}),
	}

	var identities app.IdentityRepository
	if cfg.Redis.Addr != "" {
		rt.redis = newRedisClient(cfg)
		identities = redisstore.NewIdentityStore(rt.redis, cliNamespace, cfg.Retention())
	} else {
		path, err := file.DefaultPath(cfg.Session.Dir)
		if err != nil {
			return nil, err
		}
		identities = file.NewIdentityStore(path)
	}

	var ledger app.ResultLedger = memory.NewLedger()
	if cfg.Postgres.URL != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			rt.Close()
			return nil, err
		}
		rt.pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		ledger = postgres.NewLedger(rt.pool)
	}

	store := app.NewStore(identities, cfg.Retention())
	if err := store.Load(ctx); err != nil {
		log.Printf("restore identity: %v", err)
	}
	rt.ctrl = app.NewController(rt.client, store, ledger)
	return rt, nil
}

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func (rt *runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}

func (rt *runtime) origin() string {
	return rt.cfg.ShareOrigin()
}
