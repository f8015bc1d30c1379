package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"globetrotter/internal/app"
	"globetrotter/internal/config"
	"globetrotter/internal/infra/backend"
	"globetrotter/internal/infra/memory"
	"globetrotter/internal/infra/postgres"
	redisstore "globetrotter/internal/infra/redis"
	transport "globetrotter/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *Options) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web game and challenge pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts, port)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default server.port or 3000)")
	return cmd
}

func runServer(ctx context.Context, opts *Options, portFlag string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "3000"
	}

	client := backend.NewClient(cfg.BaseURL(), &http.Client{Timeout: cfg.APITimeout()})

	var ledger app.ResultLedger = memory.NewLedger()
	if cfg.Postgres.URL != "" {
		if err := postgres.Migrate(ctx, cfg.Postgres.URL); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		ledger = postgres.NewLedger(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = newRedisClient(cfg)
		defer redisClient.Close()
	}

	controllers := newControllerRegistry(client, ledger, newIdentitySource(cfg, redisClient), cfg.Retention())
	router := transport.NewRouter(
		transport.NewWSHandler(controllers.get, cfg.Share.Origin),
		transport.NewChallengeHandler(client, cfg.Share.Origin),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting globetrotter on :%s (backend %s)", finalPort, cfg.BaseURL())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// identitySource opens per-client identity repositories. forget, when set,
// releases a client's repository once its controller is evicted.
type identitySource struct {
	open   func(clientID string) app.IdentityRepository
	forget func(clientID string)
}

// newIdentitySource namespaces each browser's identity by its client id.
// Redis keys expire on their own, so only the memory source needs forget.
func newIdentitySource(cfg config.Config, redisClient *redis.Client) identitySource {
	if redisClient != nil {
		return identitySource{open: func(clientID string) app.IdentityRepository {
			return redisstore.NewIdentityStore(redisClient, "ws:"+clientID, cfg.Retention())
		}}
	}
	stores := memory.NewIdentityStores()
	return identitySource{
		open:   func(clientID string) app.IdentityRepository { return stores.For(clientID) },
		forget: stores.Forget,
	}
}

// maxControllers caps live controllers; the least recently seen is evicted first.
const maxControllers = 10000

// controllerRegistry keeps one controller per browser client so a reconnect
// resumes the same game. Controllers idle for longer than the identity
// retention are evicted.
type controllerRegistry struct {
	api        app.GameAPI
	ledger     app.ResultLedger
	identities identitySource
	retention  time.Duration
	limit      int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	ctrl     *app.Controller
	lastSeen time.Time
}

func newControllerRegistry(api app.GameAPI, ledger app.ResultLedger, identities identitySource, retention time.Duration) *controllerRegistry {
	return &controllerRegistry{
		api:        api,
		ledger:     ledger,
		identities: identities,
		retention:  retention,
		limit:      maxControllers,
		now:        time.Now,
		entries:    make(map[string]*registryEntry),
	}
}

func (r *controllerRegistry) get(ctx context.Context, clientID string) (*app.Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if entry, ok := r.entries[clientID]; ok {
		entry.lastSeen = now
		return entry.ctrl, nil
	}
	r.evictLocked(now)

	store := app.NewStore(r.identities.open(clientID), r.retention)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("restore identity for %s: %w", clientID, err)
	}
	ctrl := app.NewController(r.api, store, r.ledger)
	r.entries[clientID] = &registryEntry{ctrl: ctrl, lastSeen: now}
	return ctrl, nil
}

// evictLocked drops idle controllers, then the oldest ones until there is room
// for one more.
func (r *controllerRegistry) evictLocked(now time.Time) {
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.retention {
			r.dropLocked(id)
		}
	}
	for r.limit > 0 && len(r.entries) >= r.limit {
		oldestID := ""
		var oldest time.Time
		for id, entry := range r.entries {
			if oldestID == "" || entry.lastSeen.Before(oldest) {
				oldestID, oldest = id, entry.lastSeen
			}
		}
		r.dropLocked(oldestID)
	}
}

func (r *controllerRegistry) dropLocked(clientID string) {
	delete(r.entries, clientID)
	if r.identities.forget != nil {
		r.identities.forget(clientID)
	}
}

func (r *controllerRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
