package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"restart50-service/internal/app"
	"restart50-service/internal/assistant"
	"restart50-service/internal/catalog"
	"restart50-service/internal/config"
	"restart50-service/internal/contact"
	"restart50-service/internal/domain"
	"restart50-service/internal/identity"
	"restart50-service/internal/infra/memory"
	pgstore "restart50-service/internal/infra/postgres"
	redisstore "restart50-service/internal/infra/redis"
	sqlitestore "restart50-service/internal/infra/sqlite"
	"restart50-service/internal/logger"
	"restart50-service/internal/progress"
	"restart50-service/internal/store"
	transport "restart50-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// loadConfig reads path, falling back to defaults when the file does not exist.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return cfg, err
}

// runtime holds the wired dependencies and whatever must be closed on exit.
type runtime struct {
	cfg      config.Config
	log      *logger.Logger
	redis    *redis.Client
	closers  []func()
	users    *store.Repository[domain.User]
	messages *store.Repository[domain.ContactMessage]
	catalog  *catalog.Catalog
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func newRuntime(ctx context.Context, cfg config.Config, log *logger.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: log}

	if cfg.Redis.Addr != "" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = rt.redis.Close() })
	}

	backend, err := rt.openBackend(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	courses := catalog.Default()
	if cfg.Catalog.Path != "" {
		if courses, err = catalog.LoadFile(cfg.Catalog.Path); err != nil {
			rt.Close()
			return nil, err
		}
	}
	rt.catalog = courses

	rt.users = store.NewRepository[domain.User](backend, cfg.Storage.Users, log)
	rt.messages = store.NewRepository[domain.ContactMessage](backend, cfg.Storage.Contacts, log)
	return rt, nil
}

func (rt *runtime) openBackend(ctx context.Context) (store.Backend, error) {
	cfg := rt.cfg
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return store.NewFileBackend(cfg.Storage.Dir), nil
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil
	case config.BackendRedis:
		if rt.redis == nil {
			return nil, fmt.Errorf("redis backend requires redis.addr")
		}
		return redisstore.NewDocumentBackend(rt.redis), nil
	case config.BackendPostgres:
		if err := runMigrationsWithConfig(ctx, cfg, rt.log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		return pgstore.NewDocumentBackend(pool), nil
	case config.BackendSQLite:
		b, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = b.Close() })
		return b, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// sessionStore is a session repository that can drop idle sessions in the background.
type sessionStore interface {
	app.SessionRepository
	Run(ctx context.Context, interval time.Duration)
}

func (rt *runtime) sessionStore() sessionStore {
	ttl := config.TTLDuration(rt.cfg.Session.TTL, 30*time.Minute)
	if rt.redis != nil {
		return redisstore.NewSessionStore(rt.redis, config.TTLDuration(rt.cfg.Redis.TTL, ttl), rt.log)
	}
	return memory.NewSessionStoreWithTTL(ttl, time.Now)
}

func (rt *runtime) service(sessions app.SessionRepository) *app.Service {
	return app.NewService(app.Deps{
		Sessions:       sessions,
		Users:          identity.NewResolver(rt.users, rt.log),
		Progress:       progress.NewTracker(rt.users, rt.catalog),
		Contacts:       contact.NewLog(rt.messages, rt.log),
		Catalog:        rt.catalog,
		Assistant:      assistant.New(rt.catalog, nil),
		Logger:         rt.log,
		MaxChatHistory: rt.cfg.Chat.MaxHistory,
	})
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sessions := rt.sessionStore()
	go sessions.Run(ctx, config.TTLDuration(cfg.Session.SweepInterval, time.Minute))

	service := rt.service(sessions)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewAPIHandler(service, log).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting restart50 service", "port", finalPort, "backend", cfg.Storage.Backend, "courses", rt.catalog.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, stopShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopShutdown()
	return server.Shutdown(shutdownCtx)
}
