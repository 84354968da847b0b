package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"restart50-service/internal/app"
	"restart50-service/internal/assistant"
	"restart50-service/internal/catalog"
	"restart50-service/internal/contact"
	"restart50-service/internal/domain"
	"restart50-service/internal/identity"
	pgstore "restart50-service/internal/infra/postgres"
	pgmigrations "restart50-service/internal/infra/postgres/migrations"
	infraredis "restart50-service/internal/infra/redis"
	"restart50-service/internal/progress"
	"restart50-service/internal/store"
)

func TestQuizProgressEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDocuments(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	backend := pgstore.NewDocumentBackend(pool)
	users := store.NewRepository[domain.User](backend, "users", nil)
	messages := store.NewRepository[domain.ContactMessage](backend, "contacts", nil)
	courses := catalog.Default()
	service := app.NewService(app.Deps{
		Sessions:  infraredis.NewSessionStore(redisClient, 5*time.Minute, nil),
		Users:     identity.NewResolver(users, nil),
		Progress:  progress.NewTracker(users, courses),
		Contacts:  contact.NewLog(messages, nil),
		Catalog:   courses,
		Assistant: assistant.New(courses, func(int) int { return 0 }),
	})

	sid := service.StartSession(ctx).ID()
	if _, _, err := service.Login(ctx, sid, "Alice", "alice@example.com"); err != nil {
		t.Fatalf("login: %v", err)
	}
	for _, answers := range [][]int{{1, 0, 1}, {1, 0, 0}} {
		if _, err := service.SubmitQuiz(ctx, sid, "c_ai_basics", answers); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := service.SendMessage(ctx, sid, "", "", catalog.GeneralLabel, "Olá, instrutor"); err != nil {
		t.Fatalf("send message: %v", err)
	}

	// A second process over the same database sees the stored state.
	other := identity.NewResolver(store.NewRepository[domain.User](pgstore.NewDocumentBackend(pool), "users", nil), nil)
	u, ok, err := other.FindByEmail(ctx, "ALICE@example.com")
	if err != nil || !ok {
		t.Fatalf("find user: ok=%v err=%v", ok, err)
	}
	p := u.Progress["c_ai_basics"]
	if !p.Completed || len(p.Attempts) != 2 || p.Score == nil || *p.Score != 66 {
		t.Fatalf("unexpected progress %+v", p)
	}

	recent, err := service.RecentMessages(ctx, sid)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(recent) != 1 || recent[0].Name != "Alice" {
		t.Fatalf("unexpected messages %+v", recent)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "restart", "POSTGRES_PASSWORD": "restartpass", "POSTGRES_DB": "restartdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://restart:restartpass@%s:%s/restartdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateDocuments(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
