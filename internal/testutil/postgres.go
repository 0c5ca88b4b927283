// Package testutil provides test helpers for the PostgreSQL and Redis backends.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/adventure/internal/config"
	"github.com/cory-johannsen/adventure/internal/storage/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresUser  = "adventure"
	postgresDB    = "adventure_test"
)

// tables are emptied before each test that asks for a database.
var tables = []string{"adventurers", "balances"}

// One container serves every test in a test binary. testcontainers' reaper
// removes it when the binary exits.
var shared struct {
	once sync.Once
	cfg  config.DatabaseConfig
	err  error
}

// PostgresContainer is a migrated, empty database with a connected Pool.
type PostgresContainer struct {
	Pool    *postgres.Pool
	RawPool *pgxpool.Pool
	Config  config.DatabaseConfig
}

// NewPostgresContainer connects to the shared test database, starting it on
// first use.
//
// Precondition: Docker must be available.
// Postcondition: Every table is migrated and empty; the pool is closed when
// the test ends. Skipped in short mode.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	shared.once.Do(func() {
		shared.cfg, shared.err = startPostgres(context.Background())
	})
	if shared.err != nil {
		t.Fatalf("starting postgres container: %v", shared.err)
	}

	pool, err := postgres.NewPool(context.Background(), shared.cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connecting to test postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	applyMigrations(t, pool.DB())
	truncate(t, pool.DB())
	return &PostgresContainer{Pool: pool, RawPool: pool.DB(), Config: shared.cfg}
}

func startPostgres(ctx context.Context) (config.DatabaseConfig, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresUser,
				"POSTGRES_DB":       postgresDB,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return config.DatabaseConfig{}, err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("container port: %w", err)
	}
	return config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            postgresUser,
		Password:        postgresUser,
		Name:            postgresDB,
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}, nil
}

// ApplyMigrations runs every migrations/*.up.sql file in order. The
// migrations are idempotent, so repeated calls are harmless.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	applyMigrations(t, pc.RawPool)
}

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(migrationsDir(t), "*.up.sql"))
	if err != nil {
		t.Fatalf("listing migrations: %v", err)
	}
	sort.Strings(files)
	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("reading migration %s: %v", f, err)
		}
		if _, err := pool.Exec(context.Background(), string(sql)); err != nil {
			t.Fatalf("applying migration %s: %v", filepath.Base(f), err)
		}
	}
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	for _, table := range tables {
		if _, err := pool.Exec(context.Background(), "TRUNCATE "+table); err != nil {
			t.Fatalf("truncating %s: %v", table, err)
		}
	}
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("locating testutil source")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// NewPool returns a migrated, empty pool. TEST_DSN selects an existing
// database; otherwise the shared container is used.
//
// Postcondition: the pool is closed when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		return NewPostgresContainer(t).RawPool
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}
	t.Cleanup(pool.Close)
	applyMigrations(t, pool)
	truncate(t, pool)
	return pool
}
