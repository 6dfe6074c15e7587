package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/folioworks/portfolio-api/pkg/database"
)

// TestPostgresImage is the PostgreSQL image used for integration tests.
const TestPostgresImage = "postgres:16-alpine"

// PortfolioDB holds a shared test database container with migrations applied.
// Use this for testing handlers, services, and repositories against a real
// database.
type PortfolioDB struct {
	Container testcontainers.Container
	DB        *database.DB
	ConnStr   string
}

var (
	sharedPortfolioDB     *PortfolioDB
	sharedPortfolioDBOnce sync.Once
	sharedPortfolioDBErr  error
)

// GetPortfolioDB returns a shared PostgreSQL container for integration tests.
// The container is created once, migrated, and reused across all tests in
// the run.
func GetPortfolioDB(t *testing.T) *PortfolioDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedPortfolioDBOnce.Do(func() {
		sharedPortfolioDB, sharedPortfolioDBErr = setupPortfolioDB()
	})

	if sharedPortfolioDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedPortfolioDBErr)
	}

	return sharedPortfolioDB
}

func setupPortfolioDB() (*PortfolioDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        TestPostgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "portfolio_test",
			"POSTGRES_USER":     "portfolio",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	connStr := fmt.Sprintf("postgres://portfolio:test_password@%s:%s/portfolio_test?sslmode=disable",
		host, port.Port())

	// The readiness log can beat the final listener by a beat, so retry the
	// initial connection.
	var db *database.DB
	for i := 0; i < 10; i++ {
		db, err = database.Connect(ctx, &database.Config{DSN: connStr, MaxConns: 5})
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// Run migrations using database/sql (required by golang-migrate).
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open sql connection: %w", err)
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, migrationsDir(), zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PortfolioDB{
		Container: container,
		DB:        db,
		ConnStr:   connStr,
	}, nil
}

// migrationsDir resolves the migrations directory relative to this source
// file, so integration tests in any package pick up the same migrations.
func migrationsDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "migrations")
}
