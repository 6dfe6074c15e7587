// seed initializes the database and loads example projects from a YAML
// fixture. Migrations run first, so it works against a fresh database. A
// database that already holds projects is left untouched.
//
// Usage: go run ./scripts/seed [-file path]
//
// Database connection: uses the same config.yaml / PG* environment variables
// as the API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/folioworks/portfolio-api/pkg/config"
	"github.com/folioworks/portfolio-api/pkg/database"
	"github.com/folioworks/portfolio-api/pkg/logging"
	"github.com/folioworks/portfolio-api/pkg/repositories"
	"github.com/folioworks/portfolio-api/pkg/seed"
	"github.com/folioworks/portfolio-api/pkg/services"
)

func main() {
	file := flag.String("file", "", "Path to the seed fixture (defaults to the configured seed_file)")
	flag.Parse()

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	path := cfg.SeedFile
	if *file != "" {
		path = *file
	}

	logger, err := logging.NewLogger(logging.Config{Component: "seed", Development: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	fixture, err := seed.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load fixture: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	dsn := cfg.Database.ConnectionString()

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open migration connection: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}
	_ = sqlDB.Close()

	db, err := database.Connect(ctx, &database.Config{DSN: dsn, MaxConns: 2})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := services.NewProjectService(repositories.NewProjectRepository(db), logger)

	created, err := seed.Apply(ctx, fixture, svc, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d project(s) from %s\n", created, path)
}
