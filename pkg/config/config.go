package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for portfolio-api.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (the database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr    string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port        string `yaml:"port" env:"PORT" env-default:"8000"`
	Env         string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME" env-default:"portfolio-api"`
	Debug       bool   `yaml:"debug" env:"DEBUG" env-default:"false"`
	Version     string `yaml:"-"` // Set at load time, not from config

	// APIPrefix is prepended to every project route (the health endpoint
	// stays unprefixed for load balancer checks).
	APIPrefix string `yaml:"api_prefix" env:"API_PREFIX" env-default:"/api/v1"`

	// CORSOriginsStr is a comma-separated list of allowed browser origins.
	// Leave empty to disable CORS handling entirely.
	CORSOriginsStr string `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:""`

	// CORSOrigins is the parsed list from CORSOriginsStr (not from config file).
	CORSOrigins []string `yaml:"-"`

	// SeedFile is the YAML fixture read by scripts/seed.
	SeedFile string `yaml:"seed_file" env:"SEED_FILE" env-default:"seed/projects.yaml"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"portfolio"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"portfolio"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A .env file in the working directory is loaded first when
// present. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	// Populate the environment from .env before cleanenv reads it.
	// Missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.CORSOrigins = parseOrigins(cfg.CORSOriginsStr)

	return cfg, nil
}

// parseOrigins splits a comma-separated origin list, dropping empty entries.
func parseOrigins(value string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(value, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// ConnectionString returns a PostgreSQL connection string. Inside a Docker
// container a localhost database host is rewritten to host.docker.internal.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
