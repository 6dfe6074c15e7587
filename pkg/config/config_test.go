package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp switches the working directory to a fresh temp dir so Load()
// resolves config.yaml (or its absence) there.
func chdirTemp(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})

	return tmpDir
}

func clearConfigEnv() {
	os.Unsetenv("PORT")
	os.Unsetenv("ENVIRONMENT")
	os.Unsetenv("DEBUG")
	os.Unsetenv("API_PREFIX")
	os.Unsetenv("CORS_ORIGINS")
	os.Unsetenv("PGHOST")
	os.Unsetenv("PGDATABASE")
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := chdirTemp(t)

	yamlContent := `
port: "8000"
env: "test"
cors_origins: "http://localhost:3000"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	clearConfigEnv()

	// Set env vars to override YAML values
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected Port=9000 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}

	// Verify YAML value used for database host (proves YAML was read)
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("expected CORSOrigins=[http://localhost:3000], got %v", cfg.CORSOrigins)
	}
}

func TestLoad_MissingConfigFileFallsBackToEnv(t *testing.T) {
	chdirTemp(t)
	clearConfigEnv()

	t.Setenv("PGDATABASE", "envdb")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed without config.yaml: %v", err)
	}

	if cfg.Database.Database != "envdb" {
		t.Errorf("expected Database.Database=envdb (from env), got %s", cfg.Database.Database)
	}

	// Defaults apply when neither YAML nor env provide a value
	if cfg.APIPrefix != "/api/v1" {
		t.Errorf("expected default APIPrefix=/api/v1, got %s", cfg.APIPrefix)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default Port=8000, got %s", cfg.Port)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	chdirTemp(t)
	clearConfigEnv()

	t.Setenv("CORS_ORIGINS", " http://localhost:3000 , https://example.com ,")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[0] != "http://localhost:3000" || cfg.CORSOrigins[1] != "https://example.com" {
		t.Errorf("origins not trimmed correctly: %v", cfg.CORSOrigins)
	}
}

func TestLoad_EmptyCORSOrigins(t *testing.T) {
	chdirTemp(t)
	clearConfigEnv()

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.CORSOrigins) != 0 {
		t.Errorf("expected no origins by default, got %v", cfg.CORSOrigins)
	}
}

func TestConnectionString(t *testing.T) {
	dbConfig := &DatabaseConfig{
		Host:     "db.example.com",
		Port:     5432,
		User:     "portfolio",
		Password: "secret",
		Database: "portfolio",
		SSLMode:  "disable",
	}

	want := "host=db.example.com port=5432 user=portfolio password=secret dbname=portfolio sslmode=disable"
	if got := dbConfig.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}

func TestConnectionString_LocalhostResolvedForDocker(t *testing.T) {
	dbConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "portfolio",
		Database: "portfolio",
		SSLMode:  "disable",
	}

	// The expected host depends on where the test runs; the rewrite itself
	// is covered by the docker resolution tests.
	wantHost := "host=" + ResolveHostForDocker("localhost")
	got := dbConfig.ConnectionString()
	if len(got) < len(wantHost) || got[:len(wantHost)] != wantHost {
		t.Errorf("ConnectionString() = %q, want prefix %q", got, wantHost)
	}
}
