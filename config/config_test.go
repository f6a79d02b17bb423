package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tubecast.yaml")
	yml := `
port: 8080
base_url: https://cast.example.com/
database:
  driver: postgres
  postgres:
    host: db
audio:
  retention: 48h
feeds:
  max_age: 15m
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	t.Setenv("ADMIN_KEY", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("exp 8080, got %d", cfg.Port)
	}
	if cfg.BaseURL != "https://cast.example.com" {
		t.Errorf("exp trimmed base url, got %q", cfg.BaseURL)
	}
	if cfg.Database.Driver != DriverPostgres || cfg.Database.Postgres.Host != "db" {
		t.Errorf("unexpected database config %+v", cfg.Database)
	}
	if cfg.Database.Postgres.Port != "5432" {
		t.Errorf("exp default postgres port to survive, got %q", cfg.Database.Postgres.Port)
	}
	if cfg.Audio.Retention != 48*time.Hour || cfg.Feeds.MaxAge != 15*time.Minute {
		t.Errorf("unexpected durations %v %v", cfg.Audio.Retention, cfg.Feeds.MaxAge)
	}
	if cfg.AdminKey != "s3cret" {
		t.Errorf("exp env to override, got %q", cfg.AdminKey)
	}
	if cfg.Youtube.MaxResults != 50 {
		t.Errorf("exp default max results, got %d", cfg.Youtube.MaxResults)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("exp error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("port: [1"), 0o644); err != nil {
		t.Fatalf("exp nil, got %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("exp error for invalid yaml")
	}
}

func TestApplyEnv(t *testing.T) {
	for _, tc := range []struct {
		name   string
		env    map[string]string
		expErr bool
		check  func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != 5000 || cfg.AdminKey != "admin" || cfg.Database.Driver != DriverSQLite {
					t.Errorf("exp defaults, got %+v", cfg)
				}
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"PORT":                 "9000",
				"DB_DRIVER":            "memory",
				"YOUTUBE_API_KEY":      "key",
				"YOUTUBE_RPS":          "2.5",
				"FEED_MAX_AGE":         "30m",
				"REFRESH_WORKERS":      "4",
				"MINIFLUX_ENDPOINT":    "http://flux/v1",
				"POSTGRES_DB":          "other",
				"PREVIEW_LIMIT":        "5",
				"REFRESH_QUEUE":        "8",
				"SWEEP_EVERY":          "6h",
				"MINIFLUX_CATEGORY_ID": "3",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != 9000 {
					t.Errorf("exp 9000, got %d", cfg.Port)
				}
				if cfg.Database.Driver != DriverMemory || cfg.Database.Postgres.Database != "other" {
					t.Errorf("unexpected database %+v", cfg.Database)
				}
				if cfg.Youtube.APIKey != "key" || cfg.Youtube.RequestsPerSecond != 2.5 {
					t.Errorf("unexpected youtube %+v", cfg.Youtube)
				}
				if cfg.Feeds.MaxAge != 30*time.Minute || cfg.Feeds.RefreshWorkers != 4 {
					t.Errorf("unexpected feeds %+v", cfg.Feeds)
				}
				if cfg.Miniflux.Endpoint != "http://flux/v1" || cfg.Miniflux.CategoryID != 3 {
					t.Errorf("unexpected miniflux %+v", cfg.Miniflux)
				}
				if cfg.Youtube.PreviewLimit != 5 || cfg.Feeds.RefreshQueue != 8 || cfg.Audio.SweepEvery != 6*time.Hour {
					t.Errorf("unexpected limits %d %d %v", cfg.Youtube.PreviewLimit, cfg.Feeds.RefreshQueue, cfg.Audio.SweepEvery)
				}
			},
		},
		{
			name:   "bad port",
			env:    map[string]string{"PORT": "five"},
			expErr: true,
		},
		{
			name:   "bad category",
			env:    map[string]string{"MINIFLUX_CATEGORY_ID": "news"},
			expErr: true,
		},
		{
			name:   "bad duration",
			env:    map[string]string{"CACHE_RETENTION": "forever", "YOUTUBE_RPS": "fast"},
			expErr: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.applyEnv(func(key string) (string, bool) {
				val, ok := tc.env[key]
				return val, ok
			})
			if tc.expErr {
				if err == nil {
					t.Error("exp error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil, got %v", err)
			}
			tc.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		change func(cfg *Config)
		expErr string
	}{
		{name: "defaults", change: func(cfg *Config) {}},
		{name: "unknown driver", change: func(cfg *Config) { cfg.Database.Driver = "mysql" }, expErr: "unknown database driver"},
		{name: "empty base url", change: func(cfg *Config) { cfg.BaseURL = "" }, expErr: "base_url is required"},
		{name: "zero max age", change: func(cfg *Config) { cfg.Feeds.MaxAge = 0 }, expErr: "max_age"},
		{name: "negative retention", change: func(cfg *Config) { cfg.Audio.Retention = -time.Hour }, expErr: "retention"},
		{name: "sqlite without path", change: func(cfg *Config) { cfg.Database.Path = "" }, expErr: "path is required"},
		{name: "log format", change: func(cfg *Config) { cfg.Log.Format = "xml" }, expErr: "log format"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.change(cfg)
			err := cfg.Validate()
			if tc.expErr == "" {
				if err != nil {
					t.Errorf("exp nil, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.expErr) {
				t.Errorf("exp error containing %q, got %v", tc.expErr, err)
			}
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := Default()
	if cfg.SQLitePath() != "tubecast.db" {
		t.Errorf("exp default path, got %q", cfg.SQLitePath())
	}
	cfg.Database.DSN = "file::memory:"
	if cfg.SQLitePath() != "file::memory:" {
		t.Errorf("exp dsn, got %q", cfg.SQLitePath())
	}
}
