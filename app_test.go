package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"ewintr.nl/tubecast/config"
	"golang.org/x/exp/slog"
)

func TestNewLogger(t *testing.T) {
	for _, tc := range []struct {
		name    string
		level   string
		format  string
		expErr  bool
		expText string
	}{
		{name: "text", level: "info", format: "text", expText: "level=INFO"},
		{name: "json", level: "debug", format: "json", expText: `"level":"INFO"`},
		{name: "bad level", level: "loud", format: "text", expErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Log.Level = tc.level
			cfg.Log.Format = tc.format
			var buf bytes.Buffer
			logger, err := newLogger(cfg, &buf)
			if tc.expErr {
				if err == nil {
					t.Error("exp error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("exp nil, got %v", err)
			}
			logger.Info("hello")
			if !strings.Contains(buf.String(), tc.expText) {
				t.Errorf("exp %q in %q", tc.expText, buf.String())
			}
		})
	}
}

func TestNewApp(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.Default()
			cfg.Database.Driver = driver
			cfg.Database.Path = filepath.Join(dir, "tubecast.db")
			cfg.Audio.CacheDir = filepath.Join(dir, "audio")
			cfg.Youtube.APIKey = "test"
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			a, err := newApp(context.Background(), cfg, logger)
			if err != nil {
				t.Fatalf("exp nil, got %v", err)
			}
			defer a.Close()

			srv := httptest.NewServer(a.server())
			defer srv.Close()

			resp, err := http.Get(srv.URL + "/health")
			if err != nil {
				t.Fatalf("exp nil, got %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Errorf("exp 200, got %d", resp.StatusCode)
			}

			resp, err = http.Get(srv.URL + "/api/feeds")
			if err != nil {
				t.Fatalf("exp nil, got %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if string(body) != `{"feeds":[]}` {
				t.Errorf("exp empty feed list, got %s", body)
			}

			count, err := a.sweeper.Sweep(context.Background())
			if err != nil || count != 0 {
				t.Errorf("exp empty sweep, got %d %v", count, err)
			}
		})
	}
}
