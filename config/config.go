package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port     int            `yaml:"port"`
	BaseURL  string         `yaml:"base_url"`
	AdminKey string         `yaml:"admin_key"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Youtube  YoutubeConfig  `yaml:"youtube"`
	Audio    AudioConfig    `yaml:"audio"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Miniflux MinifluxConfig `yaml:"miniflux"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	Driver   string         `yaml:"driver"`
	DSN      string         `yaml:"dsn"`
	Path     string         `yaml:"path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type YoutubeConfig struct {
	APIKey            string  `yaml:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	MaxResults        int     `yaml:"max_results"`
	PreviewLimit      int     `yaml:"preview_limit"`
}

type AudioConfig struct {
	CacheDir    string        `yaml:"cache_dir"`
	YtDlpPath   string        `yaml:"ytdlp_path"`
	FfprobePath string        `yaml:"ffprobe_path"`
	Retention   time.Duration `yaml:"retention"`
	SweepEvery  time.Duration `yaml:"sweep_every"`
}

type FeedsConfig struct {
	MaxAge         time.Duration `yaml:"max_age"`
	RefreshWorkers int           `yaml:"refresh_workers"`
	RefreshQueue   int           `yaml:"refresh_queue"`
}

type MinifluxConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	CategoryID int64  `yaml:"category_id"`
}

func Default() *Config {
	return &Config{
		Port:     5000,
		BaseURL:  "http://localhost:5000",
		AdminKey: "admin",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "tubecast.db",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     "5432",
				User:     "tubecast",
				Password: "tubecast",
				Database: "tubecast",
			},
		},
		Youtube: YoutubeConfig{
			RequestsPerSecond: 10,
			MaxResults:        50,
			PreviewLimit:      10,
		},
		Audio: AudioConfig{
			CacheDir:    "audio_cache",
			YtDlpPath:   "yt-dlp",
			FfprobePath: "ffprobe",
			Retention:   30 * 24 * time.Hour,
			SweepEvery:  24 * time.Hour,
		},
		Feeds: FeedsConfig{
			MaxAge:         time.Hour,
			RefreshWorkers: 2,
			RefreshQueue:   64,
		},
	}
}

// Load starts from the defaults, applies the yaml file at path when one is
// given and finally the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, cfg.Validate()
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(param string, dst *string) {
		if val, ok := lookup(param); ok {
			*dst = val
		}
	}
	var errs []error
	integer := func(param string, dst *int) {
		if val, ok := lookup(param); ok {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", param, err))
				return
			}
			*dst = i
		}
	}
	duration := func(param string, dst *time.Duration) {
		if val, ok := lookup(param); ok {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", param, err))
				return
			}
			*dst = d
		}
	}

	integer("PORT", &c.Port)
	str("BASE_URL", &c.BaseURL)
	str("ADMIN_KEY", &c.AdminKey)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	str("DB_DRIVER", &c.Database.Driver)
	str("DB_DSN", &c.Database.DSN)
	str("DB_PATH", &c.Database.Path)
	str("POSTGRES_HOST", &c.Database.Postgres.Host)
	str("POSTGRES_PORT", &c.Database.Postgres.Port)
	str("POSTGRES_USER", &c.Database.Postgres.User)
	str("POSTGRES_PASSWORD", &c.Database.Postgres.Password)
	str("POSTGRES_DB", &c.Database.Postgres.Database)

	str("YOUTUBE_API_KEY", &c.Youtube.APIKey)
	if val, ok := lookup("YOUTUBE_RPS"); ok {
		rps, err := strconv.ParseFloat(val, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("YOUTUBE_RPS: %w", err))
		} else {
			c.Youtube.RequestsPerSecond = rps
		}
	}
	integer("MAX_RESULTS", &c.Youtube.MaxResults)
	integer("PREVIEW_LIMIT", &c.Youtube.PreviewLimit)

	str("AUDIO_CACHE_DIR", &c.Audio.CacheDir)
	str("YTDLP_PATH", &c.Audio.YtDlpPath)
	str("FFPROBE_PATH", &c.Audio.FfprobePath)
	duration("CACHE_RETENTION", &c.Audio.Retention)
	duration("SWEEP_EVERY", &c.Audio.SweepEvery)

	duration("FEED_MAX_AGE", &c.Feeds.MaxAge)
	integer("REFRESH_WORKERS", &c.Feeds.RefreshWorkers)
	integer("REFRESH_QUEUE", &c.Feeds.RefreshQueue)

	str("MINIFLUX_ENDPOINT", &c.Miniflux.Endpoint)
	str("MINIFLUX_APIKEY", &c.Miniflux.APIKey)
	if val, ok := lookup("MINIFLUX_CATEGORY_ID"); ok {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MINIFLUX_CATEGORY_ID: %w", err))
		} else {
			c.Miniflux.CategoryID = id
		}
	}

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	case DriverSQLite:
		if c.Database.Path == "" && c.Database.DSN == "" {
			errs = append(errs, errors.New("database path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if c.Audio.CacheDir == "" {
		errs = append(errs, errors.New("audio cache_dir is required"))
	}
	if c.Audio.Retention <= 0 {
		errs = append(errs, errors.New("audio retention must be > 0"))
	}
	if c.Audio.SweepEvery <= 0 {
		errs = append(errs, errors.New("audio sweep_every must be > 0"))
	}
	if c.Feeds.MaxAge <= 0 {
		errs = append(errs, errors.New("feeds max_age must be > 0"))
	}
	if c.Feeds.RefreshWorkers <= 0 {
		errs = append(errs, errors.New("feeds refresh_workers must be > 0"))
	}
	if c.Youtube.MaxResults <= 0 {
		errs = append(errs, errors.New("youtube max_results must be > 0"))
	}
	if c.Youtube.PreviewLimit <= 0 {
		errs = append(errs, errors.New("youtube preview_limit must be > 0"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// SQLitePath is the database file, or the dsn when one is set.
func (c *Config) SQLitePath() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.Database.Path
}
