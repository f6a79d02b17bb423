package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"ewintr.nl/tubecast/audio"
	"ewintr.nl/tubecast/config"
	"ewintr.nl/tubecast/feed"
	"ewintr.nl/tubecast/fetcher"
	"ewintr.nl/tubecast/handler"
	"ewintr.nl/tubecast/podcast"
	"ewintr.nl/tubecast/process"
	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type repositories struct {
	feeds    storage.FeedRepository
	videos   storage.VideoCacheRepository
	channels storage.ChannelRepository
	closer   io.Closer
}

type app struct {
	cfg       *config.Config
	repos     repositories
	service   *podcast.Service
	refresher *process.Refresher
	sweeper   *process.Sweeper
	logger    *slog.Logger
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openRepositories(cfg *config.Config) (repositories, error) {
	var (
		db  *storage.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		mem := storage.NewMemory()
		return repositories{
			feeds:    mem.Feeds(),
			videos:   mem.Videos(),
			channels: mem.Channels(),
			closer:   nopCloser{},
		}, nil
	case config.DriverPostgres:
		pg := cfg.Database.Postgres
		db, err = storage.NewPostgres(cfg.Database.DSN, storage.PostgresInfo{
			Host:     pg.Host,
			Port:     pg.Port,
			User:     pg.User,
			Password: pg.Password,
			Database: pg.Database,
		})
	default:
		db, err = storage.NewSQLite(cfg.SQLitePath())
	}
	if err != nil {
		return repositories{}, err
	}

	return repositories{
		feeds:    storage.NewSQLFeedRepository(db),
		videos:   storage.NewSQLVideoCacheRepository(db),
		channels: storage.NewSQLChannelRepository(db),
		closer:   db,
	}, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	repos, err := openRepositories(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to open storage: %w", err)
	}

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(cfg.Youtube.APIKey))
	if err != nil {
		repos.closer.Close()
		return nil, fmt.Errorf("unable to create youtube service: %w", err)
	}
	yt := fetcher.NewYoutube(ytClient, cfg.Youtube.RequestsPerSecond)

	extractor, err := audio.NewYtDlp(audio.YtDlpInfo{
		YtDlpPath:   cfg.Audio.YtDlpPath,
		FfprobePath: cfg.Audio.FfprobePath,
		CacheDir:    cfg.Audio.CacheDir,
	}, logger)
	if err != nil {
		repos.closer.Close()
		return nil, fmt.Errorf("unable to prepare audio cache: %w", err)
	}

	var announcer feed.Announcer = feed.Nop{}
	if cfg.Miniflux.Endpoint != "" {
		announcer = feed.NewMiniflux(feed.MinifluxInfo{
			Endpoint:   cfg.Miniflux.Endpoint,
			ApiKey:     cfg.Miniflux.APIKey,
			CategoryID: cfg.Miniflux.CategoryID,
		}, logger)
	}

	sweeper := process.NewSweeper(repos.videos, cfg.Audio.Retention, logger)
	svc := podcast.New(
		repos.feeds, repos.videos, repos.channels,
		fetcher.NewResolver(yt, logger),
		fetcher.NewMetadataFetcher(yt, repos.videos, logger),
		extractor, sweeper, announcer,
		podcast.Config{
			BaseURL:      cfg.BaseURL,
			AdminKey:     cfg.AdminKey,
			MaxResults:   int64(cfg.Youtube.MaxResults),
			PreviewLimit: int64(cfg.Youtube.PreviewLimit),
		},
		logger,
	)
	refresher := process.NewRefresher(svc.RebuildFeed, cfg.Feeds.MaxAge, cfg.Feeds.RefreshQueue, logger)
	svc.SetObserver(refresher)

	return &app{
		cfg:       cfg,
		repos:     repos,
		service:   svc,
		refresher: refresher,
		sweeper:   sweeper,
		logger:    logger,
	}, nil
}

func (a *app) server() *handler.Server {
	return handler.NewServer(a.logger,
		handler.NewFeedAPI(a.service, a.logger),
		handler.NewChannelAPI(a.service, a.logger),
		handler.NewAudioAPI(a.service, a.logger),
		handler.NewAdminAPI(a.service, a.logger),
	)
}

func (a *app) Close() {
	if err := a.repos.closer.Close(); err != nil {
		a.logger.Error("unable to close storage", slog.String("error", err.Error()))
	}
}

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}
