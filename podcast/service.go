package podcast

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/tubecast/audio"
	"ewintr.nl/tubecast/feed"
	"ewintr.nl/tubecast/fetcher"
	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("channel already exists")
	ErrAccessDenied = errors.New("access denied")
	ErrInvalidInput = errors.New("invalid input")

	ErrUnresolved = fetcher.ErrUnresolved
	ErrUpstream   = fetcher.ErrUpstream
	ErrNoChannel  = fetcher.ErrNoChannel
	ErrNoVideos   = fetcher.ErrNoVideos
	ErrExtraction = audio.ErrExtraction
)

type Resolver interface {
	Resolve(ctx context.Context, ref string) (model.YoutubeChannelID, error)
}

type MetadataSource interface {
	Channel(ctx context.Context, id model.YoutubeChannelID) (*model.Channel, error)
	Videos(ctx context.Context, ch *model.Channel, max int64) ([]model.Video, error)
}

// Observer is told about every feed that is read, so it can schedule a
// rebuild when the feed is stale.
type Observer interface {
	Observe(feed *model.Feed) bool
}

type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Config struct {
	BaseURL      string
	AdminKey     string
	MaxResults   int64
	PreviewLimit int64
}

type Service struct {
	feeds     storage.FeedRepository
	videos    storage.VideoCacheRepository
	channels  storage.ChannelRepository
	resolver  Resolver
	metadata  MetadataSource
	extractor audio.Extractor
	sweeper   Sweeper
	announcer feed.Announcer
	observer  Observer
	config    Config
	now       func() time.Time
	logger    *slog.Logger
}

func New(feeds storage.FeedRepository, videos storage.VideoCacheRepository, channels storage.ChannelRepository, resolver Resolver, metadata MetadataSource, extractor audio.Extractor, sweeper Sweeper, announcer feed.Announcer, config Config, logger *slog.Logger) *Service {
	if config.MaxResults <= 0 {
		config.MaxResults = 50
	}
	if config.PreviewLimit <= 0 {
		config.PreviewLimit = 10
	}
	if announcer == nil {
		announcer = feed.Nop{}
	}

	return &Service{
		feeds:     feeds,
		videos:    videos,
		channels:  channels,
		resolver:  resolver,
		metadata:  metadata,
		extractor: extractor,
		sweeper:   sweeper,
		announcer: announcer,
		config:    config,
		now:       time.Now,
		logger:    logger,
	}
}

// SetObserver installs the freshness check that runs on every feed read.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

func (s *Service) FeedURL(feedID string) string {
	return feed.FeedURL(s.config.BaseURL, feedID)
}

func (s *Service) announce(ctx context.Context, feedID string) {
	if err := s.announcer.Announce(ctx, s.FeedURL(feedID)); err != nil {
		s.logger.Error("could not announce feed", slog.String("feedid", feedID), slog.String("error", err.Error()))
	}
}
