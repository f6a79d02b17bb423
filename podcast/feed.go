package podcast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ewintr.nl/tubecast/feed"
	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
)

type Preview struct {
	Channel *model.Channel `json:"channel"`
	Videos  []model.Video  `json:"videos"`
	FeedURL string         `json:"feed_url"`
}

type FeedStatus struct {
	FeedID        string
	ChannelID     model.YoutubeChannelID
	ChannelTitle  string
	LastUpdated   time.Time
	HasRSSContent bool
}

// NormalizeReference turns a bare handle or name into a handle url. Input
// that already points at YouTube is returned as is.
func NormalizeReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "youtube.com") || strings.Contains(ref, "youtu.be") {
		return ref
	}
	if strings.HasPrefix(ref, "@") {
		return "https://www.youtube.com/" + ref
	}
	return "https://www.youtube.com/@" + ref
}

// GenerateFeed resolves ref and builds its feed. When the feed for the
// channel already exists, its id is returned without rebuilding. This makes
// several sequential upstream calls.
func (s *Service) GenerateFeed(ctx context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", fmt.Errorf("%w: a youtube url is required", ErrInvalidInput)
	}

	channelID, err := s.resolver.Resolve(ctx, NormalizeReference(ref))
	if err != nil {
		return "", err
	}
	feedID := model.FeedIDFor(channelID)

	switch _, err := s.feeds.FindByID(ctx, feedID); {
	case err == nil:
		s.logger.Info("feed already exists", slog.String("feedid", feedID), slog.String("channelid", string(channelID)))
		return feedID, nil
	case !errors.Is(err, storage.ErrNotFound):
		return "", err
	}

	ch, err := s.metadata.Channel(ctx, channelID)
	if err != nil {
		return "", err
	}
	videos, err := s.metadata.Videos(ctx, ch, s.config.MaxResults)
	if err != nil {
		return "", err
	}
	if _, err := s.storeFeed(ctx, channelID, ch, ch.Title, videos); err != nil {
		return "", err
	}

	if err := s.upsertChannelRecord(ctx, channelID, ch, int64(len(videos))); err != nil {
		s.logger.Error("could not save channel record", slog.String("channelid", string(channelID)), slog.String("error", err.Error()))
	}
	s.announce(ctx, feedID)

	return feedID, nil
}

// ReadFeed returns the stored feed. A stale feed is returned as is while a
// rebuild is scheduled.
func (s *Service) ReadFeed(ctx context.Context, feedID string) (*model.Feed, error) {
	f, err := s.findFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.Observe(f)
	}

	return f, nil
}

// RebuildFeed fetches the channel again and replaces the stored document.
// On any failure the stored feed is left as it was.
func (s *Service) RebuildFeed(ctx context.Context, feedID string) error {
	f, err := s.findFeed(ctx, feedID)
	if err != nil {
		return err
	}
	ch, err := s.metadata.Channel(ctx, f.ChannelID)
	if err != nil {
		return err
	}
	videos, err := s.metadata.Videos(ctx, ch, s.config.MaxResults)
	if err != nil {
		return err
	}
	_, err = s.storeFeed(ctx, f.ChannelID, ch, f.ChannelTitle, videos)

	return err
}

// PreviewFeed shows what the feed for a feed id or channel record id looks
// like, without storing anything.
func (s *Service) PreviewFeed(ctx context.Context, id string) (*Preview, error) {
	var channelID model.YoutubeChannelID
	f, err := s.feeds.FindByID(ctx, id)
	switch {
	case err == nil:
		channelID = f.ChannelID
	case errors.Is(err, storage.ErrNotFound):
		rec, err := s.channels.FindByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: feed or channel %s", ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}
		channelID = rec.ChannelID
	default:
		return nil, err
	}

	ch, err := s.metadata.Channel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	videos, err := s.metadata.Videos(ctx, ch, s.config.PreviewLimit)
	if err != nil {
		return nil, err
	}

	return &Preview{
		Channel: ch,
		Videos:  videos,
		FeedURL: s.FeedURL(model.FeedIDFor(channelID)),
	}, nil
}

func (s *Service) CheckFeed(ctx context.Context, feedID string) (*FeedStatus, error) {
	f, err := s.findFeed(ctx, feedID)
	if err != nil {
		return nil, err
	}

	return &FeedStatus{
		FeedID:        f.ID,
		ChannelID:     f.ChannelID,
		ChannelTitle:  f.ChannelTitle,
		LastUpdated:   f.LastUpdated,
		HasRSSContent: f.RSS != "",
	}, nil
}

func (s *Service) ListFeeds(ctx context.Context) ([]*model.Feed, error) {
	return s.feeds.List(ctx)
}

// CreateFeedForChannel makes sure the channel record has a feed. It reports
// whether the feed was newly created.
func (s *Service) CreateFeedForChannel(ctx context.Context, recordID string) (*model.Feed, bool, error) {
	if recordID == "" {
		return nil, false, fmt.Errorf("%w: channel_id is required", ErrInvalidInput)
	}
	rec, err := s.channels.FindByID(ctx, recordID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("%w: channel %s", ErrNotFound, recordID)
	}
	if err != nil {
		return nil, false, err
	}

	f, err := s.feeds.FindByID(ctx, model.FeedIDFor(rec.ChannelID))
	if err == nil {
		return f, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}

	f, err = s.buildForRecord(ctx, rec)
	if err != nil {
		return nil, false, err
	}

	return f, true, nil
}

func (s *Service) buildForRecord(ctx context.Context, rec *model.ChannelRecord) (*model.Feed, error) {
	ch, err := s.metadata.Channel(ctx, rec.ChannelID)
	if err != nil {
		return nil, err
	}
	videos, err := s.metadata.Videos(ctx, ch, s.config.MaxResults)
	switch {
	case errors.Is(err, ErrNoVideos):
		videos = []model.Video{}
	case err != nil:
		return nil, err
	}

	f, err := s.storeFeed(ctx, rec.ChannelID, ch, rec.Title, videos)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, f.ID)

	return f, nil
}

func (s *Service) storeFeed(ctx context.Context, channelID model.YoutubeChannelID, ch *model.Channel, title string, videos []model.Video) (*model.Feed, error) {
	feedID := model.FeedIDFor(channelID)
	doc, err := feed.Build(ch, videos, s.config.BaseURL, feedID)
	if err != nil {
		return nil, err
	}

	f := &model.Feed{
		ID:           feedID,
		ChannelID:    channelID,
		ChannelTitle: title,
		RSS:          doc,
		LastUpdated:  s.now().UTC(),
	}
	if err := s.feeds.Save(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("stored feed", slog.String("feedid", feedID), slog.String("channelid", string(channelID)), slog.Int("videos", len(videos)))

	return f, nil
}

func (s *Service) findFeed(ctx context.Context, feedID string) (*model.Feed, error) {
	f, err := s.feeds.FindByID(ctx, feedID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: feed %s", ErrNotFound, feedID)
	}

	return f, err
}
