package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
)

const (
	upstreamTimeLayout = "2006-01-02T15:04:05Z"
	feedTimeLayout     = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// MetadataFetcher collects channel metadata and its uploads, filling in
// duration and size from the video cache where possible.
type MetadataFetcher struct {
	provider Provider
	cache    storage.VideoCacheRepository
	now      func() time.Time
	logger   *slog.Logger
}

func NewMetadataFetcher(provider Provider, cache storage.VideoCacheRepository, logger *slog.Logger) *MetadataFetcher {
	return &MetadataFetcher{
		provider: provider,
		cache:    cache,
		now:      time.Now,
		logger:   logger,
	}
}

func (m *MetadataFetcher) Channel(ctx context.Context, id model.YoutubeChannelID) (*model.Channel, error) {
	ch, err := m.provider.Channel(ctx, id)
	if err != nil {
		m.logger.Error("could not fetch channel", slog.String("channelid", string(id)), slog.String("error", err.Error()))
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return ch, nil
}

// Videos returns at most max uploads of the channel, newest first as the
// uploads playlist lists them.
func (m *MetadataFetcher) Videos(ctx context.Context, ch *model.Channel, max int64) ([]model.Video, error) {
	entries, err := m.provider.PlaylistItems(ctx, ch.UploadsPlaylistID, max)
	if err != nil {
		m.logger.Error("could not fetch uploads", slog.String("channelid", string(ch.ID)), slog.String("error", err.Error()))
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(entries) == 0 {
		return nil, ErrNoVideos
	}

	videos := make([]model.Video, 0, len(entries))
	for _, entry := range entries {
		published, err := time.Parse(upstreamTimeLayout, entry.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid publish date %q for video %s", ErrUpstream, entry.PublishedAt, entry.VideoID)
		}

		duration, size := m.durationAndSize(ctx, entry.VideoID)
		videos = append(videos, model.Video{
			ID:          entry.VideoID,
			Title:       entry.Title,
			Description: entry.Description,
			Thumbnail:   entry.Thumbnail,
			PublishedAt: published.Format(feedTimeLayout),
			URL:         entry.VideoID.WatchURL(),
			Duration:    duration,
			FileSize:    size,
		})
	}
	m.logger.Info("fetched videos", slog.String("channelid", string(ch.ID)), slog.Int("count", len(videos)))

	return videos, nil
}

func (m *MetadataFetcher) durationAndSize(ctx context.Context, id model.YoutubeVideoID) (string, int64) {
	cached, err := m.cache.FindByID(ctx, id)
	switch {
	case err == nil:
		if err := m.cache.Touch(ctx, id, m.now()); err != nil {
			m.logger.Error("could not touch cached video", slog.String("id", string(id)), slog.String("error", err.Error()))
		}
		return cached.Duration, cached.FileSize
	case !errors.Is(err, storage.ErrNotFound):
		m.logger.Error("could not read video cache", slog.String("id", string(id)), slog.String("error", err.Error()))
	}

	iso, err := m.provider.VideoDuration(ctx, id)
	if err != nil {
		m.logger.Error("could not fetch video details", slog.String("id", string(id)), slog.String("error", err.Error()))
		return "00:00", 0
	}
	d, ok := ParseISODuration(iso)
	if !ok {
		return "00:00", 0
	}

	return model.FormatDuration(d), model.EstimateSize(d)
}
