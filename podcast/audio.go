package podcast

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ewintr.nl/tubecast/model"
	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
)

// StreamAudio starts a live pass-through of the audio of a video. The caller
// must close the stream.
func (s *Service) StreamAudio(ctx context.Context, videoID model.YoutubeVideoID) (io.ReadCloser, error) {
	if !videoID.Valid() {
		return nil, fmt.Errorf("%w: video id %q", ErrInvalidInput, videoID)
	}

	return s.extractor.OpenStream(ctx, videoID)
}

// ExtractAudio makes sure the audio of a video is on disk and records its
// measured size and duration in the video cache.
func (s *Service) ExtractAudio(ctx context.Context, videoID model.YoutubeVideoID) (*model.CachedVideo, error) {
	if !videoID.Valid() {
		return nil, fmt.Errorf("%w: video id %q", ErrInvalidInput, videoID)
	}

	art, err := s.extractor.Extract(ctx, videoID)
	if err != nil {
		return nil, err
	}

	cached, err := s.videos.FindByID(ctx, videoID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		title, err := s.extractor.Title(ctx, videoID)
		if err != nil {
			s.logger.Error("could not get video title", slog.String("id", string(videoID)), slog.String("error", err.Error()))
		}
		cached = &model.CachedVideo{ID: videoID, Title: title}
	case err != nil:
		return nil, err
	}

	cached.AudioPath = art.Path
	cached.FileSize = art.Size
	cached.Duration = model.FormatDuration(art.Duration)
	cached.LastAccessed = s.now().UTC()
	if err := s.videos.Save(ctx, cached); err != nil {
		return nil, err
	}

	return cached, nil
}
