package process

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"ewintr.nl/tubecast/storage"
	"golang.org/x/exp/slog"
)

// Sweeper removes cached videos, and their audio files, that were not
// accessed within the retention period.
type Sweeper struct {
	videos    storage.VideoCacheRepository
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewSweeper(videos storage.VideoCacheRepository, retention time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		videos:    videos,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	s.logger.Info("started sweeper", slog.Duration("interval", interval), slog.Duration("retention", s.retention))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sweep returns the number of audio files removed. Records are deleted even
// when their file is missing or cannot be removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.retention)
	expired, err := s.videos.FindNotAccessedSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, video := range expired {
		if video.AudioPath != "" {
			err := os.Remove(video.AudioPath)
			switch {
			case err == nil:
				count++
			case errors.Is(err, fs.ErrNotExist):
			default:
				s.logger.Error("could not remove audio file", slog.String("id", string(video.ID)), slog.String("path", video.AudioPath), slog.String("error", err.Error()))
			}
		}
		if err := s.videos.Delete(ctx, video.ID); err != nil {
			s.logger.Error("could not delete cached video", slog.String("id", string(video.ID)), slog.String("error", err.Error()))
		}
	}
	s.logger.Info("swept video cache", slog.Int("records", len(expired)), slog.Int("files", count))

	return count, nil
}
