package podcast

import (
	"context"
	"crypto/subtle"

	"golang.org/x/exp/slog"
)

// Cleanup runs the retention sweep when key matches the admin key and
// returns the number of audio files removed.
func (s *Service) Cleanup(ctx context.Context, key string) (int, error) {
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.config.AdminKey)) != 1 {
		s.logger.Info("cleanup refused")
		return 0, ErrAccessDenied
	}

	count, err := s.sweeper.Sweep(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("cleanup done", slog.Int("removed", count))

	return count, nil
}
