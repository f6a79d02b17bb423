package process

import (
	"context"
	"sync"
	"time"

	"ewintr.nl/tubecast/model"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"
)

// RebuildFunc regenerates the stored document of one feed. A failed rebuild
// must leave the stored feed untouched.
type RebuildFunc func(ctx context.Context, feedID string) error

// Refresher rebuilds stale feeds in the background. A feed id is queued at
// most once and only one rebuild per feed id runs at any time.
type Refresher struct {
	in      chan string
	rebuild RebuildFunc
	maxAge  time.Duration
	group   singleflight.Group
	mu      sync.Mutex
	pending map[string]struct{}
	now     func() time.Time
	logger  *slog.Logger
}

func NewRefresher(rebuild RebuildFunc, maxAge time.Duration, queueSize int, logger *slog.Logger) *Refresher {
	if queueSize < 1 {
		queueSize = 1
	}

	return &Refresher{
		in:      make(chan string, queueSize),
		rebuild: rebuild,
		maxAge:  maxAge,
		pending: map[string]struct{}{},
		now:     time.Now,
		logger:  logger,
	}
}

// Run starts the workers and blocks until ctx is done.
func (r *Refresher) Run(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}

	r.logger.Info("started refresher", slog.Int("workers", workers))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case feedID := <-r.in:
					r.Refresh(ctx, feedID)
					r.done(feedID)
				}
			}
		}()
	}
	wg.Wait()
	r.logger.Info("stopped refresher")
}

// Observe schedules a rebuild when feed is stale and reports whether one is
// queued or running for it. It never blocks.
func (r *Refresher) Observe(feed *model.Feed) bool {
	if !feed.Stale(r.now(), r.maxAge) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pending[feed.ID]; ok {
		return true
	}
	select {
	case r.in <- feed.ID:
		r.pending[feed.ID] = struct{}{}
		r.logger.Info("feed is stale, scheduled rebuild", slog.String("feedid", feed.ID), slog.Time("lastupdated", feed.LastUpdated))
		return true
	default:
		r.logger.Error("refresh queue full, skipping rebuild", slog.String("feedid", feed.ID))
		return false
	}
}

// Refresh rebuilds the feed now. Concurrent calls for the same feed id share
// one rebuild.
func (r *Refresher) Refresh(ctx context.Context, feedID string) error {
	_, err, shared := r.group.Do(feedID, func() (any, error) {
		jobID := uuid.New().String()
		start := r.now()
		r.logger.Info("rebuilding feed", slog.String("feedid", feedID), slog.String("job", jobID))
		if err := r.rebuild(ctx, feedID); err != nil {
			r.logger.Error("could not rebuild feed", slog.String("feedid", feedID), slog.String("job", jobID), slog.String("error", err.Error()))
			return nil, err
		}
		r.logger.Info("rebuilt feed", slog.String("feedid", feedID), slog.String("job", jobID), slog.Duration("took", r.now().Sub(start)))
		return nil, nil
	})
	if shared {
		r.logger.Info("joined running rebuild", slog.String("feedid", feedID))
	}

	return err
}

func (r *Refresher) done(feedID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending, feedID)
}
