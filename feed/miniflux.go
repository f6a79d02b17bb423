package feed

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"
	"miniflux.app/client"
)

type MinifluxInfo struct {
	Endpoint   string
	ApiKey     string
	CategoryID int64
}

// Announcer tells a feed reader about a newly created feed.
type Announcer interface {
	Announce(ctx context.Context, feedURL string) error
}

// Miniflux subscribes new feeds in a Miniflux instance.
type Miniflux struct {
	client     *client.Client
	categoryID int64
	logger     *slog.Logger
}

func NewMiniflux(mflInfo MinifluxInfo, logger *slog.Logger) *Miniflux {
	return &Miniflux{
		client:     client.New(mflInfo.Endpoint, mflInfo.ApiKey),
		categoryID: mflInfo.CategoryID,
		logger:     logger,
	}
}

func (m *Miniflux) Announce(_ context.Context, feedURL string) error {
	feeds, err := m.client.Feeds()
	if err != nil {
		return fmt.Errorf("could not list miniflux feeds: %w", err)
	}
	for _, f := range feeds {
		if f.FeedURL == feedURL {
			m.logger.Info("feed already subscribed", slog.String("url", feedURL))
			return nil
		}
	}

	categoryID := m.categoryID
	if categoryID == 0 {
		categories, err := m.client.Categories()
		if err != nil {
			return fmt.Errorf("could not list miniflux categories: %w", err)
		}
		if len(categories) == 0 {
			return fmt.Errorf("miniflux has no categories")
		}
		categoryID = categories[0].ID
	}

	id, err := m.client.CreateFeed(&client.FeedCreationRequest{
		FeedURL:    feedURL,
		CategoryID: categoryID,
	})
	if err != nil {
		return fmt.Errorf("could not subscribe feed: %w", err)
	}
	m.logger.Info("subscribed feed", slog.String("url", feedURL), slog.Int64("minifluxid", id))

	return nil
}

// Nop is used when no feed reader is configured.
type Nop struct{}

func (Nop) Announce(context.Context, string) error { return nil }
