package storage

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/tubecast/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

type FeedRepository interface {
	FindByID(ctx context.Context, id string) (*model.Feed, error)
	// Save inserts the feed or replaces the stored one with the same id.
	Save(ctx context.Context, feed *model.Feed) error
	List(ctx context.Context) ([]*model.Feed, error)
}

type VideoCacheRepository interface {
	FindByID(ctx context.Context, id model.YoutubeVideoID) (*model.CachedVideo, error)
	Save(ctx context.Context, video *model.CachedVideo) error
	Touch(ctx context.Context, id model.YoutubeVideoID, at time.Time) error
	FindNotAccessedSince(ctx context.Context, before time.Time) ([]*model.CachedVideo, error)
	Delete(ctx context.Context, id model.YoutubeVideoID) error
}

type ChannelRepository interface {
	FindByID(ctx context.Context, id string) (*model.ChannelRecord, error)
	FindByChannelID(ctx context.Context, channelID model.YoutubeChannelID) (*model.ChannelRecord, error)
	// Create fails with ErrExists when the id or the channel id is taken.
	Create(ctx context.Context, channel *model.ChannelRecord) error
	Save(ctx context.Context, channel *model.ChannelRecord) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.ChannelRecord, error)
}
