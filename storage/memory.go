package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"ewintr.nl/tubecast/model"
)

// Memory holds all repositories in process memory. Nothing survives a
// restart.
type Memory struct {
	mu       sync.RWMutex
	feeds    map[string]model.Feed
	videos   map[model.YoutubeVideoID]model.CachedVideo
	channels map[string]model.ChannelRecord
}

func NewMemory() *Memory {
	return &Memory{
		feeds:    map[string]model.Feed{},
		videos:   map[model.YoutubeVideoID]model.CachedVideo{},
		channels: map[string]model.ChannelRecord{},
	}
}

func (m *Memory) Feeds() *MemoryFeedRepository {
	return &MemoryFeedRepository{m: m}
}

func (m *Memory) Videos() *MemoryVideoCacheRepository {
	return &MemoryVideoCacheRepository{m: m}
}

func (m *Memory) Channels() *MemoryChannelRepository {
	return &MemoryChannelRepository{m: m}
}

type MemoryFeedRepository struct {
	m *Memory
}

func (r *MemoryFeedRepository) FindByID(_ context.Context, id string) (*model.Feed, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	feed, ok := r.m.feeds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &feed, nil
}

func (r *MemoryFeedRepository) Save(_ context.Context, feed *model.Feed) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	r.m.feeds[feed.ID] = *feed
	return nil
}

func (r *MemoryFeedRepository) List(_ context.Context) ([]*model.Feed, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	feeds := make([]*model.Feed, 0, len(r.m.feeds))
	for _, f := range r.m.feeds {
		feed := f
		feeds = append(feeds, &feed)
	}
	sort.Slice(feeds, func(i, j int) bool {
		return feeds[i].LastUpdated.After(feeds[j].LastUpdated)
	})

	return feeds, nil
}

type MemoryVideoCacheRepository struct {
	m *Memory
}

func (r *MemoryVideoCacheRepository) FindByID(_ context.Context, id model.YoutubeVideoID) (*model.CachedVideo, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	video, ok := r.m.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &video, nil
}

func (r *MemoryVideoCacheRepository) Save(_ context.Context, video *model.CachedVideo) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	v := *video
	if v.Duration == "" {
		v.Duration = "00:00"
	}
	r.m.videos[video.ID] = v
	return nil
}

func (r *MemoryVideoCacheRepository) Touch(_ context.Context, id model.YoutubeVideoID, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	video, ok := r.m.videos[id]
	if !ok {
		return ErrNotFound
	}
	video.LastAccessed = at
	r.m.videos[id] = video
	return nil
}

func (r *MemoryVideoCacheRepository) FindNotAccessedSince(_ context.Context, before time.Time) ([]*model.CachedVideo, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	videos := []*model.CachedVideo{}
	for _, v := range r.m.videos {
		if v.LastAccessed.Before(before) {
			video := v
			videos = append(videos, &video)
		}
	}
	sort.Slice(videos, func(i, j int) bool {
		return videos[i].LastAccessed.Before(videos[j].LastAccessed)
	})

	return videos, nil
}

func (r *MemoryVideoCacheRepository) Delete(_ context.Context, id model.YoutubeVideoID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	delete(r.m.videos, id)
	return nil
}

type MemoryChannelRepository struct {
	m *Memory
}

func (r *MemoryChannelRepository) FindByID(_ context.Context, id string) (*model.ChannelRecord, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	channel, ok := r.m.channels[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &channel, nil
}

func (r *MemoryChannelRepository) FindByChannelID(_ context.Context, channelID model.YoutubeChannelID) (*model.ChannelRecord, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, c := range r.m.channels {
		if c.ChannelID == channelID {
			channel := c
			return &channel, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryChannelRepository) Create(_ context.Context, channel *model.ChannelRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.channels[channel.ID]; ok {
		return ErrExists
	}
	for _, c := range r.m.channels {
		if c.ChannelID == channel.ChannelID {
			return ErrExists
		}
	}
	r.m.channels[channel.ID] = *channel
	return nil
}

func (r *MemoryChannelRepository) Save(_ context.Context, channel *model.ChannelRecord) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	c := *channel
	if existing, ok := r.m.channels[channel.ID]; ok {
		c.CreatedAt = existing.CreatedAt
	}
	r.m.channels[channel.ID] = c
	return nil
}

func (r *MemoryChannelRepository) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.channels[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.channels, id)
	return nil
}

func (r *MemoryChannelRepository) List(_ context.Context) ([]*model.ChannelRecord, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	channels := make([]*model.ChannelRecord, 0, len(r.m.channels))
	for _, c := range r.m.channels {
		channel := c
		channels = append(channels, &channel)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].UpdatedAt.After(channels[j].UpdatedAt)
	})

	return channels, nil
}
