package fetcher

import (
	"context"
	"fmt"

	"ewintr.nl/tubecast/model"
	"golang.org/x/time/rate"
	"google.golang.org/api/youtube/v3"
)

type PlaylistEntry struct {
	VideoID     model.YoutubeVideoID
	Title       string
	Description string
	Thumbnail   string
	PublishedAt string
}

// Provider is the read-only part of the YouTube Data API this service needs.
type Provider interface {
	// ChannelByHandle returns ErrNoChannel when no channel has the handle.
	ChannelByHandle(ctx context.Context, handle string) (model.YoutubeChannelID, error)
	// SearchChannel returns the first channel search hit for query.
	SearchChannel(ctx context.Context, query string) (model.YoutubeChannelID, error)
	Channel(ctx context.Context, id model.YoutubeChannelID) (*model.Channel, error)
	// PlaylistItems pages through a playlist until max entries are collected.
	PlaylistItems(ctx context.Context, playlistID string, max int64) ([]PlaylistEntry, error)
	// VideoDuration returns the raw ISO-8601 duration of a video.
	VideoDuration(ctx context.Context, id model.YoutubeVideoID) (string, error)
}

type Youtube struct {
	client  *youtube.Service
	limiter *rate.Limiter
}

// NewYoutube wraps the API client. Calls are spaced to at most rps per
// second; rps <= 0 disables the limit.
func NewYoutube(client *youtube.Service, rps float64) *Youtube {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &Youtube{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (y *Youtube) ChannelByHandle(ctx context.Context, handle string) (model.YoutubeChannelID, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := y.client.Channels.
		List([]string{"id"}).
		ForHandle(handle).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Id == "" {
		return "", ErrNoChannel
	}

	return model.YoutubeChannelID(resp.Items[0].Id), nil
}

func (y *Youtube) SearchChannel(ctx context.Context, query string) (model.YoutubeChannelID, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := y.client.Search.
		List([]string{"snippet"}).
		Q(query).
		Type("channel").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil || resp.Items[0].Snippet.ChannelId == "" {
		return "", ErrNoChannel
	}

	return model.YoutubeChannelID(resp.Items[0].Snippet.ChannelId), nil
}

func (y *Youtube) Channel(ctx context.Context, id model.YoutubeChannelID) (*model.Channel, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := y.client.Channels.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(string(id)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoChannel
	}

	item := resp.Items[0]
	if item.Snippet == nil || item.ContentDetails == nil || item.ContentDetails.RelatedPlaylists == nil ||
		item.ContentDetails.RelatedPlaylists.Uploads == "" {
		return nil, ErrNoChannel
	}

	ch := &model.Channel{
		ID:                id,
		Title:             item.Snippet.Title,
		Description:       item.Snippet.Description,
		Thumbnail:         thumbnail(item.Snippet.Thumbnails),
		UploadsPlaylistID: item.ContentDetails.RelatedPlaylists.Uploads,
		PublishedAt:       item.Snippet.PublishedAt,
		Country:           item.Snippet.Country,
	}
	if item.Id != "" {
		ch.ID = model.YoutubeChannelID(item.Id)
	}
	if stats := item.Statistics; stats != nil {
		ch.SubscriberCount = int64(stats.SubscriberCount)
		ch.VideoCount = int64(stats.VideoCount)
		ch.ViewCount = int64(stats.ViewCount)
	}

	return ch, nil
}

func (y *Youtube) PlaylistItems(ctx context.Context, playlistID string, max int64) ([]PlaylistEntry, error) {
	entries := []PlaylistEntry{}
	token := ""
	for int64(len(entries)) < max {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		call := y.client.PlaylistItems.
			List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(min(max-int64(len(entries)), 50)).
			Context(ctx)
		if token != "" {
			call = call.PageToken(token)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		for _, item := range resp.Items {
			if item.Snippet == nil {
				continue
			}
			entry := PlaylistEntry{
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				Thumbnail:   thumbnail(item.Snippet.Thumbnails),
				PublishedAt: item.Snippet.PublishedAt,
			}
			switch {
			case item.ContentDetails != nil && item.ContentDetails.VideoId != "":
				entry.VideoID = model.YoutubeVideoID(item.ContentDetails.VideoId)
			case item.Snippet.ResourceId != nil:
				entry.VideoID = model.YoutubeVideoID(item.Snippet.ResourceId.VideoId)
			}
			if entry.VideoID == "" {
				continue
			}
			entries = append(entries, entry)
			if int64(len(entries)) == max {
				break
			}
		}

		token = resp.NextPageToken
		if token == "" || len(resp.Items) == 0 {
			break
		}
	}

	return entries, nil
}

func (y *Youtube) VideoDuration(ctx context.Context, id model.YoutubeVideoID) (string, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := y.client.Videos.
		List([]string{"contentDetails"}).
		Id(string(id)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return "", fmt.Errorf("%w: no details for video %s", ErrUpstream, id)
	}

	return resp.Items[0].ContentDetails.Duration, nil
}

func thumbnail(td *youtube.ThumbnailDetails) string {
	if td == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{td.High, td.Medium, td.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}

	return ""
}
