package model

import (
	"regexp"
	"time"
)

type YoutubeVideoID string

type YoutubeChannelID string

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Valid reports whether the id is safe to hand to the extraction tool.
func (id YoutubeVideoID) Valid() bool {
	return videoIDPattern.MatchString(string(id))
}

// WatchURL is the upstream page for a video. It is not an audio stream.
func (id YoutubeVideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// Video is a single upload as it appears in a feed. PublishedAt is already
// formatted for RSS.
type Video struct {
	ID          YoutubeVideoID `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Thumbnail   string         `json:"thumbnail"`
	PublishedAt string         `json:"published_at"`
	URL         string         `json:"url"`
	Duration    string         `json:"duration"`
	FileSize    int64          `json:"file_size"`
}

// CachedVideo holds what is known locally about a video: either the measured
// properties of an extracted audio file or just the last time it was seen.
type CachedVideo struct {
	ID           YoutubeVideoID
	Title        string
	AudioPath    string
	LastAccessed time.Time
	FileSize     int64
	Duration     string
}
