package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Channel is the upstream view of a YouTube channel.
type Channel struct {
	ID                YoutubeChannelID `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Thumbnail         string           `json:"thumbnail"`
	UploadsPlaylistID string           `json:"uploads_playlist_id"`
	SubscriberCount   int64            `json:"subscriber_count"`
	VideoCount        int64            `json:"video_count"`
	ViewCount         int64            `json:"view_count"`
	PublishedAt       string           `json:"published_at"`
	Country           string           `json:"country"`
}

// ChannelRecord is a channel registered in the local directory.
type ChannelRecord struct {
	ID              string
	ChannelID       YoutubeChannelID
	Title           string
	Description     string
	Thumbnail       string
	SubscriberCount int64
	VideoCount      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ChannelRecordIDFor derives the directory key of a channel. It uses a
// different hash than FeedIDFor so the two key spaces never overlap.
func ChannelRecordIDFor(channelID YoutubeChannelID) string {
	sum := sha256.Sum256([]byte(channelID))
	return hex.EncodeToString(sum[:])
}
