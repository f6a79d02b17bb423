package model

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Feed is a materialized podcast feed for one channel.
type Feed struct {
	ID           string
	ChannelID    YoutubeChannelID
	ChannelTitle string
	RSS          string
	LastUpdated  time.Time
}

// FeedIDFor derives the feed identifier from the channel alone, so building
// a feed for the same channel twice always lands on the same record.
func FeedIDFor(channelID YoutubeChannelID) string {
	sum := md5.Sum([]byte(channelID))
	return hex.EncodeToString(sum[:])
}

// Stale reports whether the feed is older than maxAge at now.
func (f *Feed) Stale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(f.LastUpdated) > maxAge
}
