package model

import (
	"testing"
	"time"
)

func TestFeedIDFor(t *testing.T) {
	id := YoutubeChannelID("UCuAXFkgsw1L7xaCfnd5JJOw")
	want := "564c7363a587ccdd6d375c1ea5bb2d28"
	if got := FeedIDFor(id); got != want {
		t.Errorf("FeedIDFor(%q) = %q, want %q", id, got, want)
	}
	if FeedIDFor(id) != FeedIDFor(id) {
		t.Error("FeedIDFor is not deterministic")
	}
	if FeedIDFor(id) == FeedIDFor("UCother") {
		t.Error("different channels share a feed id")
	}
}

func TestChannelRecordIDFor(t *testing.T) {
	id := YoutubeChannelID("UCuAXFkgsw1L7xaCfnd5JJOw")
	want := "b70959d823d3d8b7e44d7843e635df240bb132a0d5873ae2a9c77ded54142b7b"
	if got := ChannelRecordIDFor(id); got != want {
		t.Errorf("ChannelRecordIDFor(%q) = %q, want %q", id, got, want)
	}
	if ChannelRecordIDFor(id) == FeedIDFor(id) {
		t.Error("channel record id collides with feed id")
	}
}

func TestFeedStale(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{name: "just built", age: 0, want: false},
		{name: "59 minutes", age: 59 * time.Minute, want: false},
		{name: "exactly one hour", age: time.Hour, want: false},
		{name: "61 minutes", age: 61 * time.Minute, want: true},
		{name: "a day", age: 24 * time.Hour, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Feed{LastUpdated: now.Add(-tt.age)}
			if got := f.Stale(now, time.Hour); got != tt.want {
				t.Errorf("Stale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: "00:00"},
		{in: 45 * time.Second, want: "00:45"},
		{in: 5*time.Minute + 9*time.Second, want: "05:09"},
		{in: time.Hour + 2*time.Minute + 3*time.Second, want: "01:02:03"},
		{in: 12*time.Hour + 1500*time.Millisecond, want: "12:00:01"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEstimateSize(t *testing.T) {
	if got := EstimateSize(90 * time.Second); got != 90*32000 {
		t.Errorf("EstimateSize(90s) = %d, want %d", got, 90*32000)
	}
}

func TestVideoIDValid(t *testing.T) {
	tests := []struct {
		id   YoutubeVideoID
		want bool
	}{
		{id: "dQw4w9WgXcQ", want: true},
		{id: "_abc-123", want: true},
		{id: "", want: false},
		{id: "-wtIMTCHWuI", want: true},
		{id: "--exec=rm", want: false},
		{id: "a b", want: false},
		{id: "../etc", want: false},
	}
	for _, tt := range tests {
		if got := tt.id.Valid(); got != tt.want {
			t.Errorf("YoutubeVideoID(%q).Valid() = %v, want %v", tt.id, got, tt.want)
		}
	}
}
