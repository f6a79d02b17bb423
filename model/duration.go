package model

import (
	"fmt"
	"time"
)

// EstimatedBytesPerSecond assumes 32 kbps audio. Used for enclosure lengths
// until a video has actually been extracted.
const EstimatedBytesPerSecond = 32000

// FormatDuration renders d as HH:MM:SS, or MM:SS when there are no hours.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// EstimateSize returns the expected byte size of an audio file of length d.
func EstimateSize(d time.Duration) int64 {
	return int64(d/time.Second) * EstimatedBytesPerSecond
}
