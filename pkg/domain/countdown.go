package domain

import (
	"fmt"
	"time"
)

// Remaining returns the time left until target, never negative.
func Remaining(now, target time.Time) time.Duration {
	d := target.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatCountdown renders d as HH:MM:SS. Hours are not wrapped at 24.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
