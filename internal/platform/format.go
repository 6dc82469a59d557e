package platform

import (
	"fmt"
	"time"
)

// FormatSize renders a byte count as a human-readable string with one decimal
// place ("1.5 KB"). Zero is special-cased as "0 B".
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	size := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f PB", size)
}

// RelativeTime renders a timestamp as a human phrase relative to now,
// bucketed by minute, hour, day, week, month (30 days), and year.
func RelativeTime(t, now time.Time) string {
	seconds := now.Sub(t).Seconds()

	if seconds < 0 {
		return "in the future"
	}
	if seconds < 60 {
		return "just now"
	}
	if seconds < 3600 {
		return plural(int(seconds/60), "minute")
	}
	if seconds < 86400 {
		return plural(int(seconds/3600), "hour")
	}
	if seconds < 604800 {
		return plural(int(seconds/86400), "day")
	}
	if seconds < 2592000 {
		return plural(int(seconds/604800), "week")
	}
	if seconds < 31536000 {
		return plural(int(seconds/2592000), "month")
	}
	return plural(int(seconds/31536000), "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
