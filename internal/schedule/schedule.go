// Package schedule evaluates backup freshness against a job's max_age spec.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/edvin/borgwatch/internal/model"
)

// ErrInvalidFormat is returned for max_age strings not matching <N><m|h|d>.
var ErrInvalidFormat = errors.New("invalid max_age format")

var maxAgeRegex = regexp.MustCompile(`^(\d+)([mhd])$`)

// ParseMaxAge parses a max_age spec like "30m", "24h", or "7d".
func ParseMaxAge(spec string) (time.Duration, error) {
	m := maxAgeRegex.FindStringSubmatch(spec)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, spec)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, spec)
	}

	switch m[2] {
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	default:
		return time.Duration(n) * 24 * time.Hour, nil
	}
}

// IsOverdue reports whether lastBackup is older than the max_age spec allows.
func IsOverdue(lastBackup time.Time, spec string, now time.Time) (bool, error) {
	maxAge, err := ParseMaxAge(spec)
	if err != nil {
		return false, err
	}
	return lastBackup.Before(now.Add(-maxAge)), nil
}

// Status classifies a job's last backup as on-time, overdue, or unknown.
// A nil timestamp or an unparseable spec yields "unknown".
func Status(lastBackup *time.Time, spec string, now time.Time) string {
	if lastBackup == nil {
		return model.ScheduleUnknown
	}
	overdue, err := IsOverdue(*lastBackup, spec, now)
	if err != nil {
		return model.ScheduleUnknown
	}
	if overdue {
		return model.ScheduleOverdue
	}
	return model.ScheduleOnTime
}
