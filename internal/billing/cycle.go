package billing

import (
	"errors"
	"strings"
)

// Interval enumerates billing cadences for a fee plan subscription.
type Interval string

const (
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalSemester  Interval = "semester"
	IntervalYearly    Interval = "yearly"
	IntervalCustom    Interval = "custom"
)

var (
	ErrInvalidInterval      = errors.New("invalid_interval")
	ErrInvalidIntervalCount = errors.New("invalid_interval_count")
)

// ParseInterval validates a raw interval string.
func ParseInterval(s string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(s))) {
	case IntervalMonthly:
		return IntervalMonthly, nil
	case IntervalQuarterly:
		return IntervalQuarterly, nil
	case IntervalSemester:
		return IntervalSemester, nil
	case IntervalYearly:
		return IntervalYearly, nil
	case IntervalCustom:
		return IntervalCustom, nil
	default:
		return "", ErrInvalidInterval
	}
}

// IntervalMonths returns the cycle length in calendar months. For the
// custom interval count must be a positive integer; for every other
// interval count is ignored.
func IntervalMonths(interval Interval, count int32) (int, error) {
	switch interval {
	case IntervalMonthly:
		return 1, nil
	case IntervalQuarterly:
		return 3, nil
	case IntervalSemester:
		return 6, nil
	case IntervalYearly:
		return 12, nil
	case IntervalCustom:
		if count < 1 {
			return 0, ErrInvalidIntervalCount
		}
		return int(count), nil
	default:
		return 0, ErrInvalidInterval
	}
}

// IsDue decides whether a charge falls in target for a subscription whose
// cycle started at from. A nil from means billing has no anchor and the
// charge is unconditionally due; callers substitute the subscription's
// creation month for non-monthly intervals before calling. A target before
// from is never due.
func IsDue(interval Interval, count int32, from *Month, target Month) (bool, error) {
	months, err := IntervalMonths(interval, count)
	if err != nil {
		return false, err
	}

	if from == nil {
		return true, nil
	}
	if target.Before(*from) {
		return false, nil
	}

	return target.MonthsSince(*from)%months == 0, nil
}
