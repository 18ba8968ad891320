package models

import "time"

type TimeFilter string

const (
	TimeFilter1h  TimeFilter = "1h"
	TimeFilter6h  TimeFilter = "6h"
	TimeFilter24h TimeFilter = "24h"
)

var TimeFilters = []TimeFilter{TimeFilter1h, TimeFilter6h, TimeFilter24h}

// ParseTimeFilter never fails: anything unrecognised, including the empty
// string, falls back to 24h.
func ParseTimeFilter(s string) TimeFilter {
	switch TimeFilter(s) {
	case TimeFilter1h, TimeFilter6h, TimeFilter24h:
		return TimeFilter(s)
	default:
		return TimeFilter24h
	}
}

func (f TimeFilter) Window() time.Duration {
	switch f {
	case TimeFilter1h:
		return time.Hour
	case TimeFilter6h:
		return 6 * time.Hour
	default:
		return 24 * time.Hour
	}
}
