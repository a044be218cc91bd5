package shared

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate reads a calendar date (YYYY-MM-DD) or an RFC3339 timestamp. The
// result is always in UTC; an empty value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.DateOnly, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return parsed.UTC(), nil
}
