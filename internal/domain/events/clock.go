package events

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Clock is a wall-clock time of day with no date or zone attached. Micro
// carries the sub-second part Postgres TIME stores; API input leaves it zero.
type Clock struct {
	Hour   int
	Minute int
	Second int
	Micro  int
}

// ParseClock accepts "15:04" or "15:04:05".
func ParseClock(value string) (Clock, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return Clock{Hour: parsed.Hour(), Minute: parsed.Minute(), Second: parsed.Second()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid time of day %q", value)
}

// ClockFromDuration converts an offset since midnight into a Clock,
// keeping microsecond precision.
func ClockFromDuration(d time.Duration) Clock {
	total := int(d / time.Second)
	return Clock{
		Hour:   total / 3600 % 24,
		Minute: total / 60 % 60,
		Second: total % 60,
		Micro:  int(d % time.Second / time.Microsecond),
	}
}

// SinceMidnight returns the offset of c from midnight.
func (c Clock) SinceMidnight() time.Duration {
	return time.Duration(c.Hour)*time.Hour + time.Duration(c.Minute)*time.Minute + time.Duration(c.Second)*time.Second +
		time.Duration(c.Micro)*time.Microsecond
}

func (c Clock) String() string {
	if c.Micro != 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%06d", c.Hour, c.Minute, c.Second, c.Micro)
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return parsed, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}
