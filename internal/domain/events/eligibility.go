package events

import "time"

// Instant combines the event's date and time of day into a single point in
// time, interpreted in loc. A nil loc means UTC.
func (e Event) Instant(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(e.Date.Year(), e.Date.Month(), e.Date.Day(), e.Time.Hour, e.Time.Minute, e.Time.Second, e.Time.Micro*int(time.Microsecond), loc)
}

// IsOpen reports whether registrations for e are accepted at now.
// The comparison is strict: an event whose instant equals now has started
// and is closed.
func IsOpen(e Event, now time.Time, loc *time.Location) bool {
	return now.Before(e.Instant(loc))
}
