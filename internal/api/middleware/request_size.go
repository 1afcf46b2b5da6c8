package middleware

import (
	"net/http"
)

const (
	// PublicMaxBodySize bounds register and RSVP payloads.
	PublicMaxBodySize int64 = 64 << 10

	// OrganizerMaxBodySize bounds organizer payloads such as event creation.
	OrganizerMaxBodySize int64 = 1 << 20
)

// RequestSize wraps the body in http.MaxBytesReader. Handlers report the
// resulting *http.MaxBytesError as 413.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

func PublicRequestSize() func(http.Handler) http.Handler {
	return RequestSize(PublicMaxBodySize)
}

func OrganizerRequestSize() func(http.Handler) http.Handler {
	return RequestSize(OrganizerMaxBodySize)
}
