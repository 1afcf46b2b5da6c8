package ids

import (
	"crypto/rand"
	"errors"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID    = errors.New("invalid ULID")
	ErrInvalidBaseURL = errors.New("invalid base URL")
)

// NewULID generates a new ULID string.
func NewULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// IsULID returns true when value is a valid ULID (case-insensitive Crockford Base32).
func IsULID(value string) bool {
	return ulidRegex.MatchString(strings.TrimSpace(value))
}

// ValidateULID validates a ULID string.
func ValidateULID(value string) error {
	if !IsULID(value) {
		return ErrInvalidULID
	}
	return nil
}

// Normalize trims and upper-cases a ULID so lookups match the stored form.
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// ResourceURL joins baseURL, a collection path and a ULID into an absolute URL,
// e.g. https://events.example.org/api/v1/registrations/01HYX3KQW7ERTV9XNBM2P8QJZF.
func ResourceURL(baseURL, collection, id string) (string, error) {
	if err := ValidateULID(id); err != nil {
		return "", err
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrInvalidBaseURL
	}
	parsed.Path = path.Join("/", parsed.Path, strings.Trim(collection, "/"), Normalize(id))
	return parsed.String(), nil
}
