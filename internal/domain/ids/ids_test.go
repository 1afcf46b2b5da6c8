package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testULID = "01HYX3KQW7ERTV9XNBM2P8QJZF"

func TestNewULIDReturnsValid(t *testing.T) {
	value, err := NewULID()

	require.NoError(t, err)
	require.NoError(t, ValidateULID(value))
}

func TestNewULIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		value, err := NewULID()
		require.NoError(t, err)
		_, dup := seen[value]
		require.False(t, dup, "duplicate ULID %s", value)
		seen[value] = struct{}{}
	}
}

func TestIsULIDAndValidateULID(t *testing.T) {
	require.True(t, IsULID(testULID))
	require.True(t, IsULID(" "+testULID+" "))
	require.True(t, IsULID(strings.ToLower(testULID)))
	require.NoError(t, ValidateULID(testULID))

	require.False(t, IsULID("not-a-ulid"))
	require.ErrorIs(t, ValidateULID("not-a-ulid"), ErrInvalidULID)
}

func TestNormalize(t *testing.T) {
	require.Equal(t, testULID, Normalize("  "+strings.ToLower(testULID)+"\n"))
}

func TestResourceURL(t *testing.T) {
	uri, err := ResourceURL("https://events.example.org", "api/v1/registrations", testULID)
	require.NoError(t, err)
	require.Equal(t, "https://events.example.org/api/v1/registrations/"+testULID, uri)

	uri, err = ResourceURL("http://localhost:8080/base/", "/events/", strings.ToLower(testULID))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/base/events/"+testULID, uri)

	_, err = ResourceURL("localhost", "events", testULID)
	require.ErrorIs(t, err, ErrInvalidBaseURL)

	_, err = ResourceURL("https://events.example.org", "events", "nope")
	require.ErrorIs(t, err, ErrInvalidULID)
}
