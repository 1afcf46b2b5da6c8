package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleEvents = `{"items":[{"id":"01J0000000000000000000000A","title":"Launch Night","date":"2030-07-01","time":"18:30:00","venue":"Kijiji Hall","charge":"Free","is_open":true},{"id":"01J0000000000000000000000B","title":"Retro","date":"2029-01-01","time":"09:00:00","venue":"Online","charge":"KES 500","is_open":false}],"limit":20,"offset":0}`

func TestEventsCommand(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/events" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleEvents))
	}))
	defer server.Close()

	t.Run("table", func(t *testing.T) {
		root := newRootCommand()
		out := new(bytes.Buffer)
		root.SetOut(out)
		root.SetArgs([]string{"events", "--server", server.URL + "/", "--when", "future", "-n", "5"})

		require.NoError(t, root.Execute())
		require.Equal(t, "limit=5&when=future", gotQuery)

		output := out.String()
		require.Contains(t, output, "TITLE")
		require.Contains(t, output, "Launch Night")
		require.Contains(t, output, "Kijiji Hall")
		require.Contains(t, output, "yes")
		require.Contains(t, output, "no")
	})

	t.Run("json", func(t *testing.T) {
		root := newRootCommand()
		out := new(bytes.Buffer)
		root.SetOut(out)
		root.SetArgs([]string{"events", "--server", server.URL, "--format", "json"})

		require.NoError(t, root.Execute())
		require.Contains(t, out.String(), `"title": "Launch Night"`)
	})
}

func TestEventsCommandServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"title":"Bad Request","status":400}`))
	}))
	defer server.Close()

	root := newRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"events", "--server", server.URL, "--when", "someday"})

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "server returned 400")
}

func TestPrintEventsEmpty(t *testing.T) {
	out := new(bytes.Buffer)
	require.NoError(t, printEvents(out, []byte(`{"items":[]}`), "table"))
	require.Equal(t, "No events found.\n", out.String())
}
