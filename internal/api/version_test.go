package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionHandler(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		gitCommit  string
		buildDate  string
		wantResult versionResponse
	}{
		{
			name:       "with all values",
			version:    "0.1.0",
			gitCommit:  "abc123def456",
			buildDate:  "2026-01-28T12:00:00Z",
			wantResult: versionResponse{Version: "0.1.0", GitCommit: "abc123def456", BuildDate: "2026-01-28T12:00:00Z", GoVersion: runtime.Version()},
		},
		{
			name:       "with defaults",
			wantResult: versionResponse{Version: "dev", GitCommit: "unknown", BuildDate: "unknown", GoVersion: runtime.Version()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			VersionHandler(tt.version, tt.gitCommit, tt.buildDate).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/version", nil))

			require.Equal(t, http.StatusOK, res.Code)
			require.Equal(t, "application/json", res.Header().Get("Content-Type"))
			var got versionResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
			require.Equal(t, tt.wantResult, got)
		})
	}
}
