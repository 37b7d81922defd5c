package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"watch url with extras", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"garbage", "not a video", "", true},
		{"wrong length id", "https://www.youtube.com/watch?v=short", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractVideoID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPTranscriptSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("video_id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"start":0,"text":"hello"},{"start":2.5,"text":"world"}]`))
	}))
	defer server.Close()

	source := NewHTTPTranscriptSource(server.URL)
	segments, err := source.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "hello", segments[0].Text)
	assert.Equal(t, 2.5, segments[1].Start)
}

func TestHTTPTranscriptSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	source := NewHTTPTranscriptSource(server.URL)
	_, err := source.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.ErrorIs(t, err, ErrTranscriptUnavailable)
}

func TestHTTPTranscriptSourceEmptyTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	source := NewHTTPTranscriptSource(server.URL)
	_, err := source.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.ErrorIs(t, err, ErrTranscriptUnavailable)
}
