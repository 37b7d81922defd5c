// Package youtube ingests video transcripts and answers questions over
// them. Ingestion runs in the background with persisted progress; chat is
// the metered operation.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// Segment is one timed chunk of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// TranscriptSource fetches a video's transcript. Behind an interface so
// tests never hit the network and the scraping endpoint can be replaced.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) ([]Segment, error)
}

// ErrTranscriptUnavailable marks videos with no captions.
var ErrTranscriptUnavailable = errors.New("transcript unavailable for video")

// HTTPTranscriptSource fetches transcripts from a caption endpoint.
type HTTPTranscriptSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPTranscriptSource creates the default source.
func NewHTTPTranscriptSource(baseURL string) *HTTPTranscriptSource {
	return &HTTPTranscriptSource{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *HTTPTranscriptSource) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	endpoint := fmt.Sprintf("%s?video_id=%s", s.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTranscriptUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcript endpoint error (status %d): %s", resp.StatusCode, string(body))
	}

	var segments []Segment
	if err := json.NewDecoder(resp.Body).Decode(&segments); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	if len(segments) == 0 {
		return nil, ErrTranscriptUnavailable
	}

	return segments, nil
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video id out of a watch URL, short
// URL or a bare id.
func ExtractVideoID(raw string) (string, error) {
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid video url: %w", err)
	}

	if id := u.Query().Get("v"); videoIDPattern.MatchString(id) {
		return id, nil
	}

	// youtu.be/<id> and /embed/<id> paths
	path := u.Path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if id := path[i+1:]; videoIDPattern.MatchString(id) {
				return id, nil
			}
			break
		}
	}

	return "", fmt.Errorf("could not extract video id from %q", raw)
}

// FetchTitle resolves the video title via the public oEmbed endpoint. Title
// failures are cosmetic, callers fall back to the video id.
func FetchTitle(ctx context.Context, httpClient *http.Client, videoID string) (string, error) {
	endpoint := "https://www.youtube.com/oembed?format=json&url=" +
		url.QueryEscape("https://www.youtube.com/watch?v="+videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oembed error (status %d)", resp.StatusCode)
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}

	return payload.Title, nil
}
