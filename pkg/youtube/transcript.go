// Package youtube fetches video transcripts so a video can be ingested the
// same way an uploaded document is.
package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidURL is returned when no video id can be extracted from a URL.
var ErrInvalidURL = errors.New("youtube: invalid video url")

// ErrNoTranscript is returned when the video has no caption track.
var ErrNoTranscript = errors.New("youtube: no transcript available")

// videoIDPattern matches standard, shortened, embed and shorts URLs.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/\s]+/\S+/|(?:v|e(?:mbed)?)/|shorts/|\S*?[?&]v=)|youtu\.be/)([A-Za-z0-9_-]{11})`)

// VideoID extracts the 11-character video id from a YouTube URL.
func VideoID(rawURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://www.youtube.com",
	}
}

type captionLine struct {
	Text string `xml:",chardata"`
}

type captionTrack struct {
	Lines []captionLine `xml:"text"`
}

// Transcript fetches the English caption track of a video and joins it into
// one plain-text transcript.
func (c *Client) Transcript(ctx context.Context, videoID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/timedtext?lang=en&v=%s", c.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch transcript for %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch transcript for %s: status %d", videoID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrNoTranscript
	}

	var track captionTrack
	if err := xml.Unmarshal(body, &track); err != nil {
		return "", fmt.Errorf("parse transcript for %s: %w", videoID, err)
	}

	parts := make([]string, 0, len(track.Lines))
	for _, line := range track.Lines {
		// Caption text arrives twice-escaped.
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoTranscript
	}
	return strings.Join(parts, " "), nil
}
