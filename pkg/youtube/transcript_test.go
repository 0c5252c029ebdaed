package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "standard watch url",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "shortened url",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "embed url",
			url:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "watch url with extra params",
			url:  "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ&list=PL1",
			want: "dQw4w9WgXcQ",
		},
		{
			name: "shorts url",
			url:  "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			want: "dQw4w9WgXcQ",
		},
		{
			name:    "not a youtube url",
			url:     "https://example.org/watch?v=dQw4w9WgXcQ",
			wantErr: true,
		},
		{
			name:    "id too short",
			url:     "https://youtu.be/short",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VideoID(tt.url)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURL) {
					t.Fatalf("VideoID(%q) error = %v, want ErrInvalidURL", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VideoID(%q) error = %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("VideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "dQw4w9WgXcQ" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0" dur="2">Hello there</text>
  <text start="2" dur="3">it&amp;#39;s a transcript</text>
  <text start="5" dur="1">  </text>
</transcript>`))
	}))
	defer server.Close()

	c := NewClient()
	c.baseURL = server.URL

	got, err := c.Transcript(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Transcript() error = %v", err)
	}
	want := "Hello there it's a transcript"
	if got != want {
		t.Errorf("Transcript() = %q, want %q", got, want)
	}
}

func TestTranscriptEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(""))
	}))
	defer server.Close()

	c := NewClient()
	c.baseURL = server.URL

	if _, err := c.Transcript(context.Background(), "dQw4w9WgXcQ"); !errors.Is(err, ErrNoTranscript) {
		t.Fatalf("Transcript() error = %v, want ErrNoTranscript", err)
	}
}
