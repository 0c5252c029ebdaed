package websearch

import (
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "strips tags and collapses whitespace",
			page: "<html><body><h1>Title</h1>\n\n<p>First   paragraph.</p></body></html>",
			want: "Title First paragraph.",
		},
		{
			name: "drops script and style bodies",
			page: "<style>.a{color:red}</style><script>var x = 1;</script><p>Visible</p>",
			want: "Visible",
		},
		{
			name: "unescapes entities",
			page: "<p>Fish &amp; chips</p>",
			want: "Fish & chips",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.page); got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractTextTruncates(t *testing.T) {
	page := "<p>" + strings.Repeat("a", 5000) + "</p>"
	got := ExtractText(page)
	if len([]rune(got)) != maxExcerptLen {
		t.Errorf("length = %d, want %d", len([]rune(got)), maxExcerptLen)
	}
}

func TestNormalizeResultURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "unwraps uddg redirect",
			raw:  "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fpage&rut=abc",
			want: "https://example.org/page",
		},
		{
			name: "direct link passes through",
			raw:  "https://example.org/direct",
			want: "https://example.org/direct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeResultURL(tt.raw); got != tt.want {
				t.Errorf("normalizeResultURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
