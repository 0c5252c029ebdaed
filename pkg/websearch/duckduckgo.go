// Package websearch fetches supporting context from the public web. It runs
// a DuckDuckGo search, scrapes the first result, and returns a bounded text
// excerpt plus the source URL for citation.
package websearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxExcerptLen bounds the scraped text handed to the model.
const maxExcerptLen = 2000

var (
	resultLinkRe = regexp.MustCompile(`class="result__a"[^>]*href="([^"]+)"`)
	scriptRe     = regexp.MustCompile(`(?s)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

type Result struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Client struct {
	http  *http.Client
	cache *redis.Client
	ttl   time.Duration
}

// NewClient builds a search client. The redis client is optional; when nil,
// results are simply not cached.
func NewClient(cache *redis.Client) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache: cache,
		ttl:   time.Hour,
	}
}

// Search looks the query up and scrapes the top result. A query that yields
// nothing usable returns an empty Result and no error; transport failures
// return an error so the caller can decide how to degrade.
func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	if cached, ok := c.fromCache(ctx, query); ok {
		return cached, nil
	}

	resultURL, err := c.firstResultURL(ctx, query)
	if err != nil {
		return Result{}, err
	}
	if resultURL == "" {
		return Result{}, nil
	}

	text, err := c.scrape(ctx, resultURL)
	if err != nil {
		// The result page itself may refuse us; treat as no result.
		return Result{}, nil
	}

	result := Result{Text: text, URL: resultURL}
	c.toCache(ctx, query, result)
	return result, nil
}

func (c *Client) firstResultURL(ctx context.Context, query string) (string, error) {
	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; learning-partner/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo error: status %d", resp.StatusCode)
	}

	m := resultLinkRe.FindSubmatch(body)
	if m == nil {
		return "", nil
	}
	return normalizeResultURL(html.UnescapeString(string(m[1]))), nil
}

// normalizeResultURL unwraps DuckDuckGo's redirect links (the real target
// sits in the uddg query parameter).
func normalizeResultURL(raw string) string {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func (c *Client) scrape(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; learning-partner/1.0)")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("scrape error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}
	return ExtractText(string(body)), nil
}

// ExtractText strips markup from an HTML page and truncates the plain text
// to the excerpt bound.
func ExtractText(page string) string {
	text := scriptRe.ReplaceAllString(page, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) > maxExcerptLen {
		return string(runes[:maxExcerptLen])
	}
	return text
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "websearch:" + hex.EncodeToString(sum[:])
}

// Cache access is best effort: a broken Redis never fails a search.
func (c *Client) fromCache(ctx context.Context, query string) (Result, bool) {
	if c.cache == nil {
		return Result{}, false
	}
	raw, err := c.cache.Get(ctx, cacheKey(query)).Result()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (c *Client) toCache(ctx context.Context, query string, result Result) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.cache.Set(ctx, cacheKey(query), raw, c.ttl)
}
