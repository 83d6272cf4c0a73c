package campaign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultWikipediaBaseURL is the English Wikipedia REST API root.
const DefaultWikipediaBaseURL = "https://en.wikipedia.org/api/rest_v1"

const (
	defaultWikipediaTimeout = 10 * time.Second
	maxSummaryBytes         = 1 << 20
	userAgent               = "CampaignPilot/1.0"
)

// WikipediaClient looks up page summaries from the Wikipedia REST API.
type WikipediaClient struct {
	baseURL string
	http    *http.Client
}

// WikipediaOption configures a WikipediaClient.
type WikipediaOption func(*WikipediaClient)

// WithWikipediaBaseURL overrides the API root, mainly for tests.
func WithWikipediaBaseURL(base string) WikipediaOption {
	return func(c *WikipediaClient) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(h *http.Client) WikipediaOption {
	return func(c *WikipediaClient) {
		if h != nil {
			c.http = h
		}
	}
}

// NewWikipediaClient creates a client with a bounded request timeout.
func NewWikipediaClient(opts ...WikipediaOption) *WikipediaClient {
	c := &WikipediaClient{
		baseURL: DefaultWikipediaBaseURL,
		http:    &http.Client{Timeout: defaultWikipediaTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summary returns the first sentences of the page for topic. Missing pages and
// disambiguation pages return a "no information" text rather than an error.
func (c *WikipediaClient) Summary(ctx context.Context, topic string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(topic), " ", "_")
	endpoint := c.baseURL + "/page/summary/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("WikipediaClient.Summary: requesting", "topic", topic, "url", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return notFoundText(topic), nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSummaryBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("invalid JSON response")
	}

	parsed := gjson.ParseBytes(body)
	if parsed.Get("type").String() == "disambiguation" {
		return notFoundText(topic), nil
	}
	extract := strings.TrimSpace(parsed.Get("extract").String())
	if extract == "" {
		return notFoundText(topic), nil
	}
	return extract, nil
}

func notFoundText(topic string) string {
	return fmt.Sprintf("No Wikipedia information found for %s", topic)
}
