package source

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mmcdole/gofeed"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

const maxFeedBody = 5 * 1024 * 1024

// RSS fetches candidates from a news RSS feed. Feed order is kept as-is;
// news feeds list newest items first.
type RSS struct {
	client HTTPClient
	url    string
	rules  []Rule
}

// NewRSS creates an RSS source for the given feed URL.
func NewRSS(client HTTPClient, url string, rules []Rule) *RSS {
	return &RSS{client: client, url: url, rules: rules}
}

// Name identifies the source in logs and diagnostics.
func (s *RSS) Name() string { return "rss" }

// FetchCandidates downloads and parses the feed, returning filtered items
// in feed order.
func (s *RSS) FetchCandidates(ctx context.Context) ([]model.RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: http get: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed: %v", ErrUnavailable, err)
	}

	items := make([]model.RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it.Title == "" {
			continue
		}
		items = append(items, model.NewRawItem(it.Title, it.Description, it.Link, it.PublishedParsed))
	}
	return ApplyRules(items, s.rules), nil
}
