package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

const ddgEndpoint = "https://html.duckduckgo.com/html/"

// DDG fetches candidates by scraping the DuckDuckGo HTML search results for
// a fixed news query, restricted to the Turkish region and the last day.
// Result order is DuckDuckGo's relevance order.
type DDG struct {
	client     HTTPClient
	query      string
	region     string
	maxResults int
	rules      []Rule
}

// NewDDG creates a DuckDuckGo search source for the given query.
func NewDDG(client HTTPClient, query string, maxResults int, rules []Rule) *DDG {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &DDG{
		client:     client,
		query:      query,
		region:     "tr-tr",
		maxResults: maxResults,
		rules:      rules,
	}
}

// Name identifies the source in logs and diagnostics.
func (s *DDG) Name() string { return "ddg" }

// FetchCandidates runs the search and scrapes the result list.
func (s *DDG) FetchCandidates(ctx context.Context) ([]model.RawItem, error) {
	q := url.Values{}
	q.Set("q", s.query)
	q.Set("kl", s.region)
	q.Set("df", "d") // last 24 hours

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ddgEndpoint+"?"+q.Encode(), nil)
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

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse results: %v", ErrUnavailable, err)
	}

	var items []model.RawItem
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find("a.result__a").Text())
		if title == "" {
			return true
		}
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		link, _ := sel.Find("a.result__a").Attr("href")
		items = append(items, model.NewRawItem(title, snippet, resultURL(link), nil))
		return len(items) < s.maxResults
	})
	return ApplyRules(items, s.rules), nil
}

// resultURL unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=...)
// to the target URL. Unrecognized links are returned unchanged.
func resultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
