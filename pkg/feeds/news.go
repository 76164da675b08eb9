package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"ticker-frame/pkg/content"
)

// Source formats understood by NewsFetcher
const (
	FormatRSS2JSON = "rss2json"
	FormatRSS      = "rss"
)

// NewsSource is one feed queried by NewsFetcher
type NewsSource struct {
	URL    string `json:"url"`
	Format string `json:"format,omitempty"`
}

// NewsFetcher queries its sources one after another and concatenates the
// entries in source order
type NewsFetcher struct {
	client  *Client
	sources []NewsSource
	policy  *bluemonday.Policy
	parser  *gofeed.Parser
}

// NewNewsFetcher creates a news fetcher over the given sources
func NewNewsFetcher(client *Client, sources []NewsSource) *NewsFetcher {
	parser := gofeed.NewParser()
	parser.Client = client.HTTPClient()
	parser.UserAgent = userAgent

	return &NewsFetcher{
		client:  client,
		sources: sources,
		policy:  bluemonday.StrictPolicy(),
		parser:  parser,
	}
}

type rss2jsonResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Items  []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Link        string `json:"link"`
	} `json:"items"`
}

// Fetch returns every entry of every source. A failure of any source, or no
// entries at all, yields NewsFallback.
func (f *NewsFetcher) Fetch(ctx context.Context) []content.NewsItem {
	var all []content.NewsItem

	for _, src := range f.sources {
		items, err := f.fetchSource(ctx, src)
		if err != nil {
			log.Printf("NewsFetcher.Fetch: %s: %v", src.URL, err)
			return NewsFallback()
		}
		all = append(all, items...)
	}

	if len(all) == 0 {
		log.Printf("NewsFetcher.Fetch: no entries from %d source(s)", len(f.sources))
		return NewsFallback()
	}

	log.Printf("NewsFetcher.Fetch completed | sources=%d entries=%d", len(f.sources), len(all))
	return all
}

func (f *NewsFetcher) fetchSource(ctx context.Context, src NewsSource) ([]content.NewsItem, error) {
	switch src.Format {
	case "", FormatRSS2JSON:
		return f.fetchRSS2JSON(ctx, src.URL)
	case FormatRSS:
		return f.fetchRSS(ctx, src.URL)
	default:
		return nil, fmt.Errorf("unknown source format %q", src.Format)
	}
}

func (f *NewsFetcher) fetchRSS2JSON(ctx context.Context, url string) ([]content.NewsItem, error) {
	body, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp rss2jsonResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	// the bridge reports upstream feed errors in the body with a 200
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("bridge status %q: %s", resp.Status, resp.Message)
	}

	items := make([]content.NewsItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, f.normalize(it.Title, it.Description, it.Link))
	}
	return items, nil
}

func (f *NewsFetcher) fetchRSS(ctx context.Context, url string) ([]content.NewsItem, error) {
	if err := f.client.Wait(ctx, url); err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]content.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, f.normalize(it.Title, it.Description, it.Link))
	}
	return items, nil
}

var asciiSpace = regexp.MustCompile(`[ \t\r\n]+`)

// normalize reduces title and description to single-line plain text
func (f *NewsFetcher) normalize(title, description, link string) content.NewsItem {
	return content.NewsItem{
		Title:       plain(html.UnescapeString(title)),
		Description: plain(html.UnescapeString(f.policy.Sanitize(description))),
		Link:        strings.TrimSpace(link),
	}
}

func plain(s string) string {
	return strings.TrimSpace(asciiSpace.ReplaceAllString(s, " "))
}
