package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"ticker-frame/pkg/content"
)

const quakeTimeLayout = "2006/01/02 15:04:05"

// scaleLabels maps the API's seismic intensity codes to display labels
var scaleLabels = map[int]string{
	10: "1",
	20: "2",
	30: "3",
	40: "4",
	45: "5弱",
	50: "5強",
	55: "6弱",
	60: "6強",
	70: "7",
}

const (
	unknown        = "不明"
	unknownArea    = "不明な地域"
	unknownCenter  = "震源地不明"
	quakeAttribute = "　-　 情報:P2P地震情報API"
)

// ScaleLabel returns the display label of an intensity code
func ScaleLabel(code int) string {
	if label, ok := scaleLabels[code]; ok {
		return label
	}
	return unknown
}

type quakeEvent struct {
	Time       string `json:"time"`
	Earthquake struct {
		MaxScale   int `json:"maxScale"`
		Hypocenter struct {
			Name      string  `json:"name"`
			Depth     float64 `json:"depth"`
			Magnitude float64 `json:"magnitude"`
		} `json:"hypocenter"`
	} `json:"earthquake"`
	Points []struct {
		Addr  string `json:"addr"`
		Scale int    `json:"scale"`
	} `json:"points"`
}

// QuakeFetcher reads the most recent earthquake and renders an alert title
// and a detailed body. It remembers the last successful result.
type QuakeFetcher struct {
	client   *Client
	url      string
	location *time.Location
	maxAge   time.Duration
	now      func() time.Time

	mu        sync.Mutex
	last      []content.Item
	lastEvent time.Time
}

// NewQuakeFetcher creates an earthquake fetcher. Event times are read in loc.
// A positive maxAge hides events older than maxAge.
func NewQuakeFetcher(client *Client, url string, loc *time.Location, maxAge time.Duration) *QuakeFetcher {
	if loc == nil {
		loc = time.Local
	}
	return &QuakeFetcher{
		client:   client,
		url:      url,
		location: loc,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Fetch returns the alert items of the latest event. A failure clears the
// remembered event and returns no items rather than a placeholder, so an
// outage never raises the earthquake alert. An empty history keeps the
// remembered event.
func (f *QuakeFetcher) Fetch(ctx context.Context) []content.Item {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, when, err := f.fetchLatest(ctx)
	switch {
	case err != nil:
		log.Printf("QuakeFetcher.Fetch: %s: %v", f.url, err)
		f.last = nil
		f.lastEvent = time.Time{}
	case items == nil:
		log.Printf("QuakeFetcher.Fetch: empty history, keeping previous event")
	default:
		f.last = items
		f.lastEvent = when
	}

	if f.last == nil {
		return nil
	}
	if f.maxAge > 0 && f.now().Sub(f.lastEvent) > f.maxAge {
		return nil
	}
	return append([]content.Item(nil), f.last...)
}

func (f *QuakeFetcher) fetchLatest(ctx context.Context) ([]content.Item, time.Time, error) {
	body, err := f.client.Get(ctx, f.url)
	if err != nil {
		return nil, time.Time{}, err
	}

	var events []quakeEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, time.Time{}, fmt.Errorf("malformed response: %w", err)
	}
	if len(events) == 0 {
		return nil, time.Time{}, nil
	}

	ev := events[0]
	when, err := time.ParseInLocation(quakeTimeLayout, ev.Time, f.location)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid event time %q: %w", ev.Time, err)
	}

	title, detail := renderQuake(ev, when)
	return []content.Item{
		{Kind: content.QuakeTitle, Payload: title},
		{Kind: content.QuakeBody, Payload: detail},
	}, when, nil
}

func renderQuake(ev quakeEvent, when time.Time) (string, string) {
	eq := ev.Earthquake
	scale := ScaleLabel(eq.MaxScale)

	center := eq.Hypocenter.Name
	if center == "" {
		center = unknownCenter
	}

	depth := unknown
	if eq.Hypocenter.Depth >= 0 {
		depth = strconv.FormatFloat(eq.Hypocenter.Depth, 'f', -1, 64)
	}

	magnitude := unknown
	if eq.Hypocenter.Magnitude >= 0 {
		magnitude = strconv.FormatFloat(eq.Hypocenter.Magnitude, 'f', 1, 64)
	}

	areas := unknownArea
	if eq.MaxScale != -1 {
		var names []string
		seen := make(map[string]bool)
		for _, p := range ev.Points {
			if p.Scale != eq.MaxScale {
				continue
			}
			name := p.Addr
			if name == "" {
				name = unknownArea
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		if len(names) > 0 {
			areas = strings.Join(names, "、")
		}
	}

	title := fmt.Sprintf("【地震情報】%sで最大震度%sを観測", center, scale)
	detail := fmt.Sprintf("%d日%d時%d分頃、%sで最大震度%sを観測する地震がありました。", when.Day(), when.Hour(), when.Minute(), center, scale) +
		fmt.Sprintf("震源地は%sで震源の深さは%skm、地震の規模を示すマグニチュードはM%sと推定されています。", center, depth, magnitude) +
		fmt.Sprintf("震度%sを%sで観測しました。", scale, areas) +
		quakeAttribute

	return title, detail
}
