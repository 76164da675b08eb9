// Package refresh periodically pulls every source and hands the rebuilt
// content queue to the presenter.
package refresh

import (
	"context"
	"log"
	"time"

	"ticker-frame/pkg/content"
)

// DefaultInterval between refresh cycles
const DefaultInterval = 5 * time.Minute

type WeatherSource interface {
	Fetch(ctx context.Context) []string
}

type NewsSource interface {
	Fetch(ctx context.Context) []content.NewsItem
}

type QuakeSource interface {
	Fetch(ctx context.Context) []content.Item
}

// Refresher fetches weather, news and quake data in that order and delivers
// the built queue through OnQueue. Fetchers never fail; they return their
// fallback content instead.
type Refresher struct {
	Weather  WeatherSource
	News     NewsSource
	Quake    QuakeSource
	Interval time.Duration
	OnQueue  func(content.Queue)
}

// Cycle runs one refresh and returns the delivered queue
func (r *Refresher) Cycle(ctx context.Context) content.Queue {
	start := time.Now()

	snap := content.Snapshot{
		Weather: r.Weather.Fetch(ctx),
		News:    r.News.Fetch(ctx),
		Quake:   r.Quake.Fetch(ctx),
	}
	q := content.Build(snap)

	log.Printf("Refresher.Cycle: %d item(s) (%d quake, %d news) in %v",
		len(q), len(snap.Quake), len(snap.News), time.Since(start).Round(time.Millisecond))

	if ctx.Err() != nil {
		return q
	}
	if r.OnQueue != nil {
		r.OnQueue(q)
	}
	return q
}

// Run performs a cycle immediately and then every Interval until ctx is done
func (r *Refresher) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	r.Cycle(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Refresher.Run: stopped")
			return
		case <-ticker.C:
			r.Cycle(ctx)
		}
	}
}
