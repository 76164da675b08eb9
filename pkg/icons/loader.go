// Package icons downloads and decodes the small images embedded in weather
// markup off the render thread.
package icons

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"sync"

	"ticker-frame/pkg/feeds"
)

// Result of one download
type Result struct {
	Src   string
	Image image.Image
	Err   error
}

// Loader fetches each source at most once. Requests never block; results
// are read from Results, typically with select/default once per frame.
type Loader struct {
	client *feeds.Client

	mu        sync.Mutex
	requested map[string]bool

	requests chan string
	results  chan Result
}

// NewLoader creates a loader with room for queue outstanding requests
func NewLoader(client *feeds.Client, queue int) *Loader {
	if queue < 1 {
		queue = 1
	}
	return &Loader{
		client:    client,
		requested: make(map[string]bool),
		requests:  make(chan string, queue),
		results:   make(chan Result, queue),
	}
}

// Run downloads requested icons one at a time until ctx is done
func (l *Loader) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case src := <-l.requests:
			res := Result{Src: src}
			res.Image, res.Err = l.fetch(ctx, src)
			if res.Err != nil {
				log.Printf("Loader.Run: %v", res.Err)
			}
			select {
			case l.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Request queues src unless it was requested before. It reports false when
// the queue is full; the caller may ask again later.
func (l *Loader) Request(src string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.requested[src] {
		return true
	}
	select {
	case l.requests <- src:
		l.requested[src] = true
		return true
	default:
		return false
	}
}

// Results delivers finished downloads
func (l *Loader) Results() <-chan Result {
	return l.results
}

func (l *Loader) fetch(ctx context.Context, src string) (image.Image, error) {
	body, err := l.client.Get(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}
