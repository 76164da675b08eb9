package feeds

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostPacer spaces requests made to the same host. The news bridge throttles
// clients that hit it back to back. Each Client owns its own pacer, so
// clients never delay each other.
type hostPacer struct {
	interval time.Duration

	mu    sync.Mutex
	hosts map[string]*rate.Limiter
}

// newHostPacer allows one request per interval per host; a non-positive
// interval disables pacing
func newHostPacer(interval time.Duration) *hostPacer {
	return &hostPacer{interval: interval, hosts: make(map[string]*rate.Limiter)}
}

// wait blocks until rawURL's host may be contacted or ctx is done
func (p *hostPacer) wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("no host in %q", rawURL)
	}
	return p.limiter(u.Host).Wait(ctx)
}

func (p *hostPacer) limiter(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.hosts[host]; ok {
		return l
	}
	every := rate.Inf
	if p.interval > 0 {
		every = rate.Every(p.interval)
	}
	l := rate.NewLimiter(every, 1)
	p.hosts[host] = l
	return l
}
