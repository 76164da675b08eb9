package performance

import (
	"sync"
	"time"
)

// RollingAverage is the mean of the last N durations
type RollingAverage struct {
	mu      sync.RWMutex
	samples []time.Duration
	sum     time.Duration
	next    int
	count   int
}

// NewRollingAverage creates a tracker over a window of size samples
func NewRollingAverage(size int) *RollingAverage {
	if size < 1 {
		size = 1
	}
	return &RollingAverage{samples: make([]time.Duration, size)}
}

// Add records a sample, evicting the oldest once the window is full
func (r *RollingAverage) Add(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == len(r.samples) {
		r.sum -= r.samples[r.next]
	} else {
		r.count++
	}
	r.samples[r.next] = d
	r.sum += d
	r.next = (r.next + 1) % len(r.samples)
}

// Average returns the mean of the window, zero without samples
func (r *RollingAverage) Average() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return 0
	}
	return r.sum / time.Duration(r.count)
}

// Count returns the number of samples in the window
func (r *RollingAverage) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Reset drops all samples
func (r *RollingAverage) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.samples {
		r.samples[i] = 0
	}
	r.sum = 0
	r.next = 0
	r.count = 0
}
