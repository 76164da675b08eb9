package ticker

import (
	"sync"

	"ticker-frame/pkg/content"
)

// DefaultSpeed applies to scrolling kinds without a configured speed
const DefaultSpeed = 180.0

// Speeds maps content kinds to scroll speeds in pixels per second. The
// scheduler reads it on every frame, so changes apply without a restart.
type Speeds struct {
	mu     sync.RWMutex
	byKind map[content.Kind]float64
}

// NewSpeeds returns the default speed table
func NewSpeeds() *Speeds {
	return &Speeds{
		byKind: map[content.Kind]float64{
			content.Weather:  180,
			content.NewsBody: 120,
		},
	}
}

// Get returns the speed for kind, DefaultSpeed when unset
func (s *Speeds) Get(kind content.Kind) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.byKind[kind]; ok {
		return v
	}
	return DefaultSpeed
}

// Set changes the speed for kind. Non-positive speeds are ignored.
func (s *Speeds) Set(kind content.Kind, pxPerSecond float64) {
	if pxPerSecond <= 0 {
		return
	}
	s.mu.Lock()
	s.byKind[kind] = pxPerSecond
	s.mu.Unlock()
}

// Adjust adds delta to the speed for kind, clamped to [min, max], and
// returns the new value
func (s *Speeds) Adjust(kind content.Kind, delta, min, max float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.byKind[kind]
	if !ok {
		v = DefaultSpeed
	}
	v += delta
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	s.byKind[kind] = v
	return v
}

// Advance moves a scrolling item one frame to the left
func Advance(position, speed, frameRate float64) float64 {
	return position - speed/frameRate
}
