// Package ticker drives the marquee: a cooperative frame loop, the
// scroll/fade scheduler walking the content queue, and the clock.
package ticker

import (
	"fmt"
	"log"
	"strings"
	"time"

	"ticker-frame/pkg/content"
)

// Display is the surface the scheduler presents items on
type Display interface {
	// ViewportWidth is the visible width of the marquee
	ViewportWidth() float64
	// ContentWidth is the rendered width of the current content
	ContentWidth() float64
	SetContent(item content.Item)
	Clear()
	SetLeft(x float64)
	// SetOpacity changes opacity, animated over transition when positive
	SetOpacity(opacity float64, transition time.Duration)
	SetAlertVisible(visible bool)
}

// Host is the per-frame and timer primitive the scheduler runs on
type Host interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
	AfterFunc(d time.Duration, fn func()) TimerID
	StopTimer(id TimerID)
}

// State of the scheduler
type State int

const (
	Idle State = iota
	Scrolling
	Dwelling
	FadingOut
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scrolling:
		return "scrolling"
	case Dwelling:
		return "dwelling"
	case FadingOut:
		return "fading-out"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Policy decides what a queue supplied mid-presentation does to the position
type Policy int

const (
	// PolicyContinue keeps the index; the next advance wraps against the new queue
	PolicyContinue Policy = iota
	// PolicyReset lets the current item finish, then continues at item 0
	PolicyReset
	// PolicyRestart abandons the current item and presents item 0 at once
	PolicyRestart
)

// Next cycles continue, reset, restart
func (p Policy) Next() Policy {
	return (p + 1) % 3
}

func (p Policy) String() string {
	switch p {
	case PolicyReset:
		return "reset"
	case PolicyRestart:
		return "restart"
	}
	return "continue"
}

// ParsePolicy parses continue, reset or restart
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "continue":
		return PolicyContinue, nil
	case "reset":
		return PolicyReset, nil
	case "restart":
		return PolicyRestart, nil
	}
	return PolicyContinue, fmt.Errorf("unknown refresh policy %q", s)
}

// Config holds the presentation timings
type Config struct {
	FrameRate float64
	// FadeLeft is the fixed left offset of fade items
	FadeLeft float64
	// Dwell is how long a fade item is shown at full opacity
	Dwell time.Duration
	// FadeTransition is the length of the opacity animation
	FadeTransition time.Duration
	// FadeDelay is the time from the start of the fade to the next item
	FadeDelay time.Duration
	Policy    Policy
}

// DefaultConfig returns the standard 60 fps timings
func DefaultConfig() Config {
	return Config{
		FrameRate:      60,
		FadeLeft:       10,
		Dwell:          800 * time.Millisecond,
		FadeTransition: time.Second,
		FadeDelay:      1500 * time.Millisecond,
		Policy:         PolicyContinue,
	}
}

// Scheduler walks the queue, presenting each item in the mode bound to its
// kind. It owns at most one pending frame callback and one pending timer.
type Scheduler struct {
	host    Host
	display Display
	speeds  *Speeds
	cfg     Config

	queue   content.Queue
	index   int
	current content.Item
	state   State

	position     float64
	resetPending bool

	frame    FrameID
	hasFrame bool
	timer    TimerID
	hasTimer bool
}

// NewScheduler creates an idle scheduler
func NewScheduler(host Host, display Display, speeds *Speeds, cfg Config) *Scheduler {
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultConfig().FrameRate
	}
	return &Scheduler{
		host:    host,
		display: display,
		speeds:  speeds,
		cfg:     cfg,
		state:   Idle,
	}
}

// Start presents the first item of the current queue. It has no effect
// unless the scheduler is idle or stopped.
func (s *Scheduler) Start() {
	if s.state != Idle && s.state != Stopped {
		return
	}
	s.index = 0
	s.resetPending = false
	if len(s.queue) == 0 {
		s.pause()
		return
	}
	log.Printf("Scheduler.Start: presenting %d item(s)", len(s.queue))
	s.present()
}

// SupplyQueue replaces the queue. The item being presented is not
// interrupted unless the policy is PolicyRestart; a paused scheduler resumes.
func (s *Scheduler) SupplyQueue(q content.Queue) {
	s.queue = q

	switch s.state {
	case Idle, Stopped:
		return
	case Paused:
		if len(q) > 0 {
			log.Printf("Scheduler.SupplyQueue: resuming with %d item(s)", len(q))
			s.index = 0
			s.present()
		}
		return
	}

	switch s.cfg.Policy {
	case PolicyReset:
		s.resetPending = true
	case PolicyRestart:
		s.cancelPending()
		s.index = 0
		s.resetPending = false
		if len(q) == 0 {
			s.pause()
			return
		}
		s.present()
	}
}

// Stop cancels any pending animation and clears the display. Start may be
// called again afterwards.
func (s *Scheduler) Stop() {
	s.cancelPending()
	s.current = content.Item{}
	s.state = Stopped
	s.display.SetAlertVisible(false)
	s.display.Clear()
}

// State returns the current state
func (s *Scheduler) State() State {
	return s.state
}

// Index returns the queue index of the current item
func (s *Scheduler) Index() int {
	return s.index
}

// Current returns the item being presented
func (s *Scheduler) Current() content.Item {
	return s.current
}

// Policy returns the refresh policy in effect
func (s *Scheduler) Policy() Policy {
	return s.cfg.Policy
}

// SetPolicy changes the refresh policy. A reset already requested stays
// requested.
func (s *Scheduler) SetPolicy(p Policy) {
	s.cfg.Policy = p
}

func (s *Scheduler) present() {
	s.cancelPending()

	item := s.queue[s.index]
	s.current = item

	s.display.SetAlertVisible(content.IsAlert(item.Kind))
	s.display.SetOpacity(1, 0)
	s.display.SetContent(item)

	switch content.ModeFor(item.Kind) {
	case content.Fade:
		s.display.SetLeft(s.cfg.FadeLeft)
		s.state = Dwelling
		s.startTimer(s.cfg.Dwell)
	default:
		s.position = s.display.ViewportWidth()
		s.display.SetLeft(s.position)
		s.state = Scrolling
		s.frame = s.host.RequestFrame(s.onFrame)
		s.hasFrame = true
	}
}

func (s *Scheduler) onFrame() {
	s.hasFrame = false
	if s.state != Scrolling {
		return
	}

	s.position = Advance(s.position, s.speeds.Get(s.current.Kind), s.cfg.FrameRate)
	s.display.SetLeft(s.position)

	if s.position+s.display.ContentWidth() < 0 {
		s.advance()
		return
	}
	s.frame = s.host.RequestFrame(s.onFrame)
	s.hasFrame = true
}

func (s *Scheduler) onTimer() {
	s.hasTimer = false

	switch s.state {
	case Dwelling:
		s.display.SetOpacity(0, s.cfg.FadeTransition)
		s.state = FadingOut
		s.startTimer(s.cfg.FadeDelay)
	case FadingOut:
		s.advance()
	}
}

func (s *Scheduler) advance() {
	if len(s.queue) == 0 {
		s.pause()
		return
	}
	if s.resetPending {
		s.index = 0
		s.resetPending = false
	} else {
		s.index = (s.index + 1) % len(s.queue)
	}
	s.present()
}

func (s *Scheduler) pause() {
	s.cancelPending()
	s.index = 0
	s.current = content.Item{}
	s.state = Paused
	s.display.SetAlertVisible(false)
	s.display.Clear()
	log.Printf("Scheduler: queue empty, presentation paused")
}

func (s *Scheduler) startTimer(d time.Duration) {
	s.timer = s.host.AfterFunc(d, s.onTimer)
	s.hasTimer = true
}

func (s *Scheduler) cancelPending() {
	if s.hasFrame {
		s.host.CancelFrame(s.frame)
		s.hasFrame = false
	}
	if s.hasTimer {
		s.host.StopTimer(s.timer)
		s.hasTimer = false
	}
}
