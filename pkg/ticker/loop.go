package ticker

import (
	"sync"
	"time"
)

// FrameID identifies a pending per-frame callback
type FrameID uint64

// TimerID identifies a pending delayed callback
type TimerID uint64

type frameReq struct {
	id        FrameID
	fn        func()
	cancelled bool
}

type timer struct {
	id       TimerID
	at       time.Time
	interval time.Duration
	fn       func()
}

// Loop is the single thread of control of the ticker. Frame callbacks,
// timers and posted tasks all run inside RunFrame, which the main loop calls
// once per rendered frame. Only Post may be called from other goroutines.
type Loop struct {
	mu     sync.Mutex
	posted []func()

	now     time.Time
	nextID  uint64
	pending []*frameReq
	running []*frameReq
	timers  []*timer
}

// NewLoop creates a loop whose clock starts at start
func NewLoop(start time.Time) *Loop {
	return &Loop{now: start}
}

// Now returns the loop's current time. While a timer callback runs this is
// the timer's due time.
func (l *Loop) Now() time.Time {
	return l.now
}

func (l *Loop) id() uint64 {
	l.nextID++
	return l.nextID
}

// RequestFrame schedules fn for the next frame. A callback requested while a
// frame is running runs on the following frame.
func (l *Loop) RequestFrame(fn func()) FrameID {
	req := &frameReq{id: FrameID(l.id()), fn: fn}
	l.pending = append(l.pending, req)
	return req.id
}

// CancelFrame drops a frame callback that has not run yet
func (l *Loop) CancelFrame(id FrameID) {
	for _, list := range [][]*frameReq{l.pending, l.running} {
		for _, req := range list {
			if req.id == id {
				req.cancelled = true
			}
		}
	}
}

// AfterFunc runs fn once, d after the loop's current time
func (l *Loop) AfterFunc(d time.Duration, fn func()) TimerID {
	t := &timer{id: TimerID(l.id()), at: l.now.Add(d), fn: fn}
	l.timers = append(l.timers, t)
	return t.id
}

// Every runs fn every d, starting d from now
func (l *Loop) Every(d time.Duration, fn func()) TimerID {
	t := &timer{id: TimerID(l.id()), at: l.now.Add(d), interval: d, fn: fn}
	l.timers = append(l.timers, t)
	return t.id
}

// StopTimer cancels a timer. Stopping a fired or unknown timer is a no-op.
func (l *Loop) StopTimer(id TimerID) {
	for i, t := range l.timers {
		if t.id == id {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
}

// Post hands fn to the loop; it runs at the start of the next frame. Safe
// for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Pending reports the number of queued frame callbacks and timers
func (l *Loop) Pending() (frames, timers int) {
	for _, req := range l.pending {
		if !req.cancelled {
			frames++
		}
	}
	return frames, len(l.timers)
}

// RunFrame advances the loop to now and runs posted tasks, due timers in due
// order, then the frame callbacks requested before this frame
func (l *Loop) RunFrame(now time.Time) {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	if now.After(l.now) {
		l.now = now
	}
	frameTime := l.now

	for _, fn := range posted {
		fn()
	}

	for {
		t := l.nextDue(frameTime)
		if t == nil {
			break
		}
		l.now = t.at
		if t.interval > 0 {
			t.at = t.at.Add(t.interval)
		} else {
			l.StopTimer(t.id)
		}
		t.fn()
	}
	l.now = frameTime

	l.running = l.pending
	l.pending = nil
	for _, req := range l.running {
		if !req.cancelled {
			req.fn()
		}
	}
	l.running = nil
}

func (l *Loop) nextDue(now time.Time) *timer {
	var next *timer
	for _, t := range l.timers {
		if t.at.After(now) {
			continue
		}
		if next == nil || t.at.Before(next.at) {
			next = t
		}
	}
	return next
}
