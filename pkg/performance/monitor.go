package performance

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// FrameMonitor tracks how long the ticker spends updating and drawing each
// frame, and how many frames ran past their budget.
type FrameMonitor struct {
	mu sync.RWMutex

	budget  time.Duration
	update  *RollingAverage
	draw    *RollingAverage
	total   *RollingAverage
	frames  int
	late    int
	started time.Time
	now     func() time.Time
}

// Report is a snapshot of the frame metrics
type Report struct {
	AvgUpdateMs float64
	AvgDrawMs   float64
	AvgTotalMs  float64
	Frames      int
	LateFrames  int
	LateRate    float64 // percent of frames over budget
	HeapMB      uint64
	Uptime      time.Duration
}

// Healthy is true while under 1% of frames are late and the average frame
// fits the budget
func (r Report) Healthy(budget time.Duration) bool {
	return r.LateRate < 1 && r.AvgTotalMs < float64(budget.Microseconds())/1000
}

func (r Report) String() string {
	return fmt.Sprintf("update=%.2fms draw=%.2fms total=%.2fms frames=%d late=%d (%.1f%%) heap=%dMB uptime=%v",
		r.AvgUpdateMs, r.AvgDrawMs, r.AvgTotalMs, r.Frames, r.LateFrames, r.LateRate, r.HeapMB, r.Uptime.Round(time.Second))
}

// NewFrameMonitor averages over window frames; budget is one frame at the
// target rate
func NewFrameMonitor(window int, budget time.Duration) *FrameMonitor {
	return &FrameMonitor{
		budget:  budget,
		update:  NewRollingAverage(window),
		draw:    NewRollingAverage(window),
		total:   NewRollingAverage(window),
		started: time.Now(),
		now:     time.Now,
	}
}

// RecordFrame records one frame's update and draw durations
func (m *FrameMonitor) RecordFrame(update, draw time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.update.Add(update)
	m.draw.Add(draw)
	m.total.Add(update + draw)
	m.frames++
	if update+draw > m.budget {
		m.late++
	}
}

// Report returns the current metrics
func (m *FrameMonitor) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	lateRate := 0.0
	if m.frames > 0 {
		lateRate = float64(m.late) / float64(m.frames) * 100
	}

	return Report{
		AvgUpdateMs: millis(m.update.Average()),
		AvgDrawMs:   millis(m.draw.Average()),
		AvgTotalMs:  millis(m.total.Average()),
		Frames:      m.frames,
		LateFrames:  m.late,
		LateRate:    lateRate,
		HeapMB:      ms.Alloc / (1024 * 1024),
		Uptime:      m.now().Sub(m.started),
	}
}

// Budget returns the per-frame budget
func (m *FrameMonitor) Budget() time.Duration {
	return m.budget
}

// Reset clears all metrics
func (m *FrameMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.update.Reset()
	m.draw.Reset()
	m.total.Reset()
	m.frames = 0
	m.late = 0
	m.started = m.now()
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
