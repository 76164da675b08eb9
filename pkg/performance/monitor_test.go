package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRollingAverageWindow(t *testing.T) {
	r := NewRollingAverage(3)
	assert.Zero(t, r.Average())

	r.Add(10 * time.Millisecond)
	r.Add(20 * time.Millisecond)
	assert.Equal(t, 15*time.Millisecond, r.Average())
	assert.Equal(t, 2, r.Count())

	r.Add(30 * time.Millisecond)
	r.Add(40 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, r.Average())
	assert.Equal(t, 3, r.Count())

	r.Reset()
	assert.Zero(t, r.Average())
	assert.Zero(t, r.Count())
}

func TestFrameMonitorReport(t *testing.T) {
	budget := time.Second / 60
	m := NewFrameMonitor(10, budget)
	start := m.started
	m.now = func() time.Time { return start.Add(90 * time.Second) }

	m.RecordFrame(2*time.Millisecond, 4*time.Millisecond)
	m.RecordFrame(4*time.Millisecond, 6*time.Millisecond)
	m.RecordFrame(10*time.Millisecond, 10*time.Millisecond)

	r := m.Report()
	assert.InDelta(t, 5.333, r.AvgUpdateMs, 0.001)
	assert.InDelta(t, 6.666, r.AvgDrawMs, 0.001)
	assert.InDelta(t, 12.0, r.AvgTotalMs, 0.001)
	assert.Equal(t, 3, r.Frames)
	assert.Equal(t, 1, r.LateFrames)
	assert.InDelta(t, 33.33, r.LateRate, 0.01)
	assert.Equal(t, 90*time.Second, r.Uptime)
	assert.False(t, r.Healthy(budget))
	assert.Contains(t, r.String(), "late=1")

	m.Reset()
	r = m.Report()
	assert.Zero(t, r.Frames)
	assert.True(t, r.Healthy(budget))
}
