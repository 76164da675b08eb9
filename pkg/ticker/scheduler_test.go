package ticker

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-frame/pkg/content"
)

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type shown struct {
	payload string
	at      time.Time
}

type fakeDisplay struct {
	loop       *Loop
	viewport   float64
	widths     map[string]float64
	item       content.Item
	left       float64
	opacity    float64
	transition time.Duration
	alert      bool
	cleared    int
	leftCalls  int
	shown      []shown
}

func newFakeDisplay(loop *Loop, viewport float64, widths map[string]float64) *fakeDisplay {
	return &fakeDisplay{loop: loop, viewport: viewport, widths: widths}
}

func (d *fakeDisplay) ViewportWidth() float64 { return d.viewport }
func (d *fakeDisplay) ContentWidth() float64  { return d.widths[d.item.Payload] }
func (d *fakeDisplay) Clear()                 { d.item = content.Item{}; d.cleared++ }
func (d *fakeDisplay) SetLeft(x float64)      { d.left = x; d.leftCalls++ }
func (d *fakeDisplay) SetAlertVisible(v bool) { d.alert = v }

func (d *fakeDisplay) SetContent(item content.Item) {
	d.item = item
	d.shown = append(d.shown, shown{payload: item.Payload, at: d.loop.Now()})
}

func (d *fakeDisplay) SetOpacity(o float64, transition time.Duration) {
	d.opacity = o
	d.transition = transition
}

func (d *fakeDisplay) payloads() []string {
	out := make([]string, len(d.shown))
	for i, s := range d.shown {
		out[i] = s.payload
	}
	return out
}

type harness struct {
	loop    *Loop
	display *fakeDisplay
	speeds  *Speeds
	sched   *Scheduler
	frame   int
}

func newHarness(viewport float64, widths map[string]float64, cfg Config) *harness {
	loop := NewLoop(t0)
	d := newFakeDisplay(loop, viewport, widths)
	speeds := NewSpeeds()
	return &harness{
		loop:    loop,
		display: d,
		speeds:  speeds,
		sched:   NewScheduler(loop, d, speeds, cfg),
	}
}

// step runs one 60 fps frame
func (h *harness) step() {
	h.frame++
	h.loop.RunFrame(t0.Add(time.Duration(h.frame) * time.Second / 60))
}

func (h *harness) stepUntil(t *testing.T, cond func() bool, limit int) int {
	t.Helper()
	for i := 1; i <= limit; i++ {
		h.step()
		if cond() {
			return i
		}
	}
	t.Fatalf("condition not met within %d frames", limit)
	return 0
}

func weather(p string) content.Item { return content.Item{Kind: content.Weather, Payload: p} }
func title(p string) content.Item   { return content.Item{Kind: content.NewsTitle, Payload: p} }
func body(p string) content.Item    { return content.Item{Kind: content.NewsBody, Payload: p} }

func TestAdvance(t *testing.T) {
	assert.Equal(t, 797.0, Advance(800, 180, 60))
	assert.Equal(t, 98.0, Advance(100, 120, 60))
}

func TestScrollExitFrameCount(t *testing.T) {
	tests := []struct {
		name     string
		viewport float64
		width    float64
		speed    float64
	}{
		{"fractional frames", 800, 200, 180},
		{"short content", 300, 17, 120},
		{"exact multiple exits one frame after reaching zero", 800, 200, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.viewport, map[string]float64{"A": tt.width, "B": 1}, DefaultConfig())
			h.speeds.Set(content.Weather, tt.speed)
			h.sched.SupplyQueue(content.Queue{weather("A"), weather("B")})
			h.sched.Start()

			frames := h.stepUntil(t, func() bool { return h.sched.Index() == 1 }, 10000)

			step := tt.speed / 60
			want := int(math.Floor((tt.viewport+tt.width)/step)) + 1
			if r := (tt.viewport + tt.width) / step; r != math.Floor(r) {
				assert.Equal(t, int(math.Ceil(r)), want)
			}
			assert.Equal(t, want, frames)

			// one frame earlier the right edge was still at or past the origin
			before := tt.viewport - float64(frames-1)*step
			assert.GreaterOrEqual(t, before+tt.width, 0.0)
		})
	}
}

func TestScrollStartsAtTrailingEdge(t *testing.T) {
	h := newHarness(640, map[string]float64{"A": 100}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A")})
	h.sched.Start()

	assert.Equal(t, Scrolling, h.sched.State())
	assert.Equal(t, 640.0, h.display.left)
	assert.Equal(t, 1.0, h.display.opacity)

	h.step()
	assert.Equal(t, 637.0, h.display.left)
}

func TestSpeedChangeAppliesNextFrame(t *testing.T) {
	h := newHarness(1000, map[string]float64{"A": 100}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A")})
	h.sched.Start()

	h.step()
	assert.Equal(t, 997.0, h.display.left)

	h.speeds.Set(content.Weather, 600)
	h.step()
	assert.Equal(t, 987.0, h.display.left)
}

func TestFadeCycleTiming(t *testing.T) {
	for _, payload := range []string{"短い", "とても長い見出しがここに入ります。とても長い見出しがここに入ります。"} {
		h := newHarness(800, map[string]float64{payload: 5000, "next": 10}, DefaultConfig())
		h.sched.SupplyQueue(content.Queue{title(payload), weather("next")})
		h.sched.Start()

		assert.Equal(t, Dwelling, h.sched.State())
		assert.Equal(t, 10.0, h.display.left)

		h.loop.RunFrame(t0.Add(799 * time.Millisecond))
		assert.Equal(t, Dwelling, h.sched.State())

		h.loop.RunFrame(t0.Add(800 * time.Millisecond))
		assert.Equal(t, FadingOut, h.sched.State())
		assert.Equal(t, 0.0, h.display.opacity)
		assert.Equal(t, time.Second, h.display.transition)

		h.loop.RunFrame(t0.Add(2299 * time.Millisecond))
		assert.Equal(t, FadingOut, h.sched.State())
		assert.Equal(t, 0, h.sched.Index())

		h.loop.RunFrame(t0.Add(2300 * time.Millisecond))
		assert.Equal(t, 1, h.sched.Index())
		require.Len(t, h.display.shown, 2)
		assert.Equal(t, 2300*time.Millisecond, h.display.shown[1].at.Sub(h.display.shown[0].at))
	}
}

func TestFadeCycleTimingWithLateFrame(t *testing.T) {
	h := newHarness(800, map[string]float64{"B": 10, "A": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{title("B"), weather("A")})
	h.sched.Start()

	h.loop.RunFrame(t0.Add(5 * time.Second))

	require.Len(t, h.display.shown, 2)
	assert.Equal(t, 2300*time.Millisecond, h.display.shown[1].at.Sub(h.display.shown[0].at))
	assert.Equal(t, Scrolling, h.sched.State())
}

func TestIndexWrapsAround(t *testing.T) {
	h := newHarness(100, map[string]float64{"A": 10, "B": 10, "C": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A"), weather("B"), weather("C")})
	h.sched.Start()

	h.stepUntil(t, func() bool { return h.sched.Index() == 2 }, 1000)
	h.stepUntil(t, func() bool { return h.sched.Index() != 2 }, 1000)

	assert.Equal(t, 0, h.sched.Index())
	assert.Equal(t, []string{"A", "B", "C", "A"}, h.display.payloads())
}

func TestSingleItemQueueRepeats(t *testing.T) {
	h := newHarness(100, map[string]float64{"T": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{title("T")})
	h.sched.Start()

	h.loop.RunFrame(t0.Add(2300 * time.Millisecond))

	assert.Equal(t, 0, h.sched.Index())
	assert.Equal(t, Dwelling, h.sched.State())
	assert.Equal(t, []string{"T", "T"}, h.display.payloads())
}

func TestStartWithEmptyQueuePauses(t *testing.T) {
	h := newHarness(100, nil, DefaultConfig())
	h.sched.Start()

	assert.Equal(t, Paused, h.sched.State())
	frames, timers := h.loop.Pending()
	assert.Zero(t, frames)
	assert.Zero(t, timers)

	h.sched.SupplyQueue(content.Queue{weather("A")})
	assert.Equal(t, Scrolling, h.sched.State())
	assert.Equal(t, 0, h.sched.Index())
	assert.Equal(t, []string{"A"}, h.display.payloads())
}

func TestEmptyRefreshPausesAfterCurrentItem(t *testing.T) {
	h := newHarness(100, map[string]float64{"A": 10, "B": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A"), weather("B")})
	h.sched.Start()
	h.step()

	h.sched.SupplyQueue(nil)
	assert.Equal(t, Scrolling, h.sched.State())

	h.stepUntil(t, func() bool { return h.sched.State() == Paused }, 1000)
	assert.Equal(t, 1, h.display.cleared)
	assert.False(t, h.display.alert)
	frames, timers := h.loop.Pending()
	assert.Zero(t, frames)
	assert.Zero(t, timers)

	// nothing happens while paused
	for i := 0; i < 10; i++ {
		h.step()
	}
	assert.Equal(t, Paused, h.sched.State())

	h.sched.SupplyQueue(content.Queue{weather("B")})
	assert.Equal(t, Scrolling, h.sched.State())
	assert.Equal(t, []string{"A", "B"}, h.display.payloads())
}

func TestPolicyContinueWrapsAgainstNewQueue(t *testing.T) {
	h := newHarness(100, map[string]float64{"A": 10, "B": 10, "C": 10, "X": 10, "Y": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A"), weather("B"), weather("C")})
	h.sched.Start()
	h.stepUntil(t, func() bool { return h.sched.Index() == 2 }, 1000)

	h.sched.SupplyQueue(content.Queue{weather("X"), weather("Y")})
	assert.Equal(t, "C", h.sched.Current().Payload)

	h.stepUntil(t, func() bool { return h.sched.Current().Payload != "C" }, 1000)
	assert.Equal(t, 1, h.sched.Index())
	assert.Equal(t, "Y", h.sched.Current().Payload)
}

func TestPolicyResetFinishesCurrentItem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicyReset
	h := newHarness(100, map[string]float64{"A": 10, "B": 10, "X": 10, "Y": 10}, cfg)
	h.sched.SupplyQueue(content.Queue{weather("A"), weather("B")})
	h.sched.Start()
	h.stepUntil(t, func() bool { return h.sched.Index() == 1 }, 1000)

	h.sched.SupplyQueue(content.Queue{weather("X"), weather("Y")})
	assert.Equal(t, "B", h.sched.Current().Payload)

	h.stepUntil(t, func() bool { return h.sched.Current().Payload != "B" }, 1000)
	assert.Equal(t, 0, h.sched.Index())
	assert.Equal(t, "X", h.sched.Current().Payload)
}

func TestPolicyRestartCancelsInFlightFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicyRestart
	h := newHarness(1000, map[string]float64{"A": 10, "B": 10, "X": 10}, cfg)
	h.sched.SupplyQueue(content.Queue{weather("A"), weather("B")})
	h.sched.Start()
	h.step()
	h.step()

	h.sched.SupplyQueue(content.Queue{weather("X")})
	assert.Equal(t, "X", h.sched.Current().Payload)
	assert.Equal(t, 1000.0, h.display.left)

	frames, _ := h.loop.Pending()
	assert.Equal(t, 1, frames)

	calls := h.display.leftCalls
	h.step()
	assert.Equal(t, calls+1, h.display.leftCalls, "exactly one animation chain drives the display")
	assert.Equal(t, 997.0, h.display.left)
}

func TestPolicyRestartDuringFadeStopsTimer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicyRestart
	h := newHarness(1000, map[string]float64{"X": 10}, cfg)
	h.sched.SupplyQueue(content.Queue{title("T")})
	h.sched.Start()

	h.sched.SupplyQueue(content.Queue{weather("X")})

	_, timers := h.loop.Pending()
	assert.Zero(t, timers)
	assert.Equal(t, Scrolling, h.sched.State())
}

func TestStopCancelsEverything(t *testing.T) {
	h := newHarness(1000, map[string]float64{"A": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A")})
	h.sched.Start()
	h.sched.Stop()

	frames, timers := h.loop.Pending()
	assert.Zero(t, frames)
	assert.Zero(t, timers)
	assert.Equal(t, Stopped, h.sched.State())

	left := h.display.left
	h.step()
	assert.Equal(t, left, h.display.left)

	h.sched.Start()
	assert.Equal(t, Scrolling, h.sched.State())
}

func TestStopHidesAlertAndClears(t *testing.T) {
	h := newHarness(100, map[string]float64{"Q": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{{Kind: content.QuakeTitle, Payload: "Q"}})
	h.sched.Start()
	require.True(t, h.display.alert)

	h.sched.Stop()

	assert.False(t, h.display.alert)
	assert.Equal(t, 1, h.display.cleared)
	assert.Equal(t, content.Item{}, h.display.item)
	assert.Equal(t, content.Item{}, h.sched.Current())

	h.sched.Start()
	assert.True(t, h.display.alert)
	assert.Equal(t, "Q", h.display.item.Payload)
}

func TestStartIsIdempotentWhilePresenting(t *testing.T) {
	h := newHarness(1000, map[string]float64{"A": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A")})
	h.sched.Start()
	h.sched.Start()

	frames, _ := h.loop.Pending()
	assert.Equal(t, 1, frames)
	assert.Len(t, h.display.shown, 1)
}

func TestAlertVisibleOnlyForQuakeItems(t *testing.T) {
	h := newHarness(100, map[string]float64{"Q": 10, "W": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{
		{Kind: content.QuakeTitle, Payload: "Q"},
		{Kind: content.QuakeBody, Payload: "Q"},
		weather("W"),
	})
	h.sched.Start()
	assert.True(t, h.display.alert)

	h.loop.RunFrame(t0.Add(2300 * time.Millisecond))
	assert.Equal(t, content.QuakeBody, h.sched.Current().Kind)
	assert.True(t, h.display.alert)

	h.frame = 2300 * 60 / 1000
	h.stepUntil(t, func() bool { return h.sched.Index() == 2 }, 1000)
	assert.False(t, h.display.alert)
}

func TestEndToEndPresentationOrder(t *testing.T) {
	h := newHarness(300, map[string]float64{"A": 100, "B": 400, "C": 50}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A"), title("B"), body("C")})
	h.sched.Start()

	for h.frame < 60*20 {
		h.step()

		frames, timers := h.loop.Pending()
		switch h.sched.State() {
		case Scrolling:
			require.Equal(t, 1, frames)
			require.Zero(t, timers)
		case Dwelling, FadingOut:
			require.Zero(t, frames)
			require.Equal(t, 1, timers)
		}
	}

	got := h.display.payloads()
	require.GreaterOrEqual(t, len(got), 7)
	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C", "A"}, got[:7])

	// A needs 400px at 3px per frame
	assert.Equal(t, t0, h.display.shown[0].at)
	assert.Equal(t, t0.Add(134*time.Second/60), h.display.shown[1].at)
	assert.Equal(t, 2300*time.Millisecond, h.display.shown[2].at.Sub(h.display.shown[1].at))
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyContinue, "continue": PolicyContinue, "RESET": PolicyReset, "restart": PolicyRestart} {
		got, err := ParsePolicy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParsePolicy("rewind")
	assert.Error(t, err)

	assert.Equal(t, PolicyReset, PolicyContinue.Next())
	assert.Equal(t, PolicyRestart, PolicyReset.Next())
	assert.Equal(t, PolicyContinue, PolicyRestart.Next())
}

func TestSetPolicyAppliesToNextRefresh(t *testing.T) {
	h := newHarness(1000, map[string]float64{"A": 10, "X": 10}, DefaultConfig())
	h.sched.SupplyQueue(content.Queue{weather("A"), weather("B")})
	h.sched.Start()

	h.sched.SetPolicy(PolicyRestart)
	assert.Equal(t, PolicyRestart, h.sched.Policy())

	h.sched.SupplyQueue(content.Queue{weather("X")})
	assert.Equal(t, "X", h.sched.Current().Payload)
}
