package ticker

import (
	"context"
	"time"

	"ticker-frame/pkg/config"
	"ticker-frame/pkg/content"
	"ticker-frame/pkg/icons"
	"ticker-frame/pkg/input"
	"ticker-frame/pkg/performance"
	"ticker-frame/pkg/refresh"
	"ticker-frame/pkg/settings"
	core "ticker-frame/pkg/ticker"
	"ticker-frame/ui"
	"ticker-frame/widgets/linkqr"

	"github.com/veandco/go-sdl2/sdl"
)

// TickerScreen is the marquee bar. It is the scheduler's display and the
// clock's sink, and owns the loop that drives both.
type TickerScreen struct {
	cfg *config.Config

	// SDL2 rendering
	window   *sdl.Window
	renderer *sdl.Renderer
	fonts    *ui.Fonts

	// Presentation core, only touched on the render thread
	loop      *core.Loop
	speeds    *core.Speeds
	scheduler *core.Scheduler

	// Background work
	refresher *refresh.Refresher
	loader    *icons.Loader
	cancel    context.CancelFunc

	// Layout, recomputed when the window size changes
	winW, winH int32
	viewport   sdl.Rect
	alertSlot  sdl.Rect
	qrSlot     sdl.Rect
	clockSlot  sdl.Rect
	iconSize   int32

	// maxTextWidth bounds one text texture
	maxTextWidth int32

	// Current item
	item     content.Item
	segments []segment
	width    float64
	left     float64

	// Opacity animation
	fadeFrom  float64
	fadeTo    float64
	fadeStart time.Time
	fadeDur   time.Duration

	alertVisible bool
	alertLabel   *sdl.Texture
	alertW       int32
	alertH       int32

	clockText    string
	clockTexture *sdl.Texture
	clockW       int32
	clockH       int32

	icons map[string]*iconTexture
	qr    *linkqr.Widget

	// Speed HUD shown briefly after a change
	hudText  string
	hudUntil time.Time

	// Persisted user preferences
	settings settings.Settings

	// Input tracking
	keyState     []uint8
	mouseButtons uint32
	keyTracker   input.KeyPressTracker
	mouseTracker input.MousePressTracker

	monitor    *performance.FrameMonitor
	lastReport time.Time
	updateTime time.Duration
}

// segment is one drawable run of the current item
type segment struct {
	texture *sdl.Texture // nil for an icon that has not arrived
	src     string       // icon source, empty for text
	w, h    int32
}

type iconTexture struct {
	texture *sdl.Texture
	w, h    int32
	failed  bool
}
