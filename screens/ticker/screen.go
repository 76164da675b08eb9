package ticker

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"ticker-frame/pkg/config"
	"ticker-frame/pkg/content"
	"ticker-frame/pkg/feeds"
	"ticker-frame/pkg/icons"
	"ticker-frame/pkg/input"
	"ticker-frame/pkg/markup"
	"ticker-frame/pkg/performance"
	"ticker-frame/pkg/refresh"
	"ticker-frame/pkg/settings"
	"ticker-frame/pkg/sourcesFs"
	core "ticker-frame/pkg/ticker"
	"ticker-frame/ui"
	"ticker-frame/widgets/linkqr"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	alertText      = "⚠ 地震情報"
	clockTemplate  = "│00:00:00│"
	slotPadding    = 16
	hudDuration    = 2 * time.Second
	reportInterval = 5 * time.Second
	blinkPeriod    = 500 * time.Millisecond
	textWidthCap   = 2048
)

var (
	textColor  = sdl.Color{R: 255, G: 255, B: 255, A: 255}
	alertColor = sdl.Color{R: 255, G: 230, B: 0, A: 255}
	hudColor   = sdl.Color{R: 148, G: 163, B: 184, A: 255}
)

// NewTickerScreen builds the bar, starts the background refresh and icon
// loader, and the clock
func NewTickerScreen(window *sdl.Window, renderer *sdl.Renderer, cfg *config.Config, sources sourcesFs.Sources) (*TickerScreen, error) {
	fonts, err := ui.LoadFonts(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load fonts: %w", err)
	}

	userSettings := settings.Load(cfg.SettingsPath)

	presentation := cfg.Presentation()
	if userSettings.RefreshPolicy != "" {
		policy, err := core.ParsePolicy(userSettings.RefreshPolicy)
		if err != nil {
			log.Printf("NewTickerScreen: ignoring saved policy: %v", err)
		} else {
			presentation.Policy = policy
		}
	}

	speeds := core.NewSpeeds()
	speeds.Set(content.Weather, userSettings.WeatherSpeed)
	speeds.Set(content.NewsBody, userSettings.NewsSpeed)
	speeds.Set(content.QuakeBody, userSettings.QuakeSpeed)

	loop := core.NewLoop(time.Now())

	ts := &TickerScreen{
		cfg:          cfg,
		window:       window,
		renderer:     renderer,
		fonts:        fonts,
		loop:         loop,
		speeds:       speeds,
		fadeFrom:     1,
		fadeTo:       1,
		icons:        make(map[string]*iconTexture),
		settings:     userSettings,
		keyTracker:   input.NewKeyPressTracker(),
		mouseTracker: input.NewMousePressTracker(),
		monitor:      performance.NewFrameMonitor(int(cfg.FrameRate)*2, cfg.FrameBudget()),
		lastReport:   time.Now(),
	}

	if ts.alertLabel, ts.alertW, ts.alertH, err = ui.TextTexture(renderer, alertText, alertColor, fonts.Small); err != nil {
		log.Printf("NewTickerScreen: alert label unavailable: %v", err)
	}
	ts.maxTextWidth = textureWidthLimit(renderer)
	ts.qr = linkqr.NewWidget(0)
	ts.layout()

	ts.scheduler = core.NewScheduler(loop, ts, speeds, presentation)

	client := feeds.NewClient(cfg.HTTPTimeout, cfg.HostInterval)
	// icons get their own client so a burst of them never delays a refresh
	ts.loader = icons.NewLoader(feeds.NewClient(cfg.HTTPTimeout, cfg.HostInterval), 64)
	ts.refresher = &refresh.Refresher{
		Weather:  feeds.NewWeatherFetcher(client, sources.WeatherURL, sources.IconBaseURL),
		News:     feeds.NewNewsFetcher(client, sources.News),
		Quake:    feeds.NewQuakeFetcher(client, sources.QuakeURL, cfg.Location, cfg.QuakeMaxAge),
		Interval: cfg.RefreshInterval,
		OnQueue:  refresh.Deliver(loop, ts.scheduler),
	}

	ctx, cancel := context.WithCancel(context.Background())
	ts.cancel = cancel
	go ts.loader.Run(ctx)
	go ts.refresher.Run(ctx)

	core.StartClock(loop, ts, time.Now)

	log.Printf("NewTickerScreen: %dx%d viewport=%d maxText=%d policy=%s", ts.winW, ts.winH, ts.viewport.W, ts.maxTextWidth, presentation.Policy)
	return ts, nil
}

// layout splits the bar into alert, marquee, QR and clock slots
func (ts *TickerScreen) layout() {
	ts.winW, ts.winH = ts.window.GetSize()

	clockW, _, err := ts.fonts.Main.SizeUTF8(clockTemplate)
	if err != nil {
		clockW = int(ts.winH) * 4
	}

	ts.alertSlot = sdl.Rect{X: 0, Y: 0, W: ts.alertW + 2*slotPadding, H: ts.winH}
	ts.clockSlot = sdl.Rect{X: ts.winW - int32(clockW) - 2*slotPadding, Y: 0, W: int32(clockW) + 2*slotPadding, H: ts.winH}

	qrSize := ts.winH - 12
	ts.qrSlot = sdl.Rect{X: ts.clockSlot.X - qrSize - slotPadding, Y: 6, W: qrSize + slotPadding, H: qrSize}

	ts.viewport = sdl.Rect{
		X: ts.alertSlot.W,
		Y: 0,
		W: ts.qrSlot.X - ts.alertSlot.W,
		H: ts.winH,
	}
	ts.iconSize = int32(ts.fonts.Main.Height())

	if err := ts.qr.SetSize(ts.renderer, ts.qrSlot.H); err != nil {
		log.Printf("TickerScreen.layout: %v", err)
	}
}

// textureWidthLimit is the widest texture the renderer accepts, capped so
// text textures stay small on drivers that report no limit
func textureWidthLimit(renderer *sdl.Renderer) int32 {
	info, err := renderer.GetInfo()
	if err != nil || info.MaxTextureWidth <= 0 || info.MaxTextureWidth > textWidthCap {
		return textWidthCap
	}
	return info.MaxTextureWidth
}

// ViewportWidth implements core.Display
func (ts *TickerScreen) ViewportWidth() float64 {
	return float64(ts.viewport.W)
}

// ContentWidth implements core.Display
func (ts *TickerScreen) ContentWidth() float64 {
	return ts.width
}

// SetContent renders item into segments, replacing the previous content
func (ts *TickerScreen) SetContent(item content.Item) {
	ts.destroySegments()
	ts.item = item

	var parts []markup.Segment
	if item.Kind == content.Weather {
		parts = markup.Parse(item.Payload)
	} else if item.Payload != "" {
		parts = []markup.Segment{{Kind: markup.Text, Text: item.Payload}}
	}

	for _, p := range parts {
		switch p.Kind {
		case markup.Image:
			seg := segment{src: p.Src, w: ts.iconSize, h: ts.iconSize}
			if icon, ok := ts.icons[p.Src]; ok {
				seg.texture = icon.texture
			} else {
				ts.loader.Request(p.Src)
			}
			ts.segments = append(ts.segments, seg)
		default:
			ts.appendText(p.Text)
		}
	}

	ts.window.SetTitle(markup.PlainText(parts))

	ts.width = 0
	for _, s := range ts.segments {
		ts.width += float64(s.w)
	}

	link := ""
	if item.Kind == content.NewsTitle || item.Kind == content.NewsBody {
		link = item.Link
	}
	if err := ts.qr.SetLink(ts.renderer, link); err != nil {
		log.Printf("TickerScreen.SetContent: %v", err)
	}
}

// appendText adds text as one or more segments, each narrow enough to fit in
// a single texture
func (ts *TickerScreen) appendText(text string) {
	chunks, err := markup.SplitToWidth(text, int(ts.maxTextWidth), func(s string) (int, error) {
		w, _, err := ts.fonts.Main.SizeUTF8(s)
		return w, err
	})
	if err != nil {
		log.Printf("TickerScreen.appendText: %v", err)
		chunks = []string{text}
	}

	for _, c := range chunks {
		tex, w, h, err := ui.TextTexture(ts.renderer, c, textColor, ts.fonts.Main)
		if err != nil {
			log.Printf("TickerScreen.appendText: %v", err)
			continue
		}
		ts.segments = append(ts.segments, segment{texture: tex, w: w, h: h})
	}
}

// Clear implements core.Display
func (ts *TickerScreen) Clear() {
	ts.destroySegments()
	ts.item = content.Item{}
	ts.width = 0
	ts.qr.SetLink(ts.renderer, "")
}

// SetLeft implements core.Display
func (ts *TickerScreen) SetLeft(x float64) {
	ts.left = x
}

// SetOpacity starts an opacity animation from the current value
func (ts *TickerScreen) SetOpacity(opacity float64, transition time.Duration) {
	ts.fadeFrom = ts.opacity()
	ts.fadeTo = opacity
	ts.fadeStart = ts.loop.Now()
	ts.fadeDur = transition
}

// SetAlertVisible implements core.Display
func (ts *TickerScreen) SetAlertVisible(visible bool) {
	ts.alertVisible = visible
}

// SetClock implements core.ClockSink
func (ts *TickerScreen) SetClock(text string) {
	if text == ts.clockText {
		return
	}
	ts.clockText = text
	if ts.clockTexture != nil {
		ts.clockTexture.Destroy()
		ts.clockTexture = nil
	}
	tex, w, h, err := ui.TextTexture(ts.renderer, text, textColor, ts.fonts.Main)
	if err != nil {
		log.Printf("TickerScreen.SetClock: %v", err)
		return
	}
	ts.clockTexture, ts.clockW, ts.clockH = tex, w, h
}

func (ts *TickerScreen) opacity() float64 {
	if ts.fadeDur <= 0 {
		return ts.fadeTo
	}
	p := float64(ts.loop.Now().Sub(ts.fadeStart)) / float64(ts.fadeDur)
	p = math.Max(0, math.Min(1, p))
	return ts.fadeFrom + (ts.fadeTo-ts.fadeFrom)*p
}

// Update handles input, uploads finished icons and runs one loop frame
func (ts *TickerScreen) Update() error {
	start := time.Now()

	ts.keyState = sdl.GetKeyboardState()
	_, _, ts.mouseButtons = sdl.GetMouseState()
	ts.handleInput()

	if w, h := ts.window.GetSize(); w != ts.winW || h != ts.winH {
		ts.layout()
	}

	ts.drainIcons()
	ts.loop.RunFrame(start)

	ts.updateTime = time.Since(start)
	return nil
}

func (ts *TickerScreen) handleInput() {
	changed := false
	for _, b := range ts.keyTracker.PressedSpeedBindings(ts.keyState, input.DefaultSpeedBindings) {
		ts.speeds.Adjust(b.Kind, b.Delta, input.MinSpeed, input.MaxSpeed)
		changed = true
	}

	if changed {
		ts.settings.WeatherSpeed = ts.speeds.Get(content.Weather)
		ts.settings.NewsSpeed = ts.speeds.Get(content.NewsBody)
		ts.settings.QuakeSpeed = ts.speeds.Get(content.QuakeBody)
	}

	if ts.keyTracker.IsPressed(ts.keyState, sdl.SCANCODE_P) {
		policy := ts.scheduler.Policy().Next()
		ts.scheduler.SetPolicy(policy)
		ts.settings.RefreshPolicy = policy.String()
		log.Printf("TickerScreen.handleInput: refresh policy now %s", policy)
		changed = true
	}

	if changed {
		if err := settings.Save(ts.cfg.SettingsPath, ts.settings); err != nil {
			log.Printf("TickerScreen.handleInput: failed to save settings: %v", err)
		}
	}

	if changed || ts.mouseTracker.IsPressed(ts.mouseButtons, sdl.ButtonLMask()) {
		ts.showHUD()
	}
}

func (ts *TickerScreen) showHUD() {
	ts.hudText = fmt.Sprintf("天気 %.0f  ニュース %.0f  地震 %.0f px/s  更新 %s",
		ts.speeds.Get(content.Weather), ts.speeds.Get(content.NewsBody), ts.speeds.Get(content.QuakeBody), ts.scheduler.Policy())
	ts.hudUntil = time.Now().Add(hudDuration)
}

// drainIcons turns downloaded icons into textures without blocking
func (ts *TickerScreen) drainIcons() {
	for {
		select {
		case res := <-ts.loader.Results():
			icon := &iconTexture{failed: res.Err != nil}
			if res.Err == nil {
				tex, w, h, err := ui.TextureFromImage(ts.renderer, res.Image)
				if err != nil {
					log.Printf("TickerScreen.drainIcons: %v", err)
					icon.failed = true
				} else {
					icon.texture, icon.w, icon.h = tex, w, h
				}
			}
			ts.icons[res.Src] = icon

			for i := range ts.segments {
				if ts.segments[i].src == res.Src {
					ts.segments[i].texture = icon.texture
				}
			}
		default:
			return
		}
	}
}

// Draw renders the bar
func (ts *TickerScreen) Draw() error {
	start := time.Now()

	ts.renderer.SetDrawColor(0, 0, 0, 255)
	ts.renderer.Clear()

	full := sdl.Rect{X: 0, Y: 0, W: ts.winW, H: ts.winH}
	ui.DrawGradientRect(ts.renderer, full, ui.BarTop, ui.BarBottom)

	ts.drawAlert()

	if err := ts.drawContent(); err != nil {
		return err
	}

	if ts.qr.Visible() {
		alpha := uint8(math.Round(ts.opacity() * 255))
		if err := ts.qr.Render(ts.renderer, ts.qrSlot.X+ts.qrSlot.W-ts.qr.Size(), ts.qrSlot.Y, alpha); err != nil {
			log.Printf("TickerScreen.Draw: %v", err)
		}
	}

	if ts.clockTexture != nil {
		x := ts.clockSlot.X + (ts.clockSlot.W-ts.clockW)/2
		y := (ts.winH - ts.clockH) / 2
		ts.renderer.Copy(ts.clockTexture, nil, &sdl.Rect{X: x, Y: y, W: ts.clockW, H: ts.clockH})
	}

	if time.Now().Before(ts.hudUntil) {
		if err := ui.RenderText(ts.renderer, ts.hudText, ts.viewport.X+4, 2, hudColor, ts.fonts.Small); err != nil {
			log.Printf("TickerScreen.Draw: %v", err)
		}
	}

	ts.renderer.Present()

	ts.monitor.RecordFrame(ts.updateTime, time.Since(start))
	ts.reportPerformance()
	return nil
}

func (ts *TickerScreen) drawAlert() {
	if !ts.alertVisible || ts.alertLabel == nil {
		return
	}
	ui.DrawGradientRect(ts.renderer, ts.alertSlot, ui.AlertTop, ui.AlertBottom)

	// blink on the loop clock so it stays in step with the marquee
	if (ts.loop.Now().UnixNano()/int64(blinkPeriod))%2 == 1 {
		return
	}
	x := ts.alertSlot.X + (ts.alertSlot.W-ts.alertW)/2
	y := (ts.winH - ts.alertH) / 2
	ts.renderer.Copy(ts.alertLabel, nil, &sdl.Rect{X: x, Y: y, W: ts.alertW, H: ts.alertH})
}

func (ts *TickerScreen) drawContent() error {
	if len(ts.segments) == 0 {
		return nil
	}

	alpha := uint8(math.Round(ts.opacity() * 255))
	if alpha == 0 {
		return nil
	}

	if err := ts.renderer.SetClipRect(&ts.viewport); err != nil {
		return fmt.Errorf("failed to set clip rect: %w", err)
	}
	defer ts.renderer.SetClipRect(nil)

	x := float64(ts.viewport.X) + ts.left
	right := float64(ts.viewport.X + ts.viewport.W)
	for _, s := range ts.segments {
		segX := x
		x += float64(s.w)
		if s.texture == nil || x < float64(ts.viewport.X) || segX > right {
			continue
		}

		s.texture.SetAlphaMod(alpha)
		dst := sdl.Rect{
			X: int32(math.Round(segX)),
			Y: ts.viewport.Y + (ts.viewport.H-s.h)/2,
			W: s.w,
			H: s.h,
		}
		if err := ts.renderer.Copy(s.texture, nil, &dst); err != nil {
			return fmt.Errorf("failed to draw segment: %w", err)
		}
	}
	return nil
}

func (ts *TickerScreen) reportPerformance() {
	if time.Since(ts.lastReport) < reportInterval {
		return
	}
	ts.lastReport = time.Now()

	report := ts.monitor.Report()
	if report.Healthy(ts.monitor.Budget()) {
		log.Printf("TickerScreen: %s state=%s", report, ts.scheduler.State())
	} else {
		log.Printf("TickerScreen: frame budget exceeded: %s", report)
	}
}

// destroySegments frees text textures; icon textures stay cached
func (ts *TickerScreen) destroySegments() {
	for _, s := range ts.segments {
		if s.src == "" && s.texture != nil {
			s.texture.Destroy()
		}
	}
	ts.segments = nil
}

// Close stops background work and frees SDL resources
func (ts *TickerScreen) Close() {
	if ts.cancel != nil {
		ts.cancel()
	}
	ts.scheduler.Stop()
	ts.destroySegments()

	for _, icon := range ts.icons {
		if icon.texture != nil {
			icon.texture.Destroy()
		}
	}
	ts.icons = nil

	if ts.qr != nil {
		ts.qr.Destroy()
	}
	if ts.clockTexture != nil {
		ts.clockTexture.Destroy()
	}
	if ts.alertLabel != nil {
		ts.alertLabel.Destroy()
	}
	if ts.fonts != nil {
		ts.fonts.Close()
	}
}
