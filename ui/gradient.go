package ui

import "github.com/veandco/go-sdl2/sdl"

// Palette of the ticker bar
var (
	BarTop      = [3]uint8{18, 24, 38}
	BarBottom   = [3]uint8{6, 8, 14}
	AlertTop    = [3]uint8{160, 20, 20}
	AlertBottom = [3]uint8{90, 8, 8}
)

// DrawGradientRect fills a rectangle with a vertical gradient
func DrawGradientRect(renderer *sdl.Renderer, rect sdl.Rect, top, bottom [3]uint8) {
	if rect.H <= 0 {
		return
	}
	for i := int32(0); i < rect.H; i++ {
		t := 0.0
		if rect.H > 1 {
			t = float64(i) / float64(rect.H-1)
		}
		r := lerp(top[0], bottom[0], t)
		g := lerp(top[1], bottom[1], t)
		b := lerp(top[2], bottom[2], t)

		renderer.SetDrawColor(r, g, b, 255)
		renderer.DrawLine(rect.X, rect.Y+i, rect.X+rect.W-1, rect.Y+i)
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
