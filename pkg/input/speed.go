package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"ticker-frame/pkg/content"
)

// Speed slider limits in pixels per second
const (
	SpeedStep = 10.0
	MinSpeed  = 20.0
	MaxSpeed  = 600.0
)

// SpeedBinding maps a key to a speed change for one content kind
type SpeedBinding struct {
	Key   sdl.Scancode
	Kind  content.Kind
	Delta float64
}

// DefaultSpeedBindings: Up/Down for weather, Right/Left for news bodies,
// PageUp/PageDown for quake details
var DefaultSpeedBindings = []SpeedBinding{
	{Key: sdl.SCANCODE_UP, Kind: content.Weather, Delta: SpeedStep},
	{Key: sdl.SCANCODE_DOWN, Kind: content.Weather, Delta: -SpeedStep},
	{Key: sdl.SCANCODE_RIGHT, Kind: content.NewsBody, Delta: SpeedStep},
	{Key: sdl.SCANCODE_LEFT, Kind: content.NewsBody, Delta: -SpeedStep},
	{Key: sdl.SCANCODE_PAGEUP, Kind: content.QuakeBody, Delta: SpeedStep},
	{Key: sdl.SCANCODE_PAGEDOWN, Kind: content.QuakeBody, Delta: -SpeedStep},
}

// PressedSpeedBindings returns the bindings whose key went down this frame
func (kpt *KeyPressTracker) PressedSpeedBindings(keyState []uint8, bindings []SpeedBinding) []SpeedBinding {
	var out []SpeedBinding
	for _, b := range bindings {
		if kpt.IsPressed(keyState, b.Key) {
			out = append(out, b)
		}
	}
	return out
}
