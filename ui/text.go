package ui

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"
)

// RenderText draws text at x, y with the given font and color
func RenderText(renderer *sdl.Renderer, text string, x, y int32, color sdl.Color, font *ttf.Font) error {
	tex, w, h, err := TextTexture(renderer, text, color, font)
	if err != nil {
		return err
	}
	defer tex.Destroy()

	return renderer.Copy(tex, nil, &sdl.Rect{X: x, Y: y, W: w, H: h})
}

// TextTexture renders text into a texture owned by the caller
func TextTexture(renderer *sdl.Renderer, text string, color sdl.Color, font *ttf.Font) (*sdl.Texture, int32, int32, error) {
	if font == nil {
		return nil, 0, 0, fmt.Errorf("font not available")
	}
	if text == "" {
		return nil, 0, 0, fmt.Errorf("empty text")
	}

	surface, err := font.RenderUTF8Blended(text, color)
	if err != nil {
		return nil, 0, 0, err
	}
	defer surface.Free()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, 0, 0, err
	}
	texture.SetBlendMode(sdl.BLENDMODE_BLEND)

	return texture, surface.W, surface.H, nil
}
