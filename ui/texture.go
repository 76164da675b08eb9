package ui

import (
	"fmt"
	"image"

	"github.com/veandco/go-sdl2/sdl"
)

// TextureFromImage uploads a decoded image as an RGBA texture
func TextureFromImage(renderer *sdl.Renderer, img image.Image) (*sdl.Texture, int32, int32, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("empty image")
	}

	surface, err := sdl.CreateRGBSurface(0, int32(width), int32(height), 32,
		0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create SDL surface: %w", err)
	}
	defer surface.Free()

	surface.Lock()
	pixels := surface.Pixels()
	pitch := int(surface.Pitch)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			offset := y*pitch + x*4
			pixels[offset] = byte(r >> 8)
			pixels[offset+1] = byte(g >> 8)
			pixels[offset+2] = byte(b >> 8)
			pixels[offset+3] = byte(a >> 8)
		}
	}
	surface.Unlock()

	texture, err := renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create texture from surface: %w", err)
	}
	texture.SetBlendMode(sdl.BLENDMODE_BLEND)

	return texture, int32(width), int32(height), nil
}
