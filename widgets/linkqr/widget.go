package linkqr

import (
	"fmt"

	"github.com/skip2/go-qrcode"
	"github.com/veandco/go-sdl2/sdl"

	"ticker-frame/ui"
)

// Widget shows a QR code of the article behind the current news item so a
// viewer can open it on a phone
type Widget struct {
	texture *sdl.Texture
	link    string
	size    int32
}

// NewWidget creates an empty widget drawing codes of size pixels square
func NewWidget(size int32) *Widget {
	return &Widget{size: size}
}

// SetLink regenerates the code when link changes; an empty link hides it
func (w *Widget) SetLink(renderer *sdl.Renderer, link string) error {
	if link == w.link {
		return nil
	}
	w.Destroy()
	w.link = link
	if link == "" || w.size <= 0 {
		return nil
	}

	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}
	code.DisableBorder = true

	texture, _, _, err := ui.TextureFromImage(renderer, code.Image(int(w.size)))
	if err != nil {
		return err
	}
	w.texture = texture
	return nil
}

// SetSize changes the edge length, regenerating a loaded code at the new size
func (w *Widget) SetSize(renderer *sdl.Renderer, size int32) error {
	if size == w.size {
		return nil
	}
	link := w.link
	w.Destroy()
	w.size = size
	return w.SetLink(renderer, link)
}

// Visible reports whether a code is loaded
func (w *Widget) Visible() bool {
	return w.texture != nil
}

// Size is the edge length of the code in pixels
func (w *Widget) Size() int32 {
	return w.size
}

// Render draws the code with its top-left corner at x, y on a white quiet zone
func (w *Widget) Render(renderer *sdl.Renderer, x, y int32, alpha uint8) error {
	if w.texture == nil {
		return nil
	}

	const pad = 3
	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	renderer.SetDrawColor(255, 255, 255, alpha)
	renderer.FillRect(&sdl.Rect{X: x - pad, Y: y - pad, W: w.size + 2*pad, H: w.size + 2*pad})

	w.texture.SetAlphaMod(alpha)
	if err := renderer.Copy(w.texture, nil, &sdl.Rect{X: x, Y: y, W: w.size, H: w.size}); err != nil {
		return fmt.Errorf("failed to render QR code: %w", err)
	}
	return nil
}

// Destroy cleans up widget resources
func (w *Widget) Destroy() {
	if w.texture != nil {
		w.texture.Destroy()
		w.texture = nil
	}
	w.link = ""
}
