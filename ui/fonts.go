package ui

import (
	"fmt"
	"log"

	"github.com/veandco/go-sdl2/ttf"
)

// Fonts holds the ticker typefaces
type Fonts struct {
	Main  *ttf.Font // marquee content and clock
	Small *ttf.Font // alert label and HUD
}

// fontPaths are tried in order when no font is configured. Content is
// mostly Japanese, so CJK-capable faces come first.
var fontPaths = []string{
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/google-noto-cjk/NotoSansCJK-Bold.ttc",
	"/usr/share/fonts/truetype/fonts-japanese-gothic.ttf",
	"/System/Library/Fonts/ヒラギノ角ゴシック W6.ttc",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
}

// LoadFonts initialises SDL_ttf and opens the configured font, or the first
// available system font, at size and at two thirds of size
func LoadFonts(path string, size int) (*Fonts, error) {
	if err := ttf.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize TTF: %w", err)
	}

	candidates := fontPaths
	if path != "" {
		candidates = append([]string{path}, fontPaths...)
	}

	small := size * 2 / 3
	if small < 8 {
		small = 8
	}

	for _, p := range candidates {
		big, err := ttf.OpenFont(p, size)
		if err != nil {
			continue
		}
		sm, err := ttf.OpenFont(p, small)
		if err != nil {
			big.Close()
			continue
		}
		log.Printf("LoadFonts: using %s at %dpx", p, size)
		return &Fonts{Main: big, Small: sm}, nil
	}

	return nil, fmt.Errorf("no usable font found (tried %d paths)", len(candidates))
}

// Close cleans up font resources
func (f *Fonts) Close() {
	if f.Main != nil {
		f.Main.Close()
	}
	if f.Small != nil {
		f.Small.Close()
	}
}
