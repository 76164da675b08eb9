package input

import "github.com/veandco/go-sdl2/sdl"

// KeyPressTracker turns held keys into single presses
type KeyPressTracker struct {
	pressed map[sdl.Scancode]bool
}

// NewKeyPressTracker creates a new KeyPressTracker
func NewKeyPressTracker() KeyPressTracker {
	return KeyPressTracker{
		pressed: make(map[sdl.Scancode]bool),
	}
}

// IsPressed reports whether the key went down since the last call
func (kpt *KeyPressTracker) IsPressed(keyState []uint8, scancode sdl.Scancode) bool {
	if int(scancode) >= len(keyState) {
		return false
	}
	down := keyState[scancode] != 0
	was := kpt.pressed[scancode]
	kpt.pressed[scancode] = down

	return down && !was
}

// MousePressTracker does the same for mouse buttons, keyed by SDL button mask
type MousePressTracker struct {
	pressed map[uint32]bool
}

// NewMousePressTracker creates a new MousePressTracker
func NewMousePressTracker() MousePressTracker {
	return MousePressTracker{
		pressed: make(map[uint32]bool),
	}
}

// IsPressed reports whether the button went down since the last call
func (mpt *MousePressTracker) IsPressed(mouseState uint32, buttonMask uint32) bool {
	down := mouseState&buttonMask != 0
	was := mpt.pressed[buttonMask]
	mpt.pressed[buttonMask] = down

	return down && !was
}
