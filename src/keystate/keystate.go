package keystate

import (
	"runtime"
	"sync"
)

// Key identifies one of the semantic keys the gesture layer cares about.
// Left/right modifier variants collapse into a single semantic key.
type Key int

const (
	KeyAlt Key = iota
	KeyShift
	KeyQ
	KeyW
	KeySpace
)

func (k Key) String() string {
	switch k {
	case KeyAlt:
		return "alt"
	case KeyShift:
		return "shift"
	case KeyQ:
		return "q"
	case KeyW:
		return "w"
	case KeySpace:
		return "space"
	}
	return "unknown"
}

// Snapshot is a point-in-time copy of the tracked key state.
type Snapshot struct {
	Alt   bool
	Shift bool
	Q     bool
	W     bool
	Space bool
}

// Tracker maintains the down/up state of the semantic keys from raw
// key events. Physical keys are matched by platform virtual-key code,
// not by character, so non-QWERTY layouts and Option-modified output
// do not break recognition.
type Tracker struct {
	mu    sync.Mutex
	codes map[uint16]Key
	down  map[Key]bool
}

// New returns a Tracker using the rawcode table for the current platform.
func New() *Tracker {
	return NewForPlatform(runtime.GOOS)
}

// NewForPlatform returns a Tracker with the rawcode table for the given GOOS.
func NewForPlatform(goos string) *Tracker {
	return &Tracker{
		codes: rawcodeTable(goos),
		down:  make(map[Key]bool),
	}
}

// rawcodeTable maps gohook rawcodes to semantic keys. On darwin gohook
// reports Carbon virtual key codes; elsewhere Windows VK codes (the same
// table the previous hotkey listener used for its combos).
func rawcodeTable(goos string) map[uint16]Key {
	if goos == "darwin" {
		return map[uint16]Key{
			58: KeyAlt, 61: KeyAlt, // kVK_Option, kVK_RightOption
			56: KeyShift, 60: KeyShift, // kVK_Shift, kVK_RightShift
			12: KeyQ, // kVK_ANSI_Q
			13: KeyW, // kVK_ANSI_W
			49: KeySpace, // kVK_Space
		}
	}
	return map[uint16]Key{
		164: KeyAlt, 165: KeyAlt, // VK_LMENU, VK_RMENU
		160: KeyShift, 161: KeyShift, // VK_LSHIFT, VK_RSHIFT
		81: KeyQ, // VK 'Q'
		87: KeyW, // VK 'W'
		32: KeySpace, // VK_SPACE
	}
}

// OnPress records a key-down event. Unknown rawcodes are ignored.
func (t *Tracker) OnPress(rawcode uint16) {
	t.set(rawcode, true)
}

// OnRelease records a key-up event. Unknown rawcodes are ignored.
func (t *Tracker) OnRelease(rawcode uint16) {
	t.set(rawcode, false)
}

func (t *Tracker) set(rawcode uint16, pressed bool) {
	key, ok := t.codes[rawcode]
	if !ok {
		return
	}
	t.mu.Lock()
	if pressed {
		t.down[key] = true
	} else {
		delete(t.down, key)
	}
	t.mu.Unlock()
}

// Snapshot returns the current state of all semantic keys.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Alt:   t.down[KeyAlt],
		Shift: t.down[KeyShift],
		Q:     t.down[KeyQ],
		W:     t.down[KeyW],
		Space: t.down[KeySpace],
	}
}

// IsDown reports whether a single semantic key is currently held.
func (t *Tracker) IsDown(key Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.down[key]
}
