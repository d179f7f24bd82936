package gesture

import (
	"log"
	"time"

	"screen-capture-llm/src/keystate"
)

// DefaultDebounce is the minimum interval between accepted triggers.
// A single human chord press produces several key-down events (key
// repeat, modifier re-reports); anything inside this window is one gesture.
const DefaultDebounce = 800 * time.Millisecond

// Callbacks are the actions a recognized gesture can invoke. Any field
// may be nil; a nil callback means the gesture is a no-op and does not
// consume the debounce window.
type Callbacks struct {
	OnFullCapture   func() // Alt+Shift+Q
	OnRegionCapture func() // Alt+Shift+W
	OnToggle        func() // Alt+Space
}

// Recognizer turns key-state snapshots into debounced gesture triggers.
// It is driven synchronously from the input-event goroutine and keeps
// its trigger bookkeeping as explicit fields, not package globals.
type Recognizer struct {
	keys     *keystate.Tracker
	cb       Callbacks
	debounce time.Duration

	lastTrigger time.Time
	now         func() time.Time
}

// New creates a Recognizer over the given tracker. debounce <= 0 selects
// DefaultDebounce.
func New(keys *keystate.Tracker, cb Callbacks, debounce time.Duration) *Recognizer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Recognizer{
		keys:     keys,
		cb:       cb,
		debounce: debounce,
		now:      time.Now,
	}
}

// Evaluate checks the current key state and fires at most one callback.
// Call it after every press/release has been applied to the tracker.
//
// Because releases are evaluated too, a chord can complete on a release:
// holding Alt+Shift+Space and letting go of Shift leaves Alt+Space held,
// which fires the toggle. That is the over-held chord resolving to the
// gesture still asserted, not a re-trigger of a finished one.
//
// The toggle chord (Alt+Space, Shift not held) is checked before the
// capture chords (Alt+Shift+Q / Alt+Shift+W). If Q and W are somehow
// down together, Q wins; the tie-break is arbitrary but deterministic.
func (r *Recognizer) Evaluate() {
	snap := r.keys.Snapshot()

	toggleActive := snap.Alt && !snap.Shift && snap.Space
	captureActive := snap.Alt && snap.Shift && (snap.Q || snap.W)
	if !toggleActive && !captureActive {
		return
	}

	now := r.now()
	if now.Sub(r.lastTrigger) < r.debounce {
		return
	}

	var fn func()
	var name string
	switch {
	case toggleActive:
		fn, name = r.cb.OnToggle, "toggle"
	case snap.Q:
		fn, name = r.cb.OnFullCapture, "full-capture"
	default:
		fn, name = r.cb.OnRegionCapture, "region-capture"
	}
	if fn == nil {
		return
	}

	// The timestamp advances even if the callback panics, so a broken
	// callback cannot cause a hot trigger loop.
	r.lastTrigger = now
	invoke(name, fn)
}

func invoke(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("PANIC in %s callback: %v", name, rec)
		}
	}()
	fn()
}
