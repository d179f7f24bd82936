package region

import (
	"time"

	"screen-capture-llm/src/screenshot"
)

// DefaultPendingTimeout is how long the first corner point stays valid.
// After it expires the next trigger starts a fresh selection instead of
// closing a stale one.
const DefaultPendingTimeout = 12 * time.Second

// Point is a pointer position in virtual-screen coordinates.
type Point struct {
	X int
	Y int
}

// Outcome reports what a protocol step did.
type Outcome int

const (
	// OutcomeFirstPoint: the point was stored as the first corner; no
	// capture should happen yet.
	OutcomeFirstPoint Outcome = iota
	// OutcomeRegionReady: the step completed a selection; the returned
	// rectangle is ready for capture.
	OutcomeRegionReady
)

// Protocol is the two-step pending-region state machine. The first
// trigger records the pointer position; a second trigger inside the
// timeout closes the rectangle between the two points. State lives in
// explicit fields owned by the orchestrator, not package globals.
//
// Not safe for concurrent use; the input-event goroutine is the only
// caller.
type Protocol struct {
	timeout time.Duration

	pending   bool
	origin    Point
	pinnedAt  time.Time
	now       func() time.Time
}

// New creates a Protocol. timeout <= 0 selects DefaultPendingTimeout.
func New(timeout time.Duration) *Protocol {
	if timeout <= 0 {
		timeout = DefaultPendingTimeout
	}
	return &Protocol{timeout: timeout, now: time.Now}
}

// Step advances the protocol with the pointer position sampled at
// trigger time. An expired pending point is discarded and the call is
// treated as a fresh first point.
//
// Closed rectangles are normalized (left/top = min of the corners) and
// may be degenerate; zero-area capture is the capture collaborator's
// concern, not this protocol's.
func (p *Protocol) Step(pt Point) (Outcome, screenshot.Region) {
	now := p.now()

	if !p.pending || now.Sub(p.pinnedAt) > p.timeout {
		p.pending = true
		p.origin = pt
		p.pinnedAt = now
		return OutcomeFirstPoint, screenshot.Region{}
	}

	left := min(p.origin.X, pt.X)
	top := min(p.origin.Y, pt.Y)
	right := max(p.origin.X, pt.X)
	bottom := max(p.origin.Y, pt.Y)

	p.pending = false
	return OutcomeRegionReady, screenshot.Region{
		X:      left,
		Y:      top,
		Width:  right - left,
		Height: bottom - top,
	}
}

// Pending reports whether a first corner is currently stored, expiry
// included.
func (p *Protocol) Pending() bool {
	return p.pending && p.now().Sub(p.pinnedAt) <= p.timeout
}

// Clear discards any stored first point. The orchestrator calls this on
// terminal pipeline errors so a failed second step cannot leave a stale
// corner behind.
func (p *Protocol) Clear() {
	p.pending = false
}
