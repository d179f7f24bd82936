// Package statusdot renders the three-state capture status indicator:
// a colored dot plus an optional short label, shown on a menu-bar/tray
// icon, a small always-on-top window, or a text stream when no display
// surface is available.
//
// Producers (any goroutine) enqueue commands; a single render loop
// drains them in order on the UI thread. On platforms where the UI
// toolkit must own the process's primary thread, run the loop with
// RunOnCurrentThread; elsewhere Start runs it in the background.
package statusdot

import (
	"image/color"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// State is the displayed indicator state.
type State int

const (
	StateIdle State = iota // waiting for a chord
	StateCrop              // first region corner pinned / capture in flight
	StateDone              // last capture analyzed successfully
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCrop:
		return "crop"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Indicator colors: blue (idle), yellow (crop), green (done).
var stateColors = map[State]color.RGBA{
	StateIdle: {R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff},
	StateCrop: {R: 0xd6, G: 0x9e, B: 0x2e, A: 0xff},
	StateDone: {R: 0x2f, G: 0x85, B: 0x5a, A: 0xff},
}

const (
	// DefaultTick is the render-loop poll interval.
	DefaultTick = 100 * time.Millisecond
	// DefaultMaxLabelLen bounds the displayed label text.
	DefaultMaxLabelLen = 80
	// maxCommandsPerTick bounds per-tick latency; the loop must stay
	// responsive even under a command flood.
	maxCommandsPerTick = 8
	// raiseInterval is the periodic stay-on-top refresh.
	raiseInterval = 1500 * time.Millisecond
	// stopTimeout bounds how long Stop waits for the render loop to
	// acknowledge the quit command.
	stopTimeout = 1500 * time.Millisecond
)

type cmdKind int

const (
	cmdState cmdKind = iota
	cmdLabel
	cmdQuit
)

type command struct {
	kind  cmdKind
	state State
	label string
}

// commandQueue is an unbounded FIFO with concurrent producers and a
// single consumer. Draining is non-blocking: pop returns immediately on
// an empty queue so the render loop can keep servicing its tick.
type commandQueue struct {
	mu    sync.Mutex
	items []command
}

func (q *commandQueue) push(c command) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

func (q *commandQueue) pop() (command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return command{}, false
	}
	c := q.items[0]
	q.items = q.items[1:]
	return c, true
}

// Config controls the indicator.
type Config struct {
	// Surface selects the render surface: "tray", "window", "console",
	// or "" for platform auto-selection (menu bar on darwin, windowed
	// dot elsewhere; console when the chosen surface is unavailable).
	Surface string
	// MaxLabelLen truncates labels before display; <=0 selects
	// DefaultMaxLabelLen.
	MaxLabelLen int
	// Tick overrides the render poll interval; <=0 selects DefaultTick.
	Tick time.Duration
}

// Dot is the status indicator. All exported mutators are non-blocking
// enqueues and are no-ops until the indicator has been started.
type Dot struct {
	cfg      Config
	queue    commandQueue
	alive    atomic.Bool
	done     chan struct{}
	doneOnce sync.Once
}

// New creates a Dot. The indicator shows nothing until Start or
// RunOnCurrentThread is called.
func New(cfg Config) *Dot {
	if cfg.MaxLabelLen <= 0 {
		cfg.MaxLabelLen = DefaultMaxLabelLen
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	return &Dot{cfg: cfg, done: make(chan struct{})}
}

// SetState enqueues a color change.
func (d *Dot) SetState(s State) {
	d.enqueue(command{kind: cmdState, state: s})
}

// SetLabel enqueues a label change, truncated to the configured maximum.
func (d *Dot) SetLabel(text string) {
	d.enqueue(command{kind: cmdLabel, label: truncateRunes(text, d.cfg.MaxLabelLen)})
}

// ClearLabel removes the label.
func (d *Dot) ClearLabel() {
	d.enqueue(command{kind: cmdLabel, label: ""})
}

func (d *Dot) enqueue(c command) {
	if !d.alive.Load() {
		return
	}
	d.queue.push(c)
}

// Start launches the indicator on a background goroutine.
func (d *Dot) Start() {
	if !d.alive.CompareAndSwap(false, true) {
		return
	}
	go d.runUI()
}

// RunOnCurrentThread runs the indicator on the calling goroutine and
// blocks until stopped. Required on darwin, where the UI toolkit must
// own the process's primary thread.
func (d *Dot) RunOnCurrentThread() {
	if !d.alive.CompareAndSwap(false, true) {
		return
	}
	d.runUI()
}

// Stop enqueues the terminal command and waits briefly for the render
// loop to acknowledge. If the surface is wedged, shutdown proceeds
// after the bound anyway.
func (d *Dot) Stop() {
	if !d.alive.CompareAndSwap(true, false) {
		return
	}
	// Pushed directly: enqueue() refuses commands once alive is cleared.
	d.queue.push(command{kind: cmdQuit})
	select {
	case <-d.done:
	case <-time.After(stopTimeout):
		log.Printf("statusdot: render loop did not acknowledge quit within %v", stopTimeout)
	}
}

func (d *Dot) runUI() {
	defer d.alive.Store(false)

	switch d.cfg.Surface {
	case "console":
		d.runConsole()
		return
	case "tray":
		if !d.runTray() {
			d.runConsole()
		}
		return
	case "window":
		if !d.runWindow() {
			d.runConsole()
		}
		return
	}

	if runtime.GOOS == "darwin" {
		if !d.runTray() {
			d.runConsole()
		}
		return
	}
	if !d.runWindow() {
		d.runConsole()
	}
}

// pump is the render loop shared by all surfaces. It drains a bounded
// batch of commands per tick, applies them in enqueue order, and
// services the periodic raise. On quit it tears the surface down,
// acknowledges, and returns.
//
// cancel exists for the degrade path: a surface that dies after starting
// its pump closes cancel on the way out, so the pump stops reading the
// queue before the fallback surface's pump takes over. A cancelled pump
// does not acknowledge shutdown; only a processed quit command does.
func (d *Dot) pump(cancel <-chan struct{}, apply func(State, string), raise func(), quit func()) {
	state := StateIdle
	label := ""
	apply(state, label)

	tick := time.NewTicker(d.cfg.Tick)
	defer tick.Stop()
	raiseTick := time.NewTicker(raiseInterval)
	defer raiseTick.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-tick.C:
			for i := 0; i < maxCommandsPerTick; i++ {
				cmd, ok := d.queue.pop()
				if !ok {
					break
				}
				switch cmd.kind {
				case cmdState:
					state = cmd.state
				case cmdLabel:
					label = cmd.label
				case cmdQuit:
					if quit != nil {
						quit()
					}
					d.finish()
					return
				}
				apply(state, label)
			}
		case <-raiseTick.C:
			if raise != nil {
				raise()
			}
		}
	}
}

// finish acknowledges shutdown. Idempotent: duplicate quit commands
// (Stop racing the close intercept or the tray Quit item) must not
// panic a second close.
func (d *Dot) finish() {
	d.doneOnce.Do(func() { close(d.done) })
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
