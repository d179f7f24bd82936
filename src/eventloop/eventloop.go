// Package eventloop drives the capture workflow: it owns the keyboard
// hook, feeds events through gesture recognition, and runs the
// capture/analysis pipeline behind the status indicator.
package eventloop

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	hook "github.com/robotn/gohook"

	"screen-capture-llm/src/config"
	"screen-capture-llm/src/gesture"
	"screen-capture-llm/src/keystate"
	"screen-capture-llm/src/region"
	"screen-capture-llm/src/screenshot"
	"screen-capture-llm/src/statusdot"
)

// Status is the indicator surface the loop reports through.
// *statusdot.Dot satisfies it.
type Status interface {
	SetState(statusdot.State)
	SetLabel(string)
	ClearLabel()
}

// Collaborators are the pipeline stages, injected as functions so the
// loop can be tested without a display, a model, or a clipboard. All
// fields except CopyText must be set.
type Collaborators struct {
	CaptureFull   func() (string, error)
	CaptureRegion func(screenshot.Region) (string, error)
	ExtractText   func(imagePath string) (string, error)
	AnalyzeText   func(textPath string) (string, error)
	AnalyzeImage  func(imagePath string) (string, error)
	Pointer       func() (x, y int, err error)
	CopyText      func(text string) error
}

// Config controls loop timing and the starting analysis mode.
type Config struct {
	Debounce       time.Duration
	PendingTimeout time.Duration
	// DoneRevert is how long the done state stays visible before the
	// indicator returns to idle.
	DoneRevert   time.Duration
	AnalysisMode string
	CopyResult   bool
}

// Loop is the orchestrator. Create it with New; Run blocks until the
// context is cancelled.
type Loop struct {
	keys       *keystate.Tracker
	recognizer *gesture.Recognizer
	status     Status
	collab     Collaborators

	regionMu sync.Mutex
	region   *region.Protocol

	modeMu sync.Mutex
	mode   string

	timerMu sync.Mutex
	revert  *time.Timer

	doneRevert time.Duration
	copyResult bool

	busy atomic.Bool
	// async is cleared in tests so pipelines run inline.
	async bool
}

func New(cfg Config, status Status, collab Collaborators) *Loop {
	if cfg.DoneRevert <= 0 {
		cfg.DoneRevert = 5 * time.Second
	}
	mode := cfg.AnalysisMode
	if mode != config.ModeVision {
		mode = config.ModeText
	}

	l := &Loop{
		keys:       keystate.New(),
		status:     status,
		collab:     collab,
		region:     region.New(cfg.PendingTimeout),
		mode:       mode,
		doneRevert: cfg.DoneRevert,
		copyResult: cfg.CopyResult,
		async:      true,
	}
	l.recognizer = gesture.New(l.keys, gesture.Callbacks{
		OnFullCapture:   l.onFullCapture,
		OnRegionCapture: l.onRegionCapture,
		OnToggle:        l.onToggle,
	}, cfg.Debounce)
	return l
}

// Run installs the global keyboard hook and processes events until the
// context is cancelled or the hook channel closes.
func (l *Loop) Run(ctx context.Context) error {
	events := hook.Start()
	if events == nil {
		return fmt.Errorf("keyboard hook failed to start")
	}
	defer hook.End()
	log.Printf("keyboard hook active")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("keyboard hook channel closed")
			}
			switch ev.Kind {
			case hook.KeyDown:
				l.keys.OnPress(ev.Rawcode)
				l.recognizer.Evaluate()
			case hook.KeyUp:
				l.keys.OnRelease(ev.Rawcode)
				l.recognizer.Evaluate()
			}
		}
	}
}

func (l *Loop) onFullCapture() {
	log.Printf("full-capture gesture")
	l.startPipeline(l.collab.CaptureFull)
}

func (l *Loop) onRegionCapture() {
	x, y, err := l.collab.Pointer()
	if err != nil {
		log.Printf("pointer position unavailable, falling back to full capture: %v", err)
		l.startPipeline(l.collab.CaptureFull)
		return
	}

	l.regionMu.Lock()
	outcome, rect := l.region.Step(region.Point{X: x, Y: y})
	l.regionMu.Unlock()

	if outcome == region.OutcomeFirstPoint {
		log.Printf("region corner pinned at (%d,%d)", x, y)
		l.cancelRevert()
		l.status.SetState(statusdot.StateCrop)
		l.status.SetLabel("select second corner")
		return
	}

	log.Printf("region closed: %dx%d at (%d,%d)", rect.Width, rect.Height, rect.X, rect.Y)
	l.startPipeline(func() (string, error) {
		return l.collab.CaptureRegion(rect)
	})
}

func (l *Loop) onToggle() {
	l.modeMu.Lock()
	if l.mode == config.ModeVision {
		l.mode = config.ModeText
	} else {
		l.mode = config.ModeVision
	}
	mode := l.mode
	l.modeMu.Unlock()

	log.Printf("analysis mode: %s", mode)
	l.status.SetLabel("mode: " + mode)
}

func (l *Loop) analysisMode() string {
	l.modeMu.Lock()
	defer l.modeMu.Unlock()
	return l.mode
}

// startPipeline runs capture+analysis once; overlapping triggers are
// dropped rather than queued.
func (l *Loop) startPipeline(capture func() (string, error)) {
	if !l.busy.CompareAndSwap(false, true) {
		log.Printf("capture already in progress, ignoring trigger")
		return
	}

	l.cancelRevert()
	l.status.SetState(statusdot.StateCrop)

	run := func() {
		defer l.busy.Store(false)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in capture pipeline: %v", r)
				l.fail(fmt.Errorf("pipeline panic: %v", r))
			}
		}()
		l.runPipeline(capture)
	}

	if l.async {
		go run()
	} else {
		run()
	}
}

func (l *Loop) runPipeline(capture func() (string, error)) {
	imagePath, err := capture()
	if err != nil {
		l.fail(fmt.Errorf("capture failed: %w", err))
		return
	}

	var responsePath string
	switch l.analysisMode() {
	case config.ModeVision:
		responsePath, err = l.collab.AnalyzeImage(imagePath)
	default:
		var textPath string
		textPath, err = l.collab.ExtractText(imagePath)
		if err == nil {
			responsePath, err = l.collab.AnalyzeText(textPath)
		}
	}
	if err != nil {
		l.fail(fmt.Errorf("analysis failed: %w", err))
		return
	}

	raw, err := os.ReadFile(responsePath)
	if err != nil {
		l.fail(fmt.Errorf("cannot read response %s: %w", responsePath, err))
		return
	}
	response := strings.TrimSpace(string(raw))

	if l.copyResult && l.collab.CopyText != nil {
		if cerr := l.collab.CopyText(response); cerr != nil {
			log.Printf("clipboard copy failed: %v", cerr)
		}
	}

	log.Printf("capture analyzed: %s", responsePath)
	l.status.SetLabel(doneLabel(response))
	l.status.SetState(statusdot.StateDone)
	l.scheduleRevert()
}

// fail returns the loop to a clean slate: no pending region corner, no
// stale label, idle indicator.
func (l *Loop) fail(err error) {
	log.Printf("capture pipeline failed: %v", err)
	l.regionMu.Lock()
	l.region.Clear()
	l.regionMu.Unlock()
	l.status.SetState(statusdot.StateIdle)
	l.status.ClearLabel()
}

func (l *Loop) cancelRevert() {
	l.timerMu.Lock()
	if l.revert != nil {
		l.revert.Stop()
		l.revert = nil
	}
	l.timerMu.Unlock()
}

func (l *Loop) scheduleRevert() {
	l.timerMu.Lock()
	defer l.timerMu.Unlock()
	if l.revert != nil {
		l.revert.Stop()
	}
	l.revert = time.AfterFunc(l.doneRevert, func() {
		l.status.SetState(statusdot.StateIdle)
		l.status.ClearLabel()
	})
}

// doneLabel extracts the model's tagged answer for the indicator; the
// full response stays in the artifact file.
func doneLabel(response string) string {
	if i := strings.Index(response, "<answer>"); i >= 0 {
		rest := response[i+len("<answer>"):]
		if j := strings.Index(rest, "</answer>"); j >= 0 {
			return "answer: " + strings.TrimSpace(rest[:j])
		}
	}
	return "done"
}
