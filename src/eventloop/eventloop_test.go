package eventloop

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"screen-capture-llm/src/config"
	"screen-capture-llm/src/screenshot"
	"screen-capture-llm/src/statusdot"
)

type statusRecorder struct {
	mu     sync.Mutex
	states []statusdot.State
	labels []string
}

func (r *statusRecorder) SetState(s statusdot.State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *statusRecorder) SetLabel(text string) {
	r.mu.Lock()
	r.labels = append(r.labels, text)
	r.mu.Unlock()
}

func (r *statusRecorder) ClearLabel() { r.SetLabel("") }

func (r *statusRecorder) lastState(t *testing.T) statusdot.State {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		t.Fatal("no state changes recorded")
	}
	return r.states[len(r.states)-1]
}

func (r *statusRecorder) lastLabel(t *testing.T) string {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.labels) == 0 {
		t.Fatal("no label changes recorded")
	}
	return r.labels[len(r.labels)-1]
}

func (r *statusRecorder) snapshotStates() []statusdot.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]statusdot.State(nil), r.states...)
}

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// happyCollaborators wires every stage to succeed, recording calls.
type callLog struct {
	mu          sync.Mutex
	fullCalls   int
	regionCalls int
	regions     []screenshot.Region
}

func newTestLoop(t *testing.T, cfg Config, collab Collaborators) (*Loop, *statusRecorder) {
	t.Helper()
	status := &statusRecorder{}
	l := New(cfg, status, collab)
	l.async = false
	return l, status
}

func TestFullCaptureSuccess(t *testing.T) {
	respPath := writeArtifact(t, "shot.response.txt", "reasoning\n<type>MCQ</type>\n<answer>B</answer>")
	var copied string

	l, status := newTestLoop(t, Config{DoneRevert: time.Hour, CopyResult: true}, Collaborators{
		CaptureFull: func() (string, error) { return "shot.png", nil },
		ExtractText: func(imagePath string) (string, error) {
			if imagePath != "shot.png" {
				t.Errorf("ExtractText got %q", imagePath)
			}
			return "shot.txt", nil
		},
		AnalyzeText: func(textPath string) (string, error) {
			if textPath != "shot.txt" {
				t.Errorf("AnalyzeText got %q", textPath)
			}
			return respPath, nil
		},
		CopyText: func(text string) error { copied = text; return nil },
	})

	l.onFullCapture()

	states := status.snapshotStates()
	if len(states) != 2 || states[0] != statusdot.StateCrop || states[1] != statusdot.StateDone {
		t.Errorf("states = %v, expected [crop done]", states)
	}
	if got := status.lastLabel(t); got != "answer: B" {
		t.Errorf("label = %q", got)
	}
	if copied == "" || copied[:9] != "reasoning" {
		t.Errorf("clipboard got %q", copied)
	}
}

func TestPointerFailureFallsBackToFullCapture(t *testing.T) {
	respPath := writeArtifact(t, "shot.response.txt", "<answer>42</answer>")
	log := &callLog{}

	l, status := newTestLoop(t, Config{DoneRevert: time.Hour}, Collaborators{
		Pointer: func() (int, int, error) { return 0, 0, errors.New("no pointer") },
		CaptureFull: func() (string, error) {
			log.mu.Lock()
			log.fullCalls++
			log.mu.Unlock()
			return "full.png", nil
		},
		CaptureRegion: func(r screenshot.Region) (string, error) {
			log.mu.Lock()
			log.regionCalls++
			log.mu.Unlock()
			return "", errors.New("should not be called")
		},
		ExtractText: func(string) (string, error) { return "full.txt", nil },
		AnalyzeText: func(string) (string, error) { return respPath, nil },
	})

	l.onRegionCapture()

	if log.fullCalls != 1 || log.regionCalls != 0 {
		t.Errorf("fullCalls=%d regionCalls=%d, expected full-capture fallback", log.fullCalls, log.regionCalls)
	}
	if status.lastState(t) != statusdot.StateDone {
		t.Errorf("state = %v, expected done after fallback", status.lastState(t))
	}
}

func TestTwoStepRegionCapture(t *testing.T) {
	respPath := writeArtifact(t, "rect.response.txt", "<answer>A</answer>")
	log := &callLog{}
	points := [][2]int{{50, 40}, {10, 10}}

	l, status := newTestLoop(t, Config{DoneRevert: time.Hour}, Collaborators{
		Pointer: func() (int, int, error) {
			p := points[0]
			points = points[1:]
			return p[0], p[1], nil
		},
		CaptureRegion: func(r screenshot.Region) (string, error) {
			log.mu.Lock()
			log.regions = append(log.regions, r)
			log.mu.Unlock()
			return "rect.png", nil
		},
		ExtractText: func(string) (string, error) { return "rect.txt", nil },
		AnalyzeText: func(string) (string, error) { return respPath, nil },
	})

	l.onRegionCapture()
	if status.lastState(t) != statusdot.StateCrop {
		t.Fatalf("state after first corner = %v", status.lastState(t))
	}
	if status.lastLabel(t) != "select second corner" {
		t.Errorf("label = %q", status.lastLabel(t))
	}
	if len(log.regions) != 0 {
		t.Fatal("capture ran before second corner")
	}

	l.onRegionCapture()
	if len(log.regions) != 1 {
		t.Fatalf("regionCalls = %d", len(log.regions))
	}
	want := screenshot.Region{X: 10, Y: 10, Width: 40, Height: 30}
	if log.regions[0] != want {
		t.Errorf("region = %+v, expected %+v", log.regions[0], want)
	}
	if status.lastState(t) != statusdot.StateDone {
		t.Errorf("state = %v, expected done", status.lastState(t))
	}
}

func TestPipelineErrorClearsPendingRegion(t *testing.T) {
	pointerCalls := 0
	regionCalls := 0

	l, status := newTestLoop(t, Config{DoneRevert: time.Hour}, Collaborators{
		Pointer: func() (int, int, error) {
			pointerCalls++
			return pointerCalls * 10, pointerCalls * 10, nil
		},
		CaptureRegion: func(r screenshot.Region) (string, error) {
			regionCalls++
			return "", errors.New("capture device gone")
		},
	})

	l.onRegionCapture() // first corner
	l.onRegionCapture() // second corner, capture fails

	if regionCalls != 1 {
		t.Fatalf("regionCalls = %d", regionCalls)
	}
	if status.lastState(t) != statusdot.StateIdle {
		t.Errorf("state = %v, expected idle after failure", status.lastState(t))
	}
	if status.lastLabel(t) != "" {
		t.Errorf("label = %q, expected cleared", status.lastLabel(t))
	}

	// The failed selection must not leave a stale corner: the next
	// trigger is a fresh first point, not a capture.
	l.onRegionCapture()
	if regionCalls != 1 {
		t.Errorf("regionCalls = %d, stale corner survived the failure", regionCalls)
	}
	if status.lastLabel(t) != "select second corner" {
		t.Errorf("label = %q, expected fresh first-corner prompt", status.lastLabel(t))
	}
}

func TestToggleSwitchesAnalysisMode(t *testing.T) {
	respPath := writeArtifact(t, "x.response.txt", "<answer>1</answer>")
	var textRuns, visionRuns int

	l, status := newTestLoop(t, Config{DoneRevert: time.Hour, AnalysisMode: config.ModeText}, Collaborators{
		CaptureFull: func() (string, error) { return "x.png", nil },
		ExtractText: func(string) (string, error) { return "x.txt", nil },
		AnalyzeText: func(string) (string, error) { textRuns++; return respPath, nil },
		AnalyzeImage: func(imagePath string) (string, error) {
			visionRuns++
			return respPath, nil
		},
	})

	l.onFullCapture()
	if textRuns != 1 || visionRuns != 0 {
		t.Fatalf("text mode: textRuns=%d visionRuns=%d", textRuns, visionRuns)
	}

	l.onToggle()
	if status.lastLabel(t) != "mode: vision" {
		t.Errorf("label = %q", status.lastLabel(t))
	}
	l.onFullCapture()
	if textRuns != 1 || visionRuns != 1 {
		t.Fatalf("vision mode: textRuns=%d visionRuns=%d", textRuns, visionRuns)
	}

	l.onToggle()
	if status.lastLabel(t) != "mode: text" {
		t.Errorf("label = %q", status.lastLabel(t))
	}
	l.onFullCapture()
	if textRuns != 2 || visionRuns != 1 {
		t.Errorf("back to text: textRuns=%d visionRuns=%d", textRuns, visionRuns)
	}
}

func TestDoneRevertsToIdle(t *testing.T) {
	respPath := writeArtifact(t, "r.response.txt", "<answer>7</answer>")

	l, status := newTestLoop(t, Config{DoneRevert: 20 * time.Millisecond}, Collaborators{
		CaptureFull: func() (string, error) { return "r.png", nil },
		ExtractText: func(string) (string, error) { return "r.txt", nil },
		AnalyzeText: func(string) (string, error) { return respPath, nil },
	})

	l.onFullCapture()
	if status.lastState(t) != statusdot.StateDone {
		t.Fatalf("state = %v", status.lastState(t))
	}

	deadline := time.After(time.Second)
	for status.lastState(t) != statusdot.StateIdle {
		select {
		case <-deadline:
			t.Fatal("indicator never reverted to idle")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if status.lastLabel(t) != "" {
		t.Errorf("label = %q, expected cleared on revert", status.lastLabel(t))
	}
}

func TestCancelRevertStopsScheduledTimer(t *testing.T) {
	l, status := newTestLoop(t, Config{}, Collaborators{})
	l.doneRevert = 30 * time.Millisecond

	l.scheduleRevert()
	l.cancelRevert()
	time.Sleep(80 * time.Millisecond)

	status.mu.Lock()
	defer status.mu.Unlock()
	if len(status.states) != 0 {
		t.Errorf("states = %v, cancelled revert still fired", status.states)
	}
}

func TestCopyResultDisabled(t *testing.T) {
	respPath := writeArtifact(t, "c.response.txt", "<answer>9</answer>")
	copied := false

	l, _ := newTestLoop(t, Config{DoneRevert: time.Hour, CopyResult: false}, Collaborators{
		CaptureFull: func() (string, error) { return "c.png", nil },
		ExtractText: func(string) (string, error) { return "c.txt", nil },
		AnalyzeText: func(string) (string, error) { return respPath, nil },
		CopyText:    func(string) error { copied = true; return nil },
	})

	l.onFullCapture()
	if copied {
		t.Error("clipboard written with CopyResult disabled")
	}
}

func TestDoneLabel(t *testing.T) {
	tests := []struct {
		response string
		expected string
	}{
		{"steps\n<answer>B</answer>", "answer: B"},
		{"<answer> 12.5 </answer>", "answer: 12.5"},
		{"no tags here", "done"},
		{"<answer>unclosed", "done"},
	}
	for _, tt := range tests {
		if got := doneLabel(tt.response); got != tt.expected {
			t.Errorf("doneLabel(%q) = %q, expected %q", tt.response, got, tt.expected)
		}
	}
}
