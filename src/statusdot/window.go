package statusdot

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
)

const windowTitle = "capture-status"

// runWindow renders the indicator as a small fixed-size window holding
// a colored circle and the label. ShowAndRun owns the calling goroutine
// until quit; the pump goroutine marshals updates through fyne.Do.
// Returns false when no display is available so the caller can degrade.
func (d *Dot) runWindow() (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			log.Printf("statusdot: windowed surface unavailable: %v", r)
			ok = false
		}
	}()

	// Stops the pump if the surface dies (ShowAndRun panicking on a
	// headless host), so the console fallback gets the queue to itself.
	cancel := make(chan struct{})
	defer close(cancel)

	a := app.New()
	w := a.NewWindow(windowTitle)

	dot := canvas.NewCircle(stateColors[StateIdle])
	text := canvas.NewText("", theme.Color(theme.ColorNameForeground))
	text.TextSize = 10
	text.Alignment = fyne.TextAlignCenter

	w.SetContent(container.NewBorder(nil, text, nil, nil, dot))
	w.Resize(fyne.NewSize(56, 56))
	w.SetFixedSize(true)
	w.SetCloseIntercept(func() {
		d.queue.push(command{kind: cmdQuit})
	})

	go d.pump(
		cancel,
		func(s State, label string) {
			fyne.Do(func() {
				dot.FillColor = stateColors[s]
				dot.Refresh()
				text.Text = label
				text.Refresh()
			})
		},
		func() { raiseAboveOthers(windowTitle) },
		func() { fyne.Do(a.Quit) },
	)

	w.ShowAndRun()
	return ok
}
