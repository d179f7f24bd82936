package statusdot

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log"

	"github.com/getlantern/systray"
)

const trayTooltip = "Screen Capture LLM"

// runTray renders the indicator as a menu-bar/tray icon: a filled
// circle recolored per state, with the label shown as the icon title.
// systray.Run owns the calling goroutine until quit. Returns false if
// the tray backend is unavailable so the caller can degrade.
func (d *Dot) runTray() (ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			log.Printf("statusdot: tray surface unavailable: %v", r)
			ok = false
		}
	}()

	icons := map[State][]byte{
		StateIdle: circleIcon(stateColors[StateIdle]),
		StateCrop: circleIcon(stateColors[StateCrop]),
		StateDone: circleIcon(stateColors[StateDone]),
	}

	// Stops the pump if the tray backend dies after onReady, so the
	// console fallback gets the queue to itself.
	cancel := make(chan struct{})
	defer close(cancel)

	systray.Run(func() {
		systray.SetIcon(icons[StateIdle])
		systray.SetTooltip(trayTooltip)

		systray.AddMenuItem("Alt+Shift+Q: full screenshot", "").Disable()
		systray.AddMenuItem("Alt+Shift+W: region (two-step)", "").Disable()
		systray.AddMenuItem("Alt+Space: toggle analysis mode", "").Disable()
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Quit the indicator")
		go func() {
			<-mQuit.ClickedCh
			d.queue.push(command{kind: cmdQuit})
		}()

		go d.pump(
			cancel,
			func(s State, label string) {
				systray.SetIcon(icons[s])
				systray.SetTitle(label)
				if label != "" {
					systray.SetTooltip(trayTooltip + " — " + label)
				} else {
					systray.SetTooltip(trayTooltip)
				}
			},
			nil, // the OS keeps tray icons visible; no raise needed
			systray.Quit,
		)
	}, nil)

	return ok
}

// circleIcon renders a filled antialias-free circle as PNG bytes, the
// same glyph the windowed dot draws on its canvas.
func circleIcon(c color.RGBA) []byte {
	const size = 22
	const margin = 3
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	center := float64(size) / 2
	radius := center - margin
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
