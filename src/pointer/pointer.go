// Package pointer reads the current mouse position.
package pointer

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

type rect struct {
	x, y, w, h int
}

// Position returns the pointer location in virtual-screen coordinates.
// The location is validated against the attached displays: coordinates
// may legitimately be negative (a monitor left of or above the primary),
// so "outside every display" is the failure signal, not the sign.
func Position() (int, int, error) {
	x, y := robotgo.Location()

	n := robotgo.DisplaysNum()
	if n == 0 {
		return 0, 0, fmt.Errorf("no displays attached")
	}
	displays := make([]rect, 0, n)
	for i := 0; i < n; i++ {
		dx, dy, w, h := robotgo.GetDisplayBounds(i)
		displays = append(displays, rect{dx, dy, w, h})
	}

	if !onAnyDisplay(x, y, displays) {
		return 0, 0, fmt.Errorf("pointer position (%d,%d) outside every display", x, y)
	}
	return x, y, nil
}

func onAnyDisplay(x, y int, displays []rect) bool {
	for _, d := range displays {
		if x >= d.x && x < d.x+d.w && y >= d.y && y < d.y+d.h {
			return true
		}
	}
	return false
}
