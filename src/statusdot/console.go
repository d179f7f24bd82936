package statusdot

import (
	"fmt"
	"os"
)

var consoleStates = map[State]string{
	StateIdle: "IDLE",
	StateCrop: "CROP MODE",
	StateDone: "COMPLETED",
}

// runConsole is the text-stream fallback: the same three-state signal,
// printed on transitions only.
func (d *Dot) runConsole() {
	fmt.Fprintln(os.Stderr, "status indicator: console mode")
	last := ""
	d.pump(
		nil, // runs on the caller; no surface above it to die
		func(s State, label string) {
			line := consoleStates[s]
			if label != "" {
				line += " (" + label + ")"
			}
			if line != last {
				fmt.Fprintf(os.Stderr, "status: %s\n", line)
				last = line
			}
		},
		nil,
		func() { fmt.Fprintln(os.Stderr, "status indicator stopped") },
	)
}
