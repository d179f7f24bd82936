//go:build !windows

package statusdot

// raiseAboveOthers is a no-op outside Windows; the window manager
// honors the always-on-top hint without periodic re-assertion.
func raiseAboveOthers(title string) {}
