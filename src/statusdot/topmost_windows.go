//go:build windows

package statusdot

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procFindWindowW  = user32.NewProc("FindWindowW")
	procSetWindowPos = user32.NewProc("SetWindowPos")
)

const (
	hwndTopmost      = ^uintptr(0) // HWND_TOPMOST (-1)
	swpNoSize        = 0x0001
	swpNoMove        = 0x0002
	swpNoActivate    = 0x0010
	swpTopmostNoMove = swpNoSize | swpNoMove | swpNoActivate
)

// raiseAboveOthers re-asserts the always-on-top flag on the indicator
// window. Other windows claiming topmost can push the dot down the
// z-order; the render loop calls this periodically to win it back.
func raiseAboveOthers(title string) {
	t, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return
	}
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(t)))
	if hwnd == 0 {
		return
	}
	procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpTopmostNoMove)
}
