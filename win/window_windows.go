package win

import (
	"errors"
	"fmt"

	lxnwin "github.com/lxn/win"
)

// ErrInvalidWindow is returned for handles that do not name a live window.
var ErrInvalidWindow = errors.New("win: invalid window handle")

// ClientSize returns the client area size of hwnd.
func ClientSize(hwnd uintptr) (width, height int, err error) {
	if hwnd == 0 || !isWindow(hwnd) {
		return 0, 0, fmt.Errorf("%w: %#x", ErrInvalidWindow, hwnd)
	}
	var rc lxnwin.RECT
	if !lxnwin.GetClientRect(lxnwin.HWND(hwnd), &rc) {
		return 0, 0, fmt.Errorf("GetClientRect(%#x) failed", hwnd)
	}
	return int(rc.Right - rc.Left), int(rc.Bottom - rc.Top), nil
}

// Minimized reports whether hwnd is iconic. A minimized window has an
// empty client area and must not drive a resize.
func Minimized(hwnd uintptr) bool {
	return lxnwin.IsIconic(lxnwin.HWND(hwnd))
}
