package win

import (
	"golang.org/x/sys/windows"
)

// Procs lxn/win does not export.
var (
	moduser32 = windows.NewLazySystemDLL("user32.dll")

	procIsWindow                     = moduser32.NewProc("IsWindow")
	procSetThreadDpiAwarenessContext = moduser32.NewProc("SetThreadDpiAwarenessContext")
	procIsValidDpiAwarenessContext   = moduser32.NewProc("IsValidDpiAwarenessContext")
)

func isWindow(hwnd uintptr) bool {
	r, _, _ := procIsWindow.Call(hwnd)
	return r != 0
}

const (
	DpiAwarenessContextUndefined         = 0
	DpiAwarenessContextUnaware           = -1
	DpiAwarenessContextSystemAware       = -2
	DpiAwarenessContextPerMonitorAware   = -3
	DpiAwarenessContextPerMonitorAwareV2 = -4
	DpiAwarenessContextUnawareGdiScaled  = -5
)

// IsValidDpiAwarenessContext reports whether the running OS knows value.
// It is false on systems older than Windows 10 1607.
func IsValidDpiAwarenessContext(value int32) bool {
	if procIsValidDpiAwarenessContext.Find() != nil {
		return false
	}
	r, _, _ := procIsValidDpiAwarenessContext.Call(uintptr(value))
	return r != 0
}

// SetThreadDpiAwarenessContext returns the previous context.
func SetThreadDpiAwarenessContext(value int32) (int, error) {
	if err := procSetThreadDpiAwarenessContext.Find(); err != nil {
		return 0, err
	}
	r, _, err := procSetThreadDpiAwarenessContext.Call(uintptr(value))
	if r == 0 {
		return 0, err
	}
	return int(r), nil
}
