package win

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	lxnwin "github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/kirides/swapchain/swizzle"
)

// CaptureWindow copies the client area of hwnd into img with GDI. The
// capture starts at the client origin and covers img.Bounds().Size().
func CaptureWindow(hwnd uintptr, img *image.RGBA) error {
	if !isWindow(hwnd) {
		return fmt.Errorf("%w: %#x", ErrInvalidWindow, hwnd)
	}
	width, height := img.Rect.Dx(), img.Rect.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	hdc := lxnwin.GetDC(lxnwin.HWND(hwnd))
	if hdc == 0 {
		return errors.New("GetDC failed")
	}
	defer lxnwin.ReleaseDC(lxnwin.HWND(hwnd), hdc)

	memoryDevice := lxnwin.CreateCompatibleDC(hdc)
	if memoryDevice == 0 {
		return errors.New("CreateCompatibleDC failed")
	}
	defer lxnwin.DeleteDC(memoryDevice)

	bitmap := lxnwin.CreateCompatibleBitmap(hdc, int32(width), int32(height))
	if bitmap == 0 {
		return errors.New("CreateCompatibleBitmap failed")
	}
	defer lxnwin.DeleteObject(lxnwin.HGDIOBJ(bitmap))

	old := lxnwin.SelectObject(memoryDevice, lxnwin.HGDIOBJ(bitmap))
	if old == 0 {
		return errors.New("SelectObject failed")
	}
	defer lxnwin.SelectObject(memoryDevice, old)

	if !lxnwin.BitBlt(memoryDevice, 0, 0, int32(width), int32(height), hdc, 0, 0, lxnwin.SRCCOPY) {
		return errors.New("BitBlt failed")
	}

	var header lxnwin.BITMAPINFOHEADER
	header.BiSize = uint32(unsafe.Sizeof(header))
	header.BiPlanes = 1
	header.BiBitCount = 32
	header.BiWidth = int32(width)
	header.BiHeight = -int32(height) // top-down
	header.BiCompression = lxnwin.BI_RGB

	// GetDIBits balks at using Go memory on some systems.
	size := width * 4 * height
	mem, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return fmt.Errorf("VirtualAlloc(%d): %w", size, err)
	}
	defer windows.VirtualFree(mem, 0, windows.MEM_RELEASE)

	if v := lxnwin.GetDIBits(hdc, bitmap, 0, uint32(height), (*byte)(unsafe.Pointer(mem)), (*lxnwin.BITMAPINFO)(unsafe.Pointer(&header)), lxnwin.DIB_RGB_COLORS); v == 0 {
		return errors.New("GetDIBits failed")
	}

	bgra := unsafe.Slice((*byte)(unsafe.Pointer(mem)), size)
	swizzle.BGRAOpaque(bgra)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		copy(row, bgra[y*width*4:])
	}
	return nil
}
