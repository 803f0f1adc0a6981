package d3d

import (
	"image"

	"github.com/kirides/swapchain/swizzle"
)

// readableFormat reports whether buffers of format can be read back as
// 8-bit RGBA, and whether the channels arrive in BGRA order.
func readableFormat(format uint32) (bgra, ok bool) {
	switch format {
	case DXGI_FORMAT_R8G8B8A8_UNORM, DXGI_FORMAT_R8G8B8A8_UNORM_SRGB:
		return false, true
	case DXGI_FORMAT_B8G8R8A8_UNORM, DXGI_FORMAT_B8G8R8A8_UNORM_SRGB:
		return true, true
	}
	return false, false
}

// copyRows copies mapped rows of pitch bytes into dst. Rows beyond dst or
// src are dropped.
func copyRows(dst *image.RGBA, src []byte, pitch int, bgra bool) {
	width := dst.Rect.Dx() * 4
	if width > pitch {
		width = pitch
	}
	for y := 0; y < dst.Rect.Dy(); y++ {
		off := y * pitch
		if off+width > len(src) {
			return
		}
		row := dst.Pix[y*dst.Stride : y*dst.Stride+width]
		copy(row, src[off:off+width])
		if bgra {
			swizzle.BGRA(row)
		}
	}
}
