// Package swizzle reorders the channels of 32-bit pixel rows in place.
package swizzle

// BGRA swaps the first and third byte of every 4-byte pixel in p, turning
// BGRA into RGBA and back. A trailing partial pixel is left untouched.
func BGRA(p []byte) {
	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		p[i], p[i+2] = p[i+2], p[i]
	}
}

// BGRAOpaque is BGRA that also forces alpha to 0xff, for sources such as
// GDI bitmaps that leave the fourth byte undefined.
func BGRAOpaque(p []byte) {
	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		p[i], p[i+2], p[i+3] = p[i+2], p[i], 0xff
	}
}
