package presenter

import "image"

// BackBuffer is the renderable view over chain buffer 0. A presenter
// replaces its BackBuffer on every resize; a replaced BackBuffer reports
// UnrecoverableStateError from Handle.
type BackBuffer struct {
	target  RenderTarget
	width   int
	height  int
	format  Format
	samples uint32
}

func (b *BackBuffer) Width() int     { return b.width }
func (b *BackBuffer) Height() int    { return b.height }
func (b *BackBuffer) Format() Format { return b.format }

// SampleCount is the multisample count of the view.
func (b *BackBuffer) SampleCount() uint32 { return b.samples }

func (b *BackBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Handle returns the native render target view for the rendering pipeline.
func (b *BackBuffer) Handle() (uintptr, error) {
	if b.target == nil {
		return 0, &UnrecoverableStateError{Op: "backbuffer handle", Cause: ErrBackBufferReleased}
	}
	return b.target.Handle(), nil
}

// Live reports whether the view has not been released.
func (b *BackBuffer) Live() bool {
	return b.target != nil
}

// Release drops the native view. It is called by the presenter's tracker.
func (b *BackBuffer) Release() {
	if b.target != nil {
		b.target.Release()
		b.target = nil
	}
}

// Viewport covers the whole backbuffer.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

func viewportFor(b *BackBuffer) Viewport {
	return Viewport{Width: float32(b.width), Height: float32(b.height), MaxDepth: 1}
}
