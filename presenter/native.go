package presenter

import "image"

// Output is a display output (monitor) owned by the adapter. Callers
// release every Output they obtain.
type Output interface {
	// ID is a stable logical monitor identifier, e.g. `\\.\DISPLAY1`.
	ID() string
	Release()
}

// Device is the active graphics device. The presenter queries it but never
// releases it.
type Device interface {
	OutputCount() int
	Output(index int) (Output, error)
	// PreferredOutput is the output index fullscreen transitions bind to.
	PreferredOutput() int
	NativeHandle() uintptr
}

// RenderTarget is a renderable view over a chain buffer.
type RenderTarget interface {
	Handle() uintptr
	Release()
}

// ModeDesc is the display mode requested with Chain.ResizeTarget.
type ModeDesc struct {
	Width       int
	Height      int
	RefreshRate Rational
	Format      Format
}

// ChainDesc is everything needed to create a buffer chain.
type ChainDesc struct {
	Width         int
	Height        int
	Format        Format
	RefreshRate   Rational
	SampleCount   uint32
	SampleQuality uint32
	Usage         Usage
	BufferCount   int
	SwapEffect    SwapEffect
	Flags         ChainFlags
	Windowed      bool
}

// Chain is a native buffer chain.
type Chain interface {
	Release()
	BufferCount() int
	// Present queues buffer 0 for display after interval vblanks.
	Present(interval uint32) error
	// RenderTarget returns a new view over buffer index.
	RenderTarget(index int) (RenderTarget, error)
	ResizeBuffers(count, width, height int, format Format, flags ChainFlags) error
	ResizeTarget(mode ModeDesc) error
	// FullscreenState returns the current state and the bound output, if
	// any. The caller releases the output.
	FullscreenState() (bool, Output, error)
	SetFullscreenState(fullscreen bool, out Output) error
}

// ChainFactory creates chains for each supported target kind.
type ChainFactory interface {
	// WindowSize validates a window handle and returns its client size.
	WindowSize(window uintptr) (width, height int, err error)
	CreateWindowChain(window uintptr, desc ChainDesc) (Chain, error)
	CreateCompositionChain(surface uintptr, desc ChainDesc) (Chain, error)
}

// Capturer is implemented by chains that can copy buffer 0 to memory.
type Capturer interface {
	Capture(dst *image.RGBA) error
}
