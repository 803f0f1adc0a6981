package presenter

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
)

const (
	codeInvalidCall   fakeCode = 0x887A0001
	codeDeviceRemoved fakeCode = 0x887A0005
	codeDeviceReset   fakeCode = 0x887A0007
	codeBadWindow     fakeCode = 0x80070578
)

// fakeCode mimics a native error code.
type fakeCode uint32

func (c fakeCode) Error() string    { return "0x" + strconv.FormatUint(uint64(c), 16) }
func (c fakeCode) Code() uint32     { return uint32(c) }
func (c fakeCode) DeviceLost() bool { return c == codeDeviceReset || c == codeDeviceRemoved }

// fakeWorld counts live native objects and records every call made on a
// chain, in order.
type fakeWorld struct {
	live      int
	liveViews int
	calls     []string
	released  []string
	nextView  int
}

func (w *fakeWorld) call(format string, args ...any) {
	w.calls = append(w.calls, fmt.Sprintf(format, args...))
}

func (w *fakeWorld) reset() {
	w.calls = nil
	w.released = nil
}

type fakeOutput struct {
	w        *fakeWorld
	id       string
	released bool
}

func (o *fakeOutput) ID() string { return o.id }

func (o *fakeOutput) Release() {
	if o.released {
		panic("output " + o.id + " released twice")
	}
	o.released = true
	o.w.live--
}

type fakeView struct {
	w        *fakeWorld
	n        int
	released bool
}

func (v *fakeView) Handle() uintptr { return uintptr(0x1000 + v.n) }

func (v *fakeView) Release() {
	if v.released {
		panic("view released twice")
	}
	v.released = true
	v.w.live--
	v.w.liveViews--
	v.w.released = append(v.w.released, "view"+strconv.Itoa(v.n))
}

type fakeDevice struct {
	w         *fakeWorld
	outputs   []string
	preferred int
	windows   map[uintptr]image.Point
	noCapture bool

	createErr error
	outputErr error

	// chain is the last chain created.
	chain   *fakeChain
	created []ChainDesc
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		w:       &fakeWorld{},
		outputs: []string{`\\.\DISPLAY1`, `\\.\DISPLAY2`},
		windows: map[uintptr]image.Point{0x42: {X: 1280, Y: 720}},
	}
}

func (d *fakeDevice) OutputCount() int      { return len(d.outputs) }
func (d *fakeDevice) PreferredOutput() int  { return d.preferred }
func (d *fakeDevice) NativeHandle() uintptr { return 0xD3D }

func (d *fakeDevice) Output(i int) (Output, error) {
	if d.outputErr != nil {
		return nil, d.outputErr
	}
	if i < 0 || i >= len(d.outputs) {
		return nil, fakeCode(0x887A0002)
	}
	d.w.live++
	return &fakeOutput{w: d.w, id: d.outputs[i]}, nil
}

func (d *fakeDevice) WindowSize(hwnd uintptr) (int, int, error) {
	sz, ok := d.windows[hwnd]
	if !ok {
		return 0, 0, codeBadWindow
	}
	return sz.X, sz.Y, nil
}

func (d *fakeDevice) CreateWindowChain(hwnd uintptr, desc ChainDesc) (Chain, error) {
	return d.create(desc)
}

func (d *fakeDevice) CreateCompositionChain(surface uintptr, desc ChainDesc) (Chain, error) {
	return d.create(desc)
}

func (d *fakeDevice) create(desc ChainDesc) (Chain, error) {
	d.created = append(d.created, desc)
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.w.live++
	c := &fakeChain{
		w:      d.w,
		dev:    d,
		count:  desc.BufferCount,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		flags:  desc.Flags,
	}
	d.chain = c
	if d.noCapture {
		return plainChain{c}, nil
	}
	return c, nil
}

// plainChain hides the Capturer implementation of fakeChain.
type plainChain struct {
	Chain
}

type fakeChain struct {
	w   *fakeWorld
	dev *fakeDevice

	count         int
	width, height int
	format        Format
	flags         ChainFlags
	fullscreen    bool
	bound         string
	released      bool

	presentErr   error
	resizeErr    error
	viewErr      error
	targetErr    error
	setStateErr  error
	getStateErr  error
	captureColor color.RGBA
}

func (c *fakeChain) Release() {
	if c.released {
		panic("chain released twice")
	}
	c.released = true
	c.w.live--
	c.w.released = append(c.w.released, "chain")
}

func (c *fakeChain) BufferCount() int { return c.count }

func (c *fakeChain) Present(interval uint32) error {
	c.w.call("Present(%d)", interval)
	return c.presentErr
}

func (c *fakeChain) RenderTarget(index int) (RenderTarget, error) {
	c.w.call("GetBuffer(%d)", index)
	if c.viewErr != nil {
		return nil, c.viewErr
	}
	c.w.live++
	c.w.liveViews++
	c.w.nextView++
	return &fakeView{w: c.w, n: c.w.nextView}, nil
}

func (c *fakeChain) ResizeBuffers(count, width, height int, format Format, flags ChainFlags) error {
	c.w.call("ResizeBuffers(%d, %dx%d, %v, %#x)", count, width, height, format, uint32(flags))
	if c.resizeErr != nil {
		return c.resizeErr
	}
	// The driver rejects a resize while views over the buffers exist.
	if c.w.liveViews > 0 {
		return codeInvalidCall
	}
	c.width, c.height, c.format = width, height, format
	return nil
}

func (c *fakeChain) ResizeTarget(mode ModeDesc) error {
	c.w.call("ResizeTarget(%dx%d %d/%d %v)", mode.Width, mode.Height,
		mode.RefreshRate.Numerator, mode.RefreshRate.Denominator, mode.Format)
	return c.targetErr
}

func (c *fakeChain) FullscreenState() (bool, Output, error) {
	c.w.call("GetFullscreenState")
	if c.getStateErr != nil {
		return false, nil, c.getStateErr
	}
	if !c.fullscreen || c.bound == "" {
		return c.fullscreen, nil, nil
	}
	c.w.live++
	return true, &fakeOutput{w: c.w, id: c.bound}, nil
}

func (c *fakeChain) SetFullscreenState(fullscreen bool, out Output) error {
	id := "<nil>"
	if out != nil {
		id = out.ID()
	}
	c.w.call("SetFullscreenState(%t, %s)", fullscreen, id)
	if c.setStateErr != nil {
		return c.setStateErr
	}
	c.fullscreen = fullscreen
	c.bound = ""
	if fullscreen && out != nil {
		c.bound = out.ID()
	}
	return nil
}

func (c *fakeChain) Capture(dst *image.RGBA) error {
	c.w.call("Capture")
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetRGBA(x, y, c.captureColor)
		}
	}
	return nil
}
