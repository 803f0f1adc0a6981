package d3d

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-logr/logr"
	"golang.org/x/sys/windows"

	"github.com/kirides/swapchain/presenter"
	"github.com/kirides/swapchain/win"
)

// Option configures NewDevice.
type Option func(*deviceOptions)

type deviceOptions struct {
	debug     bool
	preferred int
	log       logr.Logger
}

// WithDebugLayer creates the device with the D3D11 debug layer. The SDK
// layers must be installed.
func WithDebugLayer() Option {
	return func(o *deviceOptions) { o.debug = true }
}

// WithPreferredOutput selects the output fullscreen transitions bind to.
func WithPreferredOutput(index int) Option {
	return func(o *deviceOptions) { o.preferred = index }
}

func WithLogger(l logr.Logger) Option {
	return func(o *deviceOptions) { o.log = l }
}

// Device is a D3D11 device on the default adapter. It implements
// presenter.Device and presenter.ChainFactory.
type Device struct {
	dev     *ID3D11Device
	ctx     *ID3D11DeviceContext
	adapter *IDXGIAdapter
	factory *IDXGIFactory

	preferred int
	log       logr.Logger
}

var (
	_ presenter.Device       = (*Device)(nil)
	_ presenter.ChainFactory = (*Device)(nil)
)

// NewDevice creates a hardware D3D11 device with BGRA support and resolves
// the DXGI adapter and factory that created it.
func NewDevice(opts ...Option) (*Device, error) {
	o := deviceOptions{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	flags := uint32(D3D11_CREATE_DEVICE_BGRA_SUPPORT)
	if o.debug {
		flags |= D3D11_CREATE_DEVICE_DEBUG
	}
	dev, ctx, err := d3d11CreateDevice(nil, D3D_DRIVER_TYPE_HARDWARE, flags)
	if err != nil {
		return nil, fmt.Errorf("D3D11CreateDevice: %w", err)
	}
	d := &Device{dev: dev, ctx: ctx, preferred: o.preferred, log: o.log}

	var dxgiDevice *IDXGIDevice
	if err := dev.QueryInterface(&iidIDXGIDevice, unsafe.Pointer(&dxgiDevice)); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to QueryInterface(iid_IDXGIDevice, ...). %w", err)
	}
	defer dxgiDevice.Release()

	d.adapter, err = dxgiDevice.GetAdapter()
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to GetAdapter. %w", err)
	}
	if err := d.adapter.GetParent(&iidIDXGIFactory, unsafe.Pointer(&d.factory)); err != nil {
		d.Release()
		return nil, fmt.Errorf("failed to GetParent(iid_IDXGIFactory, ...). %w", err)
	}

	d.log.V(1).Info("created device", "outputs", d.OutputCount(), "preferred", d.preferred, "debug", o.debug)
	return d, nil
}

// Release releases the device and everything it resolved. Chains created
// from d must be released first.
func (d *Device) Release() {
	if d.factory != nil {
		d.factory.Release()
		d.factory = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.ctx != nil {
		d.ctx.Release()
		d.ctx = nil
	}
	if d.dev != nil {
		d.dev.Release()
		d.dev = nil
	}
}

// OutputCount enumerates the adapter's outputs. Monitors may be attached
// or removed at any time, so it is never cached.
func (d *Device) OutputCount() int {
	n := 0
	for {
		out, err := d.adapter.EnumOutputs(uint32(n))
		if err != nil {
			return n
		}
		out.Release()
		n++
	}
}

func (d *Device) Output(index int) (presenter.Output, error) {
	if index < 0 {
		return nil, DXGI_ERROR_NOT_FOUND
	}
	out, err := d.adapter.EnumOutputs(uint32(index))
	if err != nil {
		return nil, fmt.Errorf("EnumOutputs(%d): %w", index, err)
	}
	o, err := newOutput(out)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// PreferredOutput falls back to the first output when the configured one
// is gone.
func (d *Device) PreferredOutput() int {
	if d.preferred > 0 && d.preferred >= d.OutputCount() {
		return 0
	}
	return d.preferred
}

func (d *Device) NativeHandle() uintptr { return uintptr(unsafe.Pointer(d.dev)) }

// Removed returns the reason the device stopped working, or nil.
func (d *Device) Removed() error { return d.dev.DeviceRemovedReason() }

func (d *Device) WindowSize(window uintptr) (int, int, error) {
	return win.ClientSize(window)
}

func (d *Device) CreateWindowChain(window uintptr, desc presenter.ChainDesc) (presenter.Chain, error) {
	sd := _DXGI_SWAP_CHAIN_DESC{
		BufferDesc:   modeDesc(desc.Width, desc.Height, desc.RefreshRate, desc.Format),
		SampleDesc:   _DXGI_SAMPLE_DESC{Count: desc.SampleCount, Quality: desc.SampleQuality},
		BufferUsage:  uint32(desc.Usage),
		BufferCount:  uint32(desc.BufferCount),
		OutputWindow: window,
		SwapEffect:   uint32(desc.SwapEffect),
		Flags:        uint32(desc.Flags),
	}
	if desc.Windowed {
		sd.Windowed = 1
	}
	chain, err := d.factory.CreateSwapChain(d.dev, &sd)
	if err != nil {
		return nil, fmt.Errorf("CreateSwapChain: %w", err)
	}
	// Alt+Enter would change the fullscreen state behind the presenter.
	if err := d.factory.MakeWindowAssociation(window, DXGI_MWA_NO_ALT_ENTER); err != nil {
		chain.Release()
		return nil, fmt.Errorf("MakeWindowAssociation: %w", err)
	}
	d.log.V(1).Info("created window chain", "hwnd", window, "width", desc.Width, "height", desc.Height, "buffers", desc.BufferCount)
	return newSwapChain(d, chain, desc.BufferCount), nil
}

// CreateCompositionChain creates a flip-model chain and binds it to
// surface, an IUnknown implementing ISwapChainPanelNative.
func (d *Device) CreateCompositionChain(surface uintptr, desc presenter.ChainDesc) (presenter.Chain, error) {
	var factory2 *IDXGIFactory2
	if err := d.factory.QueryInterface(&iidIDXGIFactory2, unsafe.Pointer(&factory2)); err != nil {
		return nil, fmt.Errorf("failed to QueryInterface(iid_IDXGIFactory2, ...). %w", err)
	}
	defer factory2.Release()

	sd := _DXGI_SWAP_CHAIN_DESC1{
		Width:       uint32(desc.Width),
		Height:      uint32(desc.Height),
		Format:      uint32(desc.Format),
		SampleDesc:  _DXGI_SAMPLE_DESC{Count: desc.SampleCount, Quality: desc.SampleQuality},
		BufferUsage: uint32(desc.Usage),
		BufferCount: uint32(desc.BufferCount),
		Scaling:     DXGI_SCALING_STRETCH,
		SwapEffect:  uint32(desc.SwapEffect),
		AlphaMode:   DXGI_ALPHA_MODE_IGNORE,
		Flags:       uint32(desc.Flags),
	}
	chain, err := factory2.CreateSwapChainForComposition(d.dev, &sd)
	if err != nil {
		return nil, fmt.Errorf("CreateSwapChainForComposition: %w", err)
	}

	var panel *ISwapChainPanelNative
	if err := comQueryInterface(unsafe.Pointer(surface), &iidISwapChainPanelNative, unsafe.Pointer(&panel)); err != nil {
		chain.Release()
		return nil, fmt.Errorf("failed to QueryInterface(iid_ISwapChainPanelNative, ...). %w", err)
	}
	defer panel.Release()
	if err := panel.SetSwapChain(chain); err != nil {
		chain.Release()
		return nil, fmt.Errorf("SetSwapChain: %w", err)
	}
	d.log.V(1).Info("created composition chain", "width", desc.Width, "height", desc.Height)
	return newSwapChain(d, chain, desc.BufferCount), nil
}

func modeDesc(width, height int, rate presenter.Rational, format presenter.Format) _DXGI_MODE_DESC {
	return _DXGI_MODE_DESC{
		Width:    uint32(width),
		Height:   uint32(height),
		Rational: _DXGI_RATIONAL{Numerator: rate.Numerator, Denominator: rate.Denominator},
		Format:   uint32(format),
	}
}

// Output is an adapter output. Its ID is the GDI device name.
type Output struct {
	out    *IDXGIOutput
	id     string
	bounds image.Rectangle
}

var errForeignOutput = errors.New("d3d: output was not created by this package")

func newOutput(out *IDXGIOutput) (*Output, error) {
	var desc _DXGI_OUTPUT_DESC
	if err := out.GetDesc(&desc); err != nil {
		out.Release()
		return nil, fmt.Errorf("IDXGIOutput::GetDesc: %w", err)
	}
	rc := desc.DesktopCoordinates
	return &Output{
		out:    out,
		id:     windows.UTF16ToString(desc.DeviceName[:]),
		bounds: image.Rect(int(rc.Left), int(rc.Top), int(rc.Right), int(rc.Bottom)),
	}, nil
}

func (o *Output) ID() string { return o.id }

// Bounds is the output's desktop rectangle.
func (o *Output) Bounds() image.Rectangle { return o.bounds }

func (o *Output) Release() {
	if o.out != nil {
		o.out.Release()
		o.out = nil
	}
}

// Clear fills the render target view behind handle, as returned by
// presenter.BackBuffer.Handle, with rgba.
func (d *Device) Clear(handle uintptr, rgba [4]float32) {
	if handle == 0 {
		return
	}
	d.ctx.ClearRenderTargetView((*ID3D11RenderTargetView)(unsafe.Pointer(handle)), &rgba)
}
