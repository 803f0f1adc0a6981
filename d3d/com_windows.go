package d3d

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modd3d11 = windows.NewLazySystemDLL("d3d11.dll")

	procD3D11CreateDevice = modd3d11.NewProc("D3D11CreateDevice")
)

var (
	iidIDXGIDevice           = windows.GUID{Data1: 0x54ec77fa, Data2: 0x1377, Data3: 0x44e6, Data4: [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	iidIDXGIFactory          = windows.GUID{Data1: 0x7b7166ec, Data2: 0x21c7, Data3: 0x44ae, Data4: [8]byte{0xb2, 0x1a, 0xc9, 0xae, 0x32, 0x1a, 0xe3, 0x69}}
	iidIDXGIFactory2         = windows.GUID{Data1: 0x50c83a1c, Data2: 0xe072, Data3: 0x4c48, Data4: [8]byte{0x87, 0xb0, 0x36, 0x30, 0xfa, 0x36, 0xa6, 0xd0}}
	iidID3D11Texture2D       = windows.GUID{Data1: 0x6f15aaf2, Data2: 0xd208, Data3: 0x4e89, Data4: [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
	iidIDXGISurface          = windows.GUID{Data1: 0xcafcb56c, Data2: 0x6ac3, Data3: 0x4889, Data4: [8]byte{0xbf, 0x47, 0x9e, 0x23, 0xbd, 0x26, 0x0e, 0xec}}
	iidISwapChainPanelNative = windows.GUID{Data1: 0xf92f19d2, Data2: 0x3ade, Data3: 0x45a6, Data4: [8]byte{0xa2, 0x0c, 0xf6, 0xf1, 0xea, 0x90, 0x55, 0x4b}}
)

type ID3D11Device struct {
	vtbl *iD3D11DeviceVtbl
}

type ID3D11DeviceContext struct {
	vtbl *iD3D11DeviceContextVtbl
}

type ID3D11Texture2D struct {
	vtbl *iD3D11Texture2DVtbl
}

type ID3D11RenderTargetView struct {
	vtbl *iD3D11DeviceChildVtbl
}

type IDXGIDevice struct {
	vtbl *iDXGIDeviceVtbl
}

type IDXGIAdapter struct {
	vtbl *iDXGIAdapterVtbl
}

type IDXGIOutput struct {
	vtbl *iDXGIOutputVtbl
}

type IDXGIFactory struct {
	vtbl *iDXGIFactoryVtbl
}

type IDXGIFactory2 struct {
	vtbl *iDXGIFactory2Vtbl
}

type IDXGISwapChain struct {
	vtbl *iDXGISwapChainVtbl
}

type IDXGISurface struct {
	vtbl *iDXGISurfaceVtbl
}

type ISwapChainPanelNative struct {
	vtbl *iSwapChainPanelNativeVtbl
}

// comRelease calls IUnknown::Release on any interface pointer. Every vtbl
// starts with the IUnknown entries.
func comRelease(obj unsafe.Pointer) {
	if obj == nil {
		return
	}
	vtbl := *(**iUnknownVtbl)(obj)
	syscall.SyscallN(vtbl.Release, uintptr(obj))
}

func comQueryInterface(obj unsafe.Pointer, iid *windows.GUID, out unsafe.Pointer) error {
	vtbl := *(**iUnknownVtbl)(obj)
	hr, _, _ := syscall.SyscallN(vtbl.QueryInterface, uintptr(obj), uintptr(unsafe.Pointer(iid)), uintptr(out))
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func d3d11CreateDevice(adapter *IDXGIAdapter, driverType, flags uint32) (*ID3D11Device, *ID3D11DeviceContext, error) {
	var (
		dev     *ID3D11Device
		ctx     *ID3D11DeviceContext
		featLvl uint32
	)
	hr, _, _ := syscall.SyscallN(procD3D11CreateDevice.Addr(),
		uintptr(unsafe.Pointer(adapter)),  // pAdapter
		uintptr(driverType),               // DriverType
		0,                                 // Software
		uintptr(flags),                    // Flags
		0,                                 // pFeatureLevels
		0,                                 // FeatureLevels
		D3D11_SDK_VERSION,                 // SDKVersion
		uintptr(unsafe.Pointer(&dev)),     // ppDevice
		uintptr(unsafe.Pointer(&featLvl)), // pFeatureLevel
		uintptr(unsafe.Pointer(&ctx)),     // ppImmediateContext
	)
	if failed(hr) {
		return nil, nil, HRESULT(hr)
	}
	return dev, ctx, nil
}

func (d *ID3D11Device) Release() { comRelease(unsafe.Pointer(d)) }

func (d *ID3D11Device) QueryInterface(iid *windows.GUID, out unsafe.Pointer) error {
	return comQueryInterface(unsafe.Pointer(d), iid, out)
}

func (d *ID3D11Device) CreateTexture2D(desc *_D3D11_TEXTURE2D_DESC) (*ID3D11Texture2D, error) {
	var tex *ID3D11Texture2D
	hr, _, _ := syscall.SyscallN(d.vtbl.CreateTexture2D,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(desc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&tex)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return tex, nil
}

func (d *ID3D11Device) CreateRenderTargetView(res *ID3D11Texture2D) (*ID3D11RenderTargetView, error) {
	var view *ID3D11RenderTargetView
	hr, _, _ := syscall.SyscallN(d.vtbl.CreateRenderTargetView,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(res)),
		0, // pDesc
		uintptr(unsafe.Pointer(&view)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return view, nil
}

// DeviceRemovedReason returns nil while the device is usable.
func (d *ID3D11Device) DeviceRemovedReason() error {
	hr, _, _ := syscall.SyscallN(d.vtbl.GetDeviceRemovedReason, uintptr(unsafe.Pointer(d)))
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (c *ID3D11DeviceContext) Release() { comRelease(unsafe.Pointer(c)) }

func (c *ID3D11DeviceContext) CopyResource2D(dst, src *ID3D11Texture2D) {
	syscall.SyscallN(c.vtbl.CopyResource,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(dst)),
		uintptr(unsafe.Pointer(src)),
	)
}

func (c *ID3D11DeviceContext) ClearRenderTargetView(target *ID3D11RenderTargetView, color *[4]float32) {
	syscall.SyscallN(c.vtbl.ClearRenderTargetView,
		uintptr(unsafe.Pointer(c)),
		uintptr(unsafe.Pointer(target)),
		uintptr(unsafe.Pointer(color)),
	)
}

func (t *ID3D11Texture2D) Release() { comRelease(unsafe.Pointer(t)) }

func (t *ID3D11Texture2D) QueryInterface(iid *windows.GUID, out unsafe.Pointer) error {
	return comQueryInterface(unsafe.Pointer(t), iid, out)
}

func (t *ID3D11Texture2D) GetDesc(desc *_D3D11_TEXTURE2D_DESC) {
	syscall.SyscallN(t.vtbl.GetDesc, uintptr(unsafe.Pointer(t)), uintptr(unsafe.Pointer(desc)))
}

func (v *ID3D11RenderTargetView) Release() { comRelease(unsafe.Pointer(v)) }

func (d *IDXGIDevice) Release() { comRelease(unsafe.Pointer(d)) }

func (d *IDXGIDevice) GetAdapter() (*IDXGIAdapter, error) {
	var adapter *IDXGIAdapter
	hr, _, _ := syscall.SyscallN(d.vtbl.GetAdapter,
		uintptr(unsafe.Pointer(d)),
		uintptr(unsafe.Pointer(&adapter)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return adapter, nil
}

func (a *IDXGIAdapter) Release() { comRelease(unsafe.Pointer(a)) }

// EnumOutputs returns DXGI_ERROR_NOT_FOUND past the last output.
func (a *IDXGIAdapter) EnumOutputs(index uint32) (*IDXGIOutput, error) {
	var out *IDXGIOutput
	hr, _, _ := syscall.SyscallN(a.vtbl.EnumOutputs,
		uintptr(unsafe.Pointer(a)),
		uintptr(index),
		uintptr(unsafe.Pointer(&out)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return out, nil
}

func (a *IDXGIAdapter) GetParent(iid *windows.GUID, out unsafe.Pointer) error {
	hr, _, _ := syscall.SyscallN(a.vtbl.GetParent,
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(out),
	)
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (o *IDXGIOutput) Release() { comRelease(unsafe.Pointer(o)) }

func (o *IDXGIOutput) GetDesc(desc *_DXGI_OUTPUT_DESC) error {
	hr, _, _ := syscall.SyscallN(o.vtbl.GetDesc, uintptr(unsafe.Pointer(o)), uintptr(unsafe.Pointer(desc)))
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (f *IDXGIFactory) Release() { comRelease(unsafe.Pointer(f)) }

func (f *IDXGIFactory) QueryInterface(iid *windows.GUID, out unsafe.Pointer) error {
	return comQueryInterface(unsafe.Pointer(f), iid, out)
}

func (f *IDXGIFactory) CreateSwapChain(device *ID3D11Device, desc *_DXGI_SWAP_CHAIN_DESC) (*IDXGISwapChain, error) {
	var chain *IDXGISwapChain
	hr, _, _ := syscall.SyscallN(f.vtbl.CreateSwapChain,
		uintptr(unsafe.Pointer(f)),
		uintptr(unsafe.Pointer(device)),
		uintptr(unsafe.Pointer(desc)),
		uintptr(unsafe.Pointer(&chain)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return chain, nil
}

func (f *IDXGIFactory) MakeWindowAssociation(hwnd uintptr, flags uint32) error {
	hr, _, _ := syscall.SyscallN(f.vtbl.MakeWindowAssociation,
		uintptr(unsafe.Pointer(f)),
		hwnd,
		uintptr(flags),
	)
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (f *IDXGIFactory2) Release() { comRelease(unsafe.Pointer(f)) }

func (f *IDXGIFactory2) CreateSwapChainForComposition(device *ID3D11Device, desc *_DXGI_SWAP_CHAIN_DESC1) (*IDXGISwapChain, error) {
	var chain *IDXGISwapChain
	hr, _, _ := syscall.SyscallN(f.vtbl.CreateSwapChainForComposition,
		uintptr(unsafe.Pointer(f)),
		uintptr(unsafe.Pointer(device)),
		uintptr(unsafe.Pointer(desc)),
		0, // pRestrictToOutput
		uintptr(unsafe.Pointer(&chain)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return chain, nil
}

func (s *IDXGISwapChain) Release() { comRelease(unsafe.Pointer(s)) }

// Present returns nil for success codes such as DXGI_STATUS_OCCLUDED.
func (s *IDXGISwapChain) Present(syncInterval, flags uint32) error {
	hr, _, _ := syscall.SyscallN(s.vtbl.Present,
		uintptr(unsafe.Pointer(s)),
		uintptr(syncInterval),
		uintptr(flags),
	)
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (s *IDXGISwapChain) GetBuffer(index uint32) (*ID3D11Texture2D, error) {
	var tex *ID3D11Texture2D
	hr, _, _ := syscall.SyscallN(s.vtbl.GetBuffer,
		uintptr(unsafe.Pointer(s)),
		uintptr(index),
		uintptr(unsafe.Pointer(&iidID3D11Texture2D)),
		uintptr(unsafe.Pointer(&tex)),
	)
	if failed(hr) {
		return nil, HRESULT(hr)
	}
	return tex, nil
}

func (s *IDXGISwapChain) SetFullscreenState(fullscreen bool, target *IDXGIOutput) error {
	var b uintptr
	if fullscreen {
		b = 1
	}
	hr, _, _ := syscall.SyscallN(s.vtbl.SetFullscreenState,
		uintptr(unsafe.Pointer(s)),
		b,
		uintptr(unsafe.Pointer(target)),
	)
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

// GetFullscreenState returns the bound output when fullscreen. The caller
// releases it.
func (s *IDXGISwapChain) GetFullscreenState() (bool, *IDXGIOutput, error) {
	var (
		fullscreen int32
		target     *IDXGIOutput
	)
	hr, _, _ := syscall.SyscallN(s.vtbl.GetFullscreenState,
		uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(&fullscreen)),
		uintptr(unsafe.Pointer(&target)),
	)
	if failed(hr) {
		return false, nil, HRESULT(hr)
	}
	return fullscreen != 0, target, nil
}

func (s *IDXGISwapChain) GetDesc() (_DXGI_SWAP_CHAIN_DESC, error) {
	var desc _DXGI_SWAP_CHAIN_DESC
	hr, _, _ := syscall.SyscallN(s.vtbl.GetDesc, uintptr(unsafe.Pointer(s)), uintptr(unsafe.Pointer(&desc)))
	if failed(hr) {
		return _DXGI_SWAP_CHAIN_DESC{}, HRESULT(hr)
	}
	return desc, nil
}

func (s *IDXGISwapChain) ResizeBuffers(buffers, width, height, format, flags uint32) error {
	hr, _, _ := syscall.SyscallN(s.vtbl.ResizeBuffers,
		uintptr(unsafe.Pointer(s)),
		uintptr(buffers),
		uintptr(width),
		uintptr(height),
		uintptr(format),
		uintptr(flags),
	)
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (s *IDXGISwapChain) ResizeTarget(mode *_DXGI_MODE_DESC) error {
	hr, _, _ := syscall.SyscallN(s.vtbl.ResizeTarget, uintptr(unsafe.Pointer(s)), uintptr(unsafe.Pointer(mode)))
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (s *IDXGISurface) Release() { comRelease(unsafe.Pointer(s)) }

func (s *IDXGISurface) Map(rect *DXGI_MAPPED_RECT, flags uint32) error {
	hr, _, _ := syscall.SyscallN(s.vtbl.Map,
		uintptr(unsafe.Pointer(s)),
		uintptr(unsafe.Pointer(rect)),
		uintptr(flags),
	)
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (s *IDXGISurface) Unmap() error {
	hr, _, _ := syscall.SyscallN(s.vtbl.Unmap, uintptr(unsafe.Pointer(s)))
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}

func (p *ISwapChainPanelNative) Release() { comRelease(unsafe.Pointer(p)) }

func (p *ISwapChainPanelNative) SetSwapChain(chain *IDXGISwapChain) error {
	hr, _, _ := syscall.SyscallN(p.vtbl.SetSwapChain, uintptr(unsafe.Pointer(p)), uintptr(unsafe.Pointer(chain)))
	if failed(hr) {
		return HRESULT(hr)
	}
	return nil
}
