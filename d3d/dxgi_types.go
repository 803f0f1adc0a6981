package d3d

import "strconv"

type _DXGI_RATIONAL struct {
	Numerator   uint32
	Denominator uint32
}
type _DXGI_MODE_DESC struct {
	Width            uint32
	Height           uint32
	Rational         _DXGI_RATIONAL
	Format           uint32 // DXGI_FORMAT
	ScanlineOrdering uint32 // DXGI_MODE_SCANLINE_ORDER
	Scaling          uint32 // DXGI_MODE_SCALING
}

type _DXGI_SAMPLE_DESC struct {
	Count   uint32
	Quality uint32
}

type _DXGI_SWAP_CHAIN_DESC struct {
	BufferDesc   _DXGI_MODE_DESC
	SampleDesc   _DXGI_SAMPLE_DESC
	BufferUsage  uint32
	BufferCount  uint32
	OutputWindow uintptr // HWND
	Windowed     int32   // BOOL
	SwapEffect   uint32
	Flags        uint32
}

type _DXGI_SWAP_CHAIN_DESC1 struct {
	Width       uint32
	Height      uint32
	Format      uint32
	Stereo      int32 // BOOL
	SampleDesc  _DXGI_SAMPLE_DESC
	BufferUsage uint32
	BufferCount uint32
	Scaling     uint32 // DXGI_SCALING
	SwapEffect  uint32
	AlphaMode   uint32 // DXGI_ALPHA_MODE
	Flags       uint32
}

type RECT struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

type _DXGI_OUTPUT_DESC struct {
	DeviceName         [32]uint16
	DesktopCoordinates RECT
	AttachedToDesktop  int32  // BOOL
	Rotation           uint32 // DXGI_MODE_ROTATION
	Monitor            uintptr
}

type _D3D11_TEXTURE2D_DESC struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleDesc     _DXGI_SAMPLE_DESC
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

type POINT struct {
	X int32
	Y int32
}

type DXGI_MAPPED_RECT struct {
	Pitch int32
	PBits uintptr
}

const (
	DXGI_FORMAT_R8G8B8A8_UNORM      = 28
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB = 29
	DXGI_FORMAT_B8G8R8A8_UNORM      = 87
	DXGI_FORMAT_B8G8R8A8_UNORM_SRGB = 91

	DXGI_MAP_READ = 1

	DXGI_MWA_NO_ALT_ENTER = 0x2

	DXGI_SCALING_STRETCH = 0

	DXGI_ALPHA_MODE_IGNORE = 3

	D3D11_USAGE_STAGING   = 3
	D3D11_CPU_ACCESS_READ = 0x20000

	D3D11_CREATE_DEVICE_BGRA_SUPPORT = 0x20
	D3D11_CREATE_DEVICE_DEBUG        = 0x2
	D3D11_SDK_VERSION                = 7
	D3D_DRIVER_TYPE_HARDWARE         = 1
	D3D_DRIVER_TYPE_UNKNOWN          = 0
)

// HRESULT is a failing COM or DXGI status code.
type HRESULT uint32

const (
	ERROR_INVALID_ARG                  HRESULT = 0x80070057
	ERROR_INVALID_WINDOW_HANDLE        HRESULT = 0x80070578
	E_NOINTERFACE                      HRESULT = 0x80004002
	E_OUTOFMEMORY                      HRESULT = 0x8007000E
	DXGI_ERROR_INVALID_CALL            HRESULT = 0x887A0001
	DXGI_ERROR_NOT_FOUND               HRESULT = 0x887A0002
	DXGI_ERROR_UNSUPPORTED             HRESULT = 0x887A0004
	DXGI_ERROR_DEVICE_REMOVED          HRESULT = 0x887A0005
	DXGI_ERROR_DEVICE_HUNG             HRESULT = 0x887A0006
	DXGI_ERROR_DEVICE_RESET            HRESULT = 0x887A0007
	DXGI_ERROR_WAS_STILL_DRAWING       HRESULT = 0x887A000A
	DXGI_ERROR_DRIVER_INTERNAL_ERROR   HRESULT = 0x887A0020
	DXGI_ERROR_NOT_CURRENTLY_AVAILABLE HRESULT = 0x887A0022
	DXGI_ERROR_ACCESS_LOST             HRESULT = 0x887A0026
	DXGI_ERROR_WAIT_TIMEOUT            HRESULT = 0x887A0027
	D3DDDIERR_DEVICEREMOVED            HRESULT = 1<<31 | 0x876<<16 | 2160

	// DXGI_STATUS_OCCLUDED is a success code: the window is not visible.
	DXGI_STATUS_OCCLUDED = 0x087A0001
)

func (e HRESULT) Error() string {
	switch e {
	case ERROR_INVALID_ARG:
		return "ERROR_INVALID_ARG"
	case ERROR_INVALID_WINDOW_HANDLE:
		return "ERROR_INVALID_WINDOW_HANDLE"
	case E_NOINTERFACE:
		return "E_NOINTERFACE"
	case E_OUTOFMEMORY:
		return "E_OUTOFMEMORY"
	case DXGI_ERROR_INVALID_CALL:
		return "DXGI_ERROR_INVALID_CALL"
	case DXGI_ERROR_NOT_FOUND:
		return "DXGI_ERROR_NOT_FOUND"
	case DXGI_ERROR_UNSUPPORTED:
		return "DXGI_ERROR_UNSUPPORTED"
	case DXGI_ERROR_DEVICE_REMOVED:
		return "DXGI_ERROR_DEVICE_REMOVED"
	case DXGI_ERROR_DEVICE_HUNG:
		return "DXGI_ERROR_DEVICE_HUNG"
	case DXGI_ERROR_DEVICE_RESET:
		return "DXGI_ERROR_DEVICE_RESET"
	case DXGI_ERROR_WAS_STILL_DRAWING:
		return "DXGI_ERROR_WAS_STILL_DRAWING"
	case DXGI_ERROR_DRIVER_INTERNAL_ERROR:
		return "DXGI_ERROR_DRIVER_INTERNAL_ERROR"
	case DXGI_ERROR_NOT_CURRENTLY_AVAILABLE:
		return "DXGI_ERROR_NOT_CURRENTLY_AVAILABLE"
	case DXGI_ERROR_ACCESS_LOST:
		return "DXGI_ERROR_ACCESS_LOST"
	case DXGI_ERROR_WAIT_TIMEOUT:
		return "DXGI_ERROR_WAIT_TIMEOUT"
	case D3DDDIERR_DEVICEREMOVED:
		return "D3DDDIERR_DEVICEREMOVED"
	}

	return "0x" + strconv.FormatUint(uint64(e), 16)
}

// Code returns the raw status value.
func (e HRESULT) Code() uint32 {
	return uint32(e)
}

// DeviceLost reports whether the device must be recreated.
func (e HRESULT) DeviceLost() bool {
	switch e {
	case DXGI_ERROR_DEVICE_REMOVED, DXGI_ERROR_DEVICE_RESET, DXGI_ERROR_DEVICE_HUNG,
		DXGI_ERROR_DRIVER_INTERNAL_ERROR, D3DDDIERR_DEVICEREMOVED:
		return true
	}
	return false
}

// failed reports whether hr is a failure code. Success codes such as
// DXGI_STATUS_OCCLUDED are not failures.
func failed(hr uintptr) bool {
	return int32(hr) < 0
}
