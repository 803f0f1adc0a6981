package d3d

import (
	"fmt"
	"image"
	"unsafe"
)

// stage is a CPU-readable copy target for a chain buffer.
type stage struct {
	tex     *ID3D11Texture2D
	surface *IDXGISurface
	size    POINT
	format  uint32
}

func (s *SwapChain) initializeStage(texture *ID3D11Texture2D) error {
	desc := _D3D11_TEXTURE2D_DESC{}
	texture.GetDesc(&desc)

	desc.Usage = D3D11_USAGE_STAGING
	desc.CPUAccessFlags = D3D11_CPU_ACCESS_READ
	desc.BindFlags = 0
	desc.MipLevels = 1
	desc.ArraySize = 1
	desc.MiscFlags = 0
	desc.SampleDesc.Count = 1
	desc.SampleDesc.Quality = 0

	tex, err := s.dev.dev.CreateTexture2D(&desc)
	if err != nil {
		return fmt.Errorf("failed to CreateTexture2D. %w", err)
	}
	st := &stage{tex: tex, size: POINT{X: int32(desc.Width), Y: int32(desc.Height)}, format: desc.Format}
	if err := tex.QueryInterface(&iidIDXGISurface, unsafe.Pointer(&st.surface)); err != nil {
		st.Release()
		return fmt.Errorf("failed to QueryInterface(iid_IDXGISurface, ...). %w", err)
	}
	s.stage = st
	return nil
}

func (st *stage) Release() {
	if st.surface != nil {
		st.surface.Release()
		st.surface = nil
	}
	if st.tex != nil {
		st.tex.Release()
		st.tex = nil
	}
}

// readback copies texture through the staging texture into dst. The stage
// is rebuilt whenever the buffer size or format changed.
func (s *SwapChain) readback(texture *ID3D11Texture2D, dst *image.RGBA) error {
	var desc _D3D11_TEXTURE2D_DESC
	texture.GetDesc(&desc)
	if desc.SampleDesc.Count > 1 {
		return fmt.Errorf("multisampled buffer: %w", DXGI_ERROR_UNSUPPORTED)
	}
	bgra, ok := readableFormat(desc.Format)
	if !ok {
		return fmt.Errorf("buffer format %d: %w", desc.Format, DXGI_ERROR_UNSUPPORTED)
	}

	if s.stage != nil && (s.stage.size != POINT{X: int32(desc.Width), Y: int32(desc.Height)} || s.stage.format != desc.Format) {
		s.stage.Release()
		s.stage = nil
	}
	if s.stage == nil {
		if err := s.initializeStage(texture); err != nil {
			return fmt.Errorf("failed to InitializeStage. %w", err)
		}
	}

	s.dev.ctx.CopyResource2D(s.stage.tex, texture)

	var rect DXGI_MAPPED_RECT
	if err := s.stage.surface.Map(&rect, DXGI_MAP_READ); err != nil {
		return fmt.Errorf("failed to surface.Map(...). %w", err)
	}
	defer s.stage.surface.Unmap()

	height := int(s.stage.size.Y)
	pitch := int(rect.Pitch)
	src := unsafe.Slice((*byte)(unsafe.Pointer(rect.PBits)), pitch*height)
	copyRows(dst, src, pitch, bgra)
	return nil
}
