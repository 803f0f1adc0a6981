package d3d

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/kirides/swapchain/presenter"
)

// SwapChain is a DXGI swap chain created by a Device.
type SwapChain struct {
	dev   *Device
	chain *IDXGISwapChain
	count int

	stage *stage
}

var (
	_ presenter.Chain    = (*SwapChain)(nil)
	_ presenter.Capturer = (*SwapChain)(nil)
)

func newSwapChain(dev *Device, chain *IDXGISwapChain, count int) *SwapChain {
	return &SwapChain{dev: dev, chain: chain, count: count}
}

func (s *SwapChain) Release() {
	if s.stage != nil {
		s.stage.Release()
		s.stage = nil
	}
	if s.chain != nil {
		s.chain.Release()
		s.chain = nil
	}
}

func (s *SwapChain) BufferCount() int { return s.count }

func (s *SwapChain) Present(interval uint32) error {
	if err := s.chain.Present(interval, 0); err != nil {
		return fmt.Errorf("IDXGISwapChain::Present: %w", err)
	}
	return nil
}

// RenderTarget creates a render target view over buffer index. The buffer
// reference taken by GetBuffer is dropped once the view holds it.
func (s *SwapChain) RenderTarget(index int) (presenter.RenderTarget, error) {
	tex, err := s.chain.GetBuffer(uint32(index))
	if err != nil {
		return nil, fmt.Errorf("IDXGISwapChain::GetBuffer(%d): %w", index, err)
	}
	defer tex.Release()
	view, err := s.dev.dev.CreateRenderTargetView(tex)
	if err != nil {
		return nil, fmt.Errorf("ID3D11Device::CreateRenderTargetView: %w", err)
	}
	return &renderTarget{view: view}, nil
}

func (s *SwapChain) ResizeBuffers(count, width, height int, format presenter.Format, flags presenter.ChainFlags) error {
	if err := s.chain.ResizeBuffers(uint32(count), uint32(width), uint32(height), uint32(format), uint32(flags)); err != nil {
		return fmt.Errorf("IDXGISwapChain::ResizeBuffers: %w", err)
	}
	s.count = count
	return nil
}

func (s *SwapChain) ResizeTarget(mode presenter.ModeDesc) error {
	md := modeDesc(mode.Width, mode.Height, mode.RefreshRate, mode.Format)
	if err := s.chain.ResizeTarget(&md); err != nil {
		return fmt.Errorf("IDXGISwapChain::ResizeTarget: %w", err)
	}
	return nil
}

func (s *SwapChain) FullscreenState() (bool, presenter.Output, error) {
	fullscreen, target, err := s.chain.GetFullscreenState()
	if err != nil {
		return false, nil, fmt.Errorf("IDXGISwapChain::GetFullscreenState: %w", err)
	}
	if target == nil {
		return fullscreen, nil, nil
	}
	out, err := newOutput(target)
	if err != nil {
		return false, nil, err
	}
	return fullscreen, out, nil
}

func (s *SwapChain) SetFullscreenState(fullscreen bool, out presenter.Output) error {
	var target *IDXGIOutput
	if out != nil {
		o, ok := out.(*Output)
		if !ok {
			return fmt.Errorf("%w: %T", errForeignOutput, out)
		}
		target = o.out
	}
	if err := s.chain.SetFullscreenState(fullscreen, target); err != nil {
		return fmt.Errorf("IDXGISwapChain::SetFullscreenState(%t): %w", fullscreen, err)
	}
	return nil
}

// Capture copies buffer 0 into dst, converting to RGBA.
func (s *SwapChain) Capture(dst *image.RGBA) error {
	tex, err := s.chain.GetBuffer(0)
	if err != nil {
		return fmt.Errorf("IDXGISwapChain::GetBuffer(0): %w", err)
	}
	defer tex.Release()
	return s.readback(tex, dst)
}

type renderTarget struct {
	view *ID3D11RenderTargetView
}

func (r *renderTarget) Handle() uintptr { return uintptr(unsafe.Pointer(r.view)) }

func (r *renderTarget) Release() {
	if r.view != nil {
		r.view.Release()
		r.view = nil
	}
}
