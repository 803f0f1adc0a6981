package presenter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func windowConfig() Config {
	cfg := DefaultConfig()
	cfg.Target = WindowTarget(0x42)
	cfg.Width = 800
	cfg.Height = 600
	cfg.RefreshRate = Rational{Numerator: 60, Denominator: 1}
	return cfg
}

func newTestPresenter(t *testing.T, dev *fakeDevice, cfg Config) *Presenter {
	t.Helper()
	p, err := Create(dev, cfg)
	require.NoError(t, err)
	dev.w.reset()
	return p
}

func TestCreateWindowChain(t *testing.T) {
	dev := newFakeDevice()
	p, err := Create(dev, windowConfig())
	require.NoError(t, err)

	require.Len(t, dev.created, 1)
	desc := dev.created[0]
	assert.Equal(t, 1, desc.BufferCount, "discard model uses one buffer")
	assert.True(t, desc.Windowed)
	assert.Equal(t, 800, desc.Width)
	assert.Equal(t, 600, desc.Height)
	assert.Equal(t, FormatR8G8B8A8Unorm, desc.Format)
	assert.Equal(t, UsageRenderTargetOutput, desc.Usage)
	assert.Equal(t, FlagAllowModeSwitch, desc.Flags)

	bb, err := p.BackBuffer()
	require.NoError(t, err)
	assert.Equal(t, 800, bb.Width())
	assert.Equal(t, 600, bb.Height())
	assert.Equal(t, FormatR8G8B8A8Unorm, bb.Format())
	h, err := bb.Handle()
	require.NoError(t, err)
	assert.NotZero(t, h)

	vp, err := p.Viewport()
	require.NoError(t, err)
	assert.Equal(t, Viewport{Width: 800, Height: 600, MaxDepth: 1}, vp)

	assert.Equal(t, 2, dev.w.live, "chain and backbuffer view")
	assert.False(t, p.Fullscreen())

	require.NoError(t, p.Release())
	assert.Zero(t, dev.w.live)
}

func TestCreateResolvesSizeFromWindow(t *testing.T) {
	dev := newFakeDevice()
	cfg := windowConfig()
	cfg.Width, cfg.Height = 0, 0

	p, err := Create(dev, cfg)
	require.NoError(t, err)
	bb, err := p.BackBuffer()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1280, 720), bb.Bounds())
	assert.Equal(t, 1280, p.Config().Width)
}

func TestCreateFlipModel(t *testing.T) {
	dev := newFakeDevice()
	cfg := windowConfig()
	cfg.SwapEffect = SwapEffectFlipDiscard

	_, err := Create(dev, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, dev.created[0].BufferCount)
	assert.Equal(t, 2, dev.chain.BufferCount())
}

func TestCreateCompositionForcesFlipModel(t *testing.T) {
	dev := newFakeDevice()
	cfg := windowConfig()
	cfg.Target = CompositionTarget(0x77)

	p, err := Create(dev, cfg)
	require.NoError(t, err)
	assert.Equal(t, SwapEffectFlipSequential, dev.created[0].SwapEffect)
	assert.Equal(t, 2, dev.created[0].BufferCount)
	assert.Equal(t, SwapEffectFlipSequential, p.Config().SwapEffect)
}

func TestCreateRejectsInvalidTargets(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no target", func(c *Config) { c.Target = Target{} }},
		{"null window", func(c *Config) { c.Target = WindowTarget(0) }},
		{"unknown window", func(c *Config) { c.Target = WindowTarget(0x99) }},
		{"unknown kind", func(c *Config) { c.Target = Target{Kind: TargetKind(42), Handle: 1} }},
		{"null composition surface", func(c *Config) { c.Target = CompositionTarget(0) }},
		{"composition without size", func(c *Config) {
			c.Target = CompositionTarget(0x77)
			c.Width = 0
		}},
		{"multisampled flip chain", func(c *Config) {
			c.SwapEffect = SwapEffectFlipSequential
			c.SampleCount = 4
		}},
		{"present interval too large", func(c *Config) { c.PresentInterval = 5 }},
		{"negative size", func(c *Config) { c.Height = -1 }},
		{"unsupported format", func(c *Config) { c.Format = Format(12345) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newFakeDevice()
			cfg := windowConfig()
			tt.modify(&cfg)

			p, err := Create(dev, cfg)
			assert.Nil(t, p)
			var ce *ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Empty(t, dev.created, "no chain may be created")
			assert.Zero(t, dev.w.live, "no native resource may leak")
		})
	}
}

func TestCreateWithoutFactory(t *testing.T) {
	type bareDevice struct{ Device }
	_, err := Create(bareDevice{newFakeDevice()}, windowConfig())
	var ce *ConfigurationError
	assert.ErrorAs(t, err, &ce)

	_, err = Create(nil, windowConfig())
	assert.ErrorAs(t, err, &ce)
}

func TestCreateWithExplicitFactory(t *testing.T) {
	type bareDevice struct{ Device }
	dev := newFakeDevice()
	p, err := Create(bareDevice{dev}, windowConfig(), WithFactory(dev))
	require.NoError(t, err)
	assert.True(t, p.Live())
	assert.Len(t, dev.created, 1)
}

func TestCreateChainFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.createErr = fakeCode(0x887A0004)

	_, err := Create(dev, windowConfig())
	var ne *NativeCallError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, uint32(0x887A0004), ne.Code)
	assert.Equal(t, "create chain", ne.Op)
	assert.Zero(t, dev.w.live)
}

func TestCreateBufferWrapFailureReleasesChain(t *testing.T) {
	dev := newFakeDevice()
	cfg := windowConfig()

	// Fail the first GetBuffer through a device hook on the created chain.
	hook := &failingViewDevice{fakeDevice: dev, err: fakeCode(0x8007000E)}
	_, err := Create(hook, cfg)
	var ne *NativeCallError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, uint32(0x8007000E), ne.Code)
	assert.Zero(t, dev.w.live)
	assert.Equal(t, []string{"chain"}, dev.w.released)
}

type failingViewDevice struct {
	*fakeDevice
	err error
}

func (d *failingViewDevice) CreateWindowChain(hwnd uintptr, desc ChainDesc) (Chain, error) {
	c, err := d.fakeDevice.CreateWindowChain(hwnd, desc)
	if err == nil {
		d.fakeDevice.chain.viewErr = d.err
	}
	return c, err
}

func TestResizeRoundTrip(t *testing.T) {
	sizes := []struct {
		w, h   int
		format Format
	}{
		{1, 1, FormatR8G8B8A8Unorm},
		{1024, 768, FormatB8G8R8A8Unorm},
		{3840, 2160, FormatR10G10B10A2Unorm},
		{640, 480, FormatR16G16B16A16Float},
	}
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())

	for _, s := range sizes {
		require.NoError(t, p.Resize(s.w, s.h, s.format))
		bb, err := p.BackBuffer()
		require.NoError(t, err)
		assert.Equal(t, s.w, bb.Width())
		assert.Equal(t, s.h, bb.Height())
		assert.Equal(t, s.format, bb.Format())
		vp, err := p.Viewport()
		require.NoError(t, err)
		assert.Equal(t, float32(s.w), vp.Width)
		assert.Equal(t, float32(s.h), vp.Height)
	}
	assert.Equal(t, 2, dev.w.live)
}

func TestResizeOrdering(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	old, err := p.BackBuffer()
	require.NoError(t, err)

	require.NoError(t, p.Resize(1024, 768, FormatUnknown))

	want := []string{
		"ResizeBuffers(1, 1024x768, R8G8B8A8_UNORM, 0x2)",
		"GetBuffer(0)",
	}
	if diff := cmp.Diff(want, dev.w.calls); diff != "" {
		t.Errorf("native calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"view1"}, dev.w.released, "old view released before the resize")

	assert.False(t, old.Live())
	_, err = old.Handle()
	var ue *UnrecoverableStateError
	assert.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, ErrBackBufferReleased)

	cur, err := p.BackBuffer()
	require.NoError(t, err)
	assert.NotSame(t, old, cur)
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	before, _ := p.BackBuffer()

	require.NoError(t, p.Resize(800, 600, FormatR8G8B8A8Unorm))
	require.NoError(t, p.Resize(800, 600, FormatUnknown))

	assert.Empty(t, dev.w.calls)
	after, _ := p.BackBuffer()
	assert.Same(t, before, after)
}

func TestResizeRejectsEmptySize(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())

	var ce *ConfigurationError
	assert.ErrorAs(t, p.Resize(0, 600, FormatUnknown), &ce)
	assert.ErrorAs(t, p.Resize(800, -3, FormatUnknown), &ce)
	assert.Empty(t, dev.w.calls)
	assert.True(t, p.Live())
}

func TestResizeRejectsUnsupportedFormat(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	before, _ := p.BackBuffer()

	var ce *ConfigurationError
	require.ErrorAs(t, p.Resize(1024, 768, Format(12345)), &ce)
	assert.Empty(t, dev.w.calls, "nothing is released or resized")
	assert.True(t, p.Live())
	after, err := p.BackBuffer()
	require.NoError(t, err)
	assert.Same(t, before, after)
	assert.Equal(t, FormatR8G8B8A8Unorm, p.Config().Format)
}

func TestResizeFailureIsUnrecoverable(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	dev.chain.resizeErr = codeInvalidCall

	err := p.Resize(1024, 768, FormatUnknown)
	var ne *NativeCallError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, uint32(codeInvalidCall), ne.Code)
	assert.Equal(t, 1, dev.w.live, "only the chain is left")
	assert.False(t, p.Live())

	var ue *UnrecoverableStateError
	_, err = p.BackBuffer()
	assert.ErrorAs(t, err, &ue)
	assert.ErrorAs(t, p.Present(), &ue)
	assert.ErrorAs(t, p.Resize(640, 480, FormatUnknown), &ue)
	assert.ErrorAs(t, p.SetFullscreen(true), &ue)
	_, err = p.Viewport()
	assert.ErrorAs(t, err, &ue)
	assert.NotContains(t, dev.w.calls, "Present(1)")

	require.NoError(t, p.Release())
	assert.Zero(t, dev.w.live)
}

func TestResizeRewrapFailureIsUnrecoverable(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	dev.chain.viewErr = fakeCode(0x8007000E)

	err := p.Resize(1024, 768, FormatUnknown)
	var ne *NativeCallError
	require.ErrorAs(t, err, &ne)

	_, err = p.BackBuffer()
	var ue *UnrecoverableStateError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, ne)
}

func TestPresentInterval(t *testing.T) {
	for _, interval := range []uint32{0, 1, 2, 4} {
		dev := newFakeDevice()
		cfg := windowConfig()
		cfg.PresentInterval = interval
		p := newTestPresenter(t, dev, cfg)

		require.NoError(t, p.Present())
		assert.Equal(t, []string{fmt.Sprintf("Present(%d)", interval)}, dev.w.calls)
	}
}

func TestSetPresentInterval(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())

	require.NoError(t, p.SetPresentInterval(0))
	require.NoError(t, p.Present())
	require.NoError(t, p.SetPresentInterval(2))
	require.NoError(t, p.Present())

	var ce *ConfigurationError
	assert.ErrorAs(t, p.SetPresentInterval(MaxPresentInterval+1), &ce)
	assert.Equal(t, uint32(2), p.Config().PresentInterval)
	assert.Equal(t, []string{"Present(0)", "Present(2)"}, dev.w.calls)
}

func TestPresentDeviceLost(t *testing.T) {
	for _, code := range []fakeCode{codeDeviceReset, codeDeviceRemoved} {
		dev := newFakeDevice()
		p := newTestPresenter(t, dev, windowConfig())
		dev.chain.presentErr = code

		err := p.Present()
		var le *DeviceLostError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, code)
		assert.Zero(t, dev.w.live, "device loss releases everything")
		assert.Equal(t, []string{"view1", "chain"}, dev.w.released)

		assert.ErrorAs(t, p.Present(), &le, "terminal")
		_, err = p.BackBuffer()
		assert.ErrorAs(t, err, &le)
		assert.Equal(t, []string{"Present(1)"}, dev.w.calls, "no implicit recreation")
		require.NoError(t, p.Release())
	}
}

func TestPresentDeviceLostLeavesFullscreen(t *testing.T) {
	for _, stateErr := range []error{nil, codeDeviceRemoved} {
		dev := newFakeDevice()
		p := newTestPresenter(t, dev, windowConfig())
		require.NoError(t, p.SetFullscreen(true))
		dev.w.reset()
		dev.chain.presentErr = codeDeviceRemoved
		dev.chain.setStateErr = stateErr

		var le *DeviceLostError
		require.ErrorAs(t, p.Present(), &le)
		assert.Equal(t, []string{"Present(1)", "SetFullscreenState(false, <nil>)"}, dev.w.calls)
		assert.False(t, p.Fullscreen())
		assert.Zero(t, dev.w.live)
		require.NoError(t, p.Release())
	}
}

func TestPresentNativeFailure(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	dev.chain.presentErr = codeInvalidCall

	var ne *NativeCallError
	require.ErrorAs(t, p.Present(), &ne)
	assert.Equal(t, "present", ne.Op)
	assert.Equal(t, uint32(codeInvalidCall), ne.Code)
	assert.True(t, p.Live())
}

func TestReleaseOrder(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	require.NoError(t, p.Resize(1024, 768, FormatUnknown))
	dev.w.released = nil

	require.NoError(t, p.Release())
	assert.Equal(t, []string{"view2", "chain"}, dev.w.released)
	require.NoError(t, p.Release())
	assert.Zero(t, dev.w.live)

	var ue *UnrecoverableStateError
	assert.ErrorAs(t, p.Present(), &ue)
	assert.ErrorIs(t, p.Present(), ErrReleased)
}

func TestSnapshot(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPresenter(t, dev, windowConfig())
	dev.chain.captureColor = color.RGBA{R: 10, G: 20, B: 30, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, 800, 600))
	require.NoError(t, p.Snapshot(img))
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.RGBAAt(799, 599))

	err := p.Snapshot(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	assert.Error(t, err)
}

func TestSnapshotUnsupported(t *testing.T) {
	dev := newFakeDevice()
	dev.noCapture = true
	p := newTestPresenter(t, dev, windowConfig())

	err := p.Snapshot(image.NewRGBA(image.Rect(0, 0, 800, 600)))
	assert.True(t, errors.Is(err, ErrCaptureUnsupported))
}
