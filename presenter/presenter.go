// Package presenter owns a native buffer chain and the view over its
// backbuffer, and keeps the two consistent across resizes and
// windowed/fullscreen transitions.
//
// A Presenter must be driven by a single goroutine, normally the one that
// owns the rendering context. It does no locking: Resize, SetFullscreen and
// Present must not overlap.
package presenter

import (
	"fmt"
	"image"

	"github.com/go-logr/logr"

	"github.com/kirides/swapchain/tracker"
)

type state int

const (
	stateLive state = iota
	// stateBroken follows a failed resize; no backbuffer exists.
	stateBroken
	// stateLost follows a device reset reported by Present.
	stateLost
	stateReleased
)

// Option configures Create.
type Option func(*options)

type options struct {
	log     logr.Logger
	factory ChainFactory
}

// WithLogger sets the logger for lifecycle events. The default discards
// everything.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithFactory overrides the chain factory. By default the device is used,
// which must then implement ChainFactory.
func WithFactory(f ChainFactory) Option {
	return func(o *options) { o.factory = f }
}

// Presenter owns a buffer chain and its backbuffer view.
type Presenter struct {
	dev     Device
	factory ChainFactory
	log     logr.Logger

	cfg        Config
	fullscreen bool
	viewport   Viewport

	res   tracker.Tracker
	chain Chain
	back  *BackBuffer

	state state
	cause error
}

// Create validates cfg, builds the buffer chain for cfg.Target and wraps
// its buffer 0. A missing or unsupported target yields ConfigurationError
// before any native resource exists. If cfg.Fullscreen is set the chain is
// created windowed and then switched to fullscreen.
func Create(dev Device, cfg Config, opts ...Option) (*Presenter, error) {
	o := options{log: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if dev == nil {
		return nil, configErr("no device")
	}
	factory := o.factory
	if factory == nil {
		f, ok := dev.(ChainFactory)
		if !ok {
			return nil, configErr("device %T cannot create chains and no factory was given", dev)
		}
		factory = f
	}

	strategy := strategyFor(cfg.Target)
	cfg.normalize()
	if err := strategy.prepare(factory, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	wantFullscreen := cfg.Fullscreen
	cfg.Fullscreen = false
	p := &Presenter{
		dev:     dev,
		factory: factory,
		log:     o.log,
		cfg:     cfg,
	}

	chain, err := strategy.createChain(factory, p.chainDesc())
	if err != nil {
		return nil, nativeErr("create chain", err)
	}
	p.chain = tracker.Keep(&p.res, chain)
	if err := p.wrapBackBuffer(); err != nil {
		p.res.TeardownAll()
		return nil, err
	}
	p.log.V(1).Info("created presenter",
		"target", cfg.Target.Kind.String(),
		"width", cfg.Width, "height", cfg.Height,
		"format", cfg.Format.String(),
		"buffers", chain.BufferCount(),
		"swapEffect", cfg.SwapEffect.String())

	if wantFullscreen {
		if err := p.SetFullscreen(true); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

func (p *Presenter) chainDesc() ChainDesc {
	return ChainDesc{
		Width:         p.cfg.Width,
		Height:        p.cfg.Height,
		Format:        p.cfg.Format,
		RefreshRate:   p.cfg.RefreshRate,
		SampleCount:   p.cfg.SampleCount,
		SampleQuality: p.cfg.SampleQuality,
		Usage:         p.cfg.Usage,
		BufferCount:   p.cfg.SwapEffect.BufferCount(),
		SwapEffect:    p.cfg.SwapEffect,
		Flags:         p.cfg.Flags,
		Windowed:      true,
	}
}

// wrapBackBuffer creates the view over buffer 0 for the current size.
func (p *Presenter) wrapBackBuffer() error {
	rt, err := p.chain.RenderTarget(0)
	if err != nil {
		return nativeErr("wrap buffer 0", err)
	}
	p.back = tracker.Keep(&p.res, &BackBuffer{
		target:  rt,
		width:   p.cfg.Width,
		height:  p.cfg.Height,
		format:  p.cfg.Format,
		samples: p.cfg.SampleCount,
	})
	p.viewport = viewportFor(p.back)
	return nil
}

// check returns the error for using the presenter in its current state.
func (p *Presenter) check(op string) error {
	switch p.state {
	case stateBroken:
		return &UnrecoverableStateError{Op: op, Cause: p.cause}
	case stateLost:
		return &DeviceLostError{Err: p.cause}
	case stateReleased:
		return &UnrecoverableStateError{Op: op, Cause: ErrReleased}
	}
	if p.back == nil {
		return &UnrecoverableStateError{Op: op, Cause: ErrBackBufferReleased}
	}
	return nil
}

// BackBuffer returns the current backbuffer view.
func (p *Presenter) BackBuffer() (*BackBuffer, error) {
	if err := p.check("backbuffer"); err != nil {
		return nil, err
	}
	return p.back, nil
}

// Viewport returns the viewport covering the current backbuffer.
func (p *Presenter) Viewport() (Viewport, error) {
	if err := p.check("viewport"); err != nil {
		return Viewport{}, err
	}
	return p.viewport, nil
}

// Config returns the chain description currently in effect.
func (p *Presenter) Config() Config {
	return p.cfg
}

// Fullscreen reports the last known fullscreen state.
func (p *Presenter) Fullscreen() bool {
	return p.fullscreen
}

// Live reports whether the presenter can still be used.
func (p *Presenter) Live() bool {
	return p.check("live") == nil
}

// Present queues the backbuffer for display, waiting for the configured
// number of vblanks. It blocks for the duration of the wait. A reset or
// removed device releases the presenter and returns DeviceLostError.
func (p *Presenter) Present() error {
	if err := p.check("present"); err != nil {
		return err
	}
	err := p.chain.Present(p.cfg.PresentInterval)
	if err == nil {
		return nil
	}
	if deviceLost(err) {
		p.log.V(1).Info("device lost, releasing chain", "err", err.Error())
		if p.fullscreen {
			// Best effort; a removed device usually refuses this too.
			_ = p.chain.SetFullscreenState(false, nil)
			p.fullscreen = false
			p.cfg.Fullscreen = false
		}
		p.teardown()
		p.state, p.cause = stateLost, err
		return &DeviceLostError{Err: err}
	}
	return nativeErr("present", err)
}

// SetPresentInterval changes the vblank count used by Present.
func (p *Presenter) SetPresentInterval(interval uint32) error {
	if err := p.check("set present interval"); err != nil {
		return err
	}
	if interval > MaxPresentInterval {
		return configErr("present interval %d exceeds %d", interval, MaxPresentInterval)
	}
	p.cfg.PresentInterval = interval
	return nil
}

// Resize reallocates the chain buffers. FormatUnknown keeps the current
// format. Equal size and format is a no-op. If the native resize fails the
// presenter is left without a backbuffer and every later call returns
// UnrecoverableStateError.
func (p *Presenter) Resize(width, height int, format Format) error {
	if err := p.check("resize"); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return configErr("backbuffer size %dx%d is not positive", width, height)
	}
	if format == FormatUnknown {
		format = p.cfg.Format
	}
	if !format.Supported() {
		return configErr("unsupported pixel format %v", format)
	}
	if width == p.cfg.Width && height == p.cfg.Height && format == p.cfg.Format {
		return nil
	}
	return p.resize(width, height, format)
}

// resize runs the release, resize, rewrap sequence unconditionally. The view
// must be gone before ResizeBuffers or the call fails inside the driver.
func (p *Presenter) resize(width, height int, format Format) error {
	p.res.Untrack(p.back)
	p.back = nil

	err := p.chain.ResizeBuffers(p.chain.BufferCount(), width, height, format, p.cfg.Flags)
	if err != nil {
		err = nativeErr("resize buffers", err)
		p.state, p.cause = stateBroken, err
		return err
	}
	p.cfg.Width, p.cfg.Height, p.cfg.Format = width, height, format

	if err := p.wrapBackBuffer(); err != nil {
		p.state, p.cause = stateBroken, err
		return err
	}
	p.log.V(1).Info("resized", "width", width, "height", height, "format", format.String())
	return nil
}

// Snapshot copies the current backbuffer into dst, which must match its
// size.
func (p *Presenter) Snapshot(dst *image.RGBA) error {
	if err := p.check("snapshot"); err != nil {
		return err
	}
	c, ok := p.chain.(Capturer)
	if !ok {
		return ErrCaptureUnsupported
	}
	if got, want := dst.Bounds().Size(), p.back.Bounds().Size(); got != want {
		return fmt.Errorf("presenter: snapshot into %v image, backbuffer is %v", got, want)
	}
	if err := c.Capture(dst); err != nil {
		return nativeErr("capture", err)
	}
	return nil
}

// Release leaves fullscreen if needed and releases the backbuffer and the
// chain, in that order. It is safe to call more than once. The returned
// error is from leaving fullscreen; resources are released regardless.
func (p *Presenter) Release() error {
	if p.state == stateReleased {
		return nil
	}
	var err error
	// DXGI refuses to release a chain that is still fullscreen.
	if p.chain != nil && p.fullscreen && p.state != stateLost {
		if e := p.chain.SetFullscreenState(false, nil); e != nil {
			err = nativeErr("leave fullscreen", e)
		}
		p.fullscreen = false
		p.cfg.Fullscreen = false
	}
	p.teardown()
	p.state = stateReleased
	p.log.V(1).Info("released presenter")
	return err
}

func (p *Presenter) teardown() {
	p.res.TeardownAll()
	p.back = nil
	p.chain = nil
}
