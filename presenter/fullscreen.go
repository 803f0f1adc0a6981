package presenter

// SetFullscreen switches between windowed and fullscreen-exclusive mode.
//
// Entering fullscreen binds the chain to the device's preferred output, or
// to the platform default when the adapter has no outputs. The call is a
// no-op when the chain is already in the requested state and, for
// fullscreen, already bound to that output. A failing native call is
// returned as NativeCallError and nothing is rolled back; query Fullscreen
// before retrying.
func (p *Presenter) SetFullscreen(requested bool) error {
	if err := p.check("set fullscreen"); err != nil {
		return err
	}

	candidate, err := p.candidateOutput()
	if err != nil {
		return err
	}
	if candidate != nil {
		defer candidate.Release()
	}

	current, sameOutput, err := p.queryFullscreen(candidate)
	if err != nil {
		return err
	}
	p.fullscreen = current
	p.cfg.Fullscreen = current
	if requested == current && (!requested || sameOutput) {
		return nil
	}

	if requested {
		return p.enterFullscreen(candidate)
	}
	return p.leaveFullscreen()
}

// candidateOutput returns the output a fullscreen transition binds to, or
// nil when the adapter reports none.
func (p *Presenter) candidateOutput() (Output, error) {
	if p.dev.OutputCount() == 0 {
		return nil, nil
	}
	out, err := p.dev.Output(p.dev.PreferredOutput())
	if err != nil {
		return nil, nativeErr("get output", err)
	}
	return out, nil
}

// queryFullscreen reads the chain's fullscreen state and compares the bound
// output with candidate. The bound output is released before returning.
func (p *Presenter) queryFullscreen(candidate Output) (fullscreen, sameOutput bool, err error) {
	fullscreen, bound, err := p.chain.FullscreenState()
	if bound != nil {
		defer bound.Release()
	}
	if err != nil {
		return false, false, nativeErr("get fullscreen state", err)
	}
	return fullscreen, sameOutputs(bound, candidate), nil
}

func sameOutputs(a, b Output) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

func (p *Presenter) currentMode() ModeDesc {
	return ModeDesc{
		Width:       p.cfg.Width,
		Height:      p.cfg.Height,
		RefreshRate: p.cfg.RefreshRate,
		Format:      p.cfg.Format,
	}
}

func (p *Presenter) enterFullscreen(out Output) error {
	if err := p.chain.ResizeTarget(p.currentMode()); err != nil {
		return nativeErr("resize target", err)
	}
	if err := p.chain.SetFullscreenState(true, out); err != nil {
		return nativeErr("set fullscreen state", err)
	}
	p.fullscreen = true
	p.cfg.Fullscreen = true
	if err := p.resize(p.cfg.Width, p.cfg.Height, p.cfg.Format); err != nil {
		return err
	}
	id := "default"
	if out != nil {
		id = out.ID()
	}
	p.log.V(1).Info("entered fullscreen", "output", id)
	return nil
}

func (p *Presenter) leaveFullscreen() error {
	if err := p.chain.SetFullscreenState(false, nil); err != nil {
		return nativeErr("set windowed state", err)
	}
	p.fullscreen = false
	p.cfg.Fullscreen = false
	if err := p.resize(p.cfg.Width, p.cfg.Height, p.cfg.Format); err != nil {
		return err
	}
	mode := p.currentMode()
	mode.RefreshRate = Rational{}
	if err := p.chain.ResizeTarget(mode); err != nil {
		return nativeErr("resize target", err)
	}
	p.log.V(1).Info("left fullscreen")
	return nil
}
