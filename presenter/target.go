package presenter

// chainStrategy is the per-target-kind way of building a chain. The set is
// closed: strategyFor is the only constructor.
type chainStrategy interface {
	// prepare validates the target and resolves the config against it
	// without creating native resources.
	prepare(f ChainFactory, cfg *Config) error
	createChain(f ChainFactory, desc ChainDesc) (Chain, error)
}

func strategyFor(t Target) chainStrategy {
	switch t.Kind {
	case TargetWindow:
		return windowStrategy{hwnd: t.Handle}
	case TargetComposition:
		return compositionStrategy{surface: t.Handle}
	}
	return unsupportedStrategy{kind: t.Kind}
}

type windowStrategy struct {
	hwnd uintptr
}

func (s windowStrategy) prepare(f ChainFactory, cfg *Config) error {
	if s.hwnd == 0 {
		return configErr("window target has no handle")
	}
	w, h, err := f.WindowSize(s.hwnd)
	if err != nil {
		return &ConfigurationError{Reason: "invalid window target", Err: err}
	}
	if cfg.Width == 0 {
		cfg.Width = w
	}
	if cfg.Height == 0 {
		cfg.Height = h
	}
	return nil
}

func (s windowStrategy) createChain(f ChainFactory, desc ChainDesc) (Chain, error) {
	return f.CreateWindowChain(s.hwnd, desc)
}

type compositionStrategy struct {
	surface uintptr
}

func (s compositionStrategy) prepare(_ ChainFactory, cfg *Config) error {
	if s.surface == 0 {
		return configErr("composition target has no surface")
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return configErr("composition targets need an explicit size")
	}
	// Composition surfaces only accept flip-model chains.
	if !cfg.SwapEffect.Flip() {
		cfg.SwapEffect = SwapEffectFlipSequential
	}
	return nil
}

func (s compositionStrategy) createChain(f ChainFactory, desc ChainDesc) (Chain, error) {
	return f.CreateCompositionChain(s.surface, desc)
}

type unsupportedStrategy struct {
	kind TargetKind
}

func (s unsupportedStrategy) prepare(ChainFactory, *Config) error {
	return configErr("unsupported target kind %v", s.kind)
}

func (s unsupportedStrategy) createChain(ChainFactory, ChainDesc) (Chain, error) {
	return nil, configErr("unsupported target kind %v", s.kind)
}
