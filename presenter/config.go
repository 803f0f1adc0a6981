package presenter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TargetKind selects how the buffer chain is bound to the screen.
type TargetKind int

const (
	TargetNone TargetKind = iota
	// TargetWindow is a desktop window (HWND).
	TargetWindow
	// TargetComposition is a composition surface (an object implementing
	// ISwapChainPanelNative).
	TargetComposition
)

func (k TargetKind) String() string {
	switch k {
	case TargetNone:
		return "none"
	case TargetWindow:
		return "window"
	case TargetComposition:
		return "composition"
	}
	return fmt.Sprintf("TargetKind(%d)", int(k))
}

// Target is the native surface a presenter draws to.
type Target struct {
	Kind   TargetKind
	Handle uintptr
}

// WindowTarget returns a Target for a desktop window handle.
func WindowTarget(hwnd uintptr) Target {
	return Target{Kind: TargetWindow, Handle: hwnd}
}

// CompositionTarget returns a Target for a composition surface.
func CompositionTarget(surface uintptr) Target {
	return Target{Kind: TargetComposition, Handle: surface}
}

// Rational is a refresh rate. 0/0 lets the OS choose.
type Rational struct {
	Numerator   uint32 `toml:"numerator"`
	Denominator uint32 `toml:"denominator"`
}

// Usage is a DXGI_USAGE bit set describing how the backbuffers are used.
type Usage uint32

const (
	UsageShaderInput        Usage = 0x10
	UsageRenderTargetOutput Usage = 0x20
	UsageBackBuffer         Usage = 0x40
	UsageShared             Usage = 0x80
	UsageReadOnly           Usage = 0x100
	UsageDiscardOnPresent   Usage = 0x200
	UsageUnorderedAccess    Usage = 0x400
)

// ChainFlags are DXGI_SWAP_CHAIN_FLAG bits passed at creation and preserved
// across resizes.
type ChainFlags uint32

const (
	FlagNonPrerotated        ChainFlags = 0x1
	FlagAllowModeSwitch      ChainFlags = 0x2
	FlagGDICompatible        ChainFlags = 0x4
	FlagFrameLatencyWaitable ChainFlags = 0x40
	FlagAllowTearing         ChainFlags = 0x800
)

// SwapEffect is the DXGI presentation model.
type SwapEffect uint32

const (
	SwapEffectDiscard        SwapEffect = 0
	SwapEffectSequential     SwapEffect = 1
	SwapEffectFlipSequential SwapEffect = 3
	SwapEffectFlipDiscard    SwapEffect = 4
)

var swapEffectNames = map[SwapEffect]string{
	SwapEffectDiscard:        "discard",
	SwapEffectSequential:     "sequential",
	SwapEffectFlipSequential: "flip-sequential",
	SwapEffectFlipDiscard:    "flip-discard",
}

func (e SwapEffect) String() string {
	if s, ok := swapEffectNames[e]; ok {
		return s
	}
	return fmt.Sprintf("SwapEffect(%d)", uint32(e))
}

// Flip reports whether e is a flip-model effect.
func (e SwapEffect) Flip() bool {
	return e == SwapEffectFlipSequential || e == SwapEffectFlipDiscard
}

// BufferCount is the number of buffers a chain with this effect is created
// with.
func (e SwapEffect) BufferCount() int {
	if e.Flip() {
		return 2
	}
	return 1
}

func (e SwapEffect) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *SwapEffect) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for v, n := range swapEffectNames {
		if n == name {
			*e = v
			return nil
		}
	}
	return fmt.Errorf("unknown swap effect %q", string(b))
}

// MaxPresentInterval is the largest vblank count DXGI accepts.
const MaxPresentInterval = 4

// Config describes the buffer chain a presenter creates.
// Target is never read from files.
type Config struct {
	Target          Target     `toml:"-"`
	Width           int        `toml:"width"`
	Height          int        `toml:"height"`
	Format          Format     `toml:"format"`
	RefreshRate     Rational   `toml:"refresh_rate"`
	SampleCount     uint32     `toml:"sample_count"`
	SampleQuality   uint32     `toml:"sample_quality"`
	Usage           Usage      `toml:"usage"`
	Fullscreen      bool       `toml:"fullscreen"`
	SwapEffect      SwapEffect `toml:"swap_effect"`
	Flags           ChainFlags `toml:"flags"`
	PresentInterval uint32     `toml:"present_interval"`
}

// DefaultConfig returns a windowed, vsynced, single-sampled RGBA8 chain
// with sizes taken from the target.
func DefaultConfig() Config {
	return Config{
		Format:          defaultBackBufferFormat,
		SampleCount:     1,
		Usage:           UsageRenderTargetOutput,
		SwapEffect:      SwapEffectDiscard,
		Flags:           FlagAllowModeSwitch,
		PresentInterval: 1,
	}
}

// ParseConfig decodes a TOML document on top of DefaultConfig.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode presenter config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal encodes the file-backed part of c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// normalize fills zero values that have an obvious default.
func (c *Config) normalize() {
	if c.Format == FormatUnknown {
		c.Format = defaultBackBufferFormat
	}
	if c.SampleCount == 0 {
		c.SampleCount = 1
	}
	if c.Usage == 0 {
		c.Usage = UsageRenderTargetOutput
	}
}

// validate checks a config whose size has been resolved.
func (c *Config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return configErr("backbuffer size %dx%d is not positive", c.Width, c.Height)
	case c.SwapEffect.Flip() && c.SampleCount > 1:
		return configErr("flip-model chains cannot be multisampled (sample count %d)", c.SampleCount)
	case c.PresentInterval > MaxPresentInterval:
		return configErr("present interval %d exceeds %d", c.PresentInterval, MaxPresentInterval)
	case c.RefreshRate.Numerator != 0 && c.RefreshRate.Denominator == 0:
		return configErr("refresh rate %d/0 has no denominator", c.RefreshRate.Numerator)
	case !c.Format.Supported():
		return configErr("unsupported pixel format %v", c.Format)
	}
	if _, ok := swapEffectNames[c.SwapEffect]; !ok {
		return configErr("unsupported swap effect %v", c.SwapEffect)
	}
	return nil
}
