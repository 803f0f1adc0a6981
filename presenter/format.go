package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
)

// Format is a backbuffer pixel format. Values match DXGI_FORMAT so they can
// be handed to the native layer unchanged.
type Format uint32

const (
	// FormatUnknown keeps the current format when passed to Resize.
	FormatUnknown           Format = 0
	FormatR16G16B16A16Float Format = 10
	FormatR10G10B10A2Unorm  Format = 24
	FormatR8G8B8A8Unorm     Format = 28
	FormatR8G8B8A8UnormSRGB Format = 29
	FormatB8G8R8A8Unorm     Format = 87
	FormatB8G8R8A8UnormSRGB Format = 91
)

const defaultBackBufferFormat = FormatR8G8B8A8Unorm

var formatNames = map[Format]string{
	FormatUnknown:           "UNKNOWN",
	FormatR16G16B16A16Float: "R16G16B16A16_FLOAT",
	FormatR10G10B10A2Unorm:  "R10G10B10A2_UNORM",
	FormatR8G8B8A8Unorm:     "R8G8B8A8_UNORM",
	FormatR8G8B8A8UnormSRGB: "R8G8B8A8_UNORM_SRGB",
	FormatB8G8R8A8Unorm:     "B8G8R8A8_UNORM",
	FormatB8G8R8A8UnormSRGB: "B8G8R8A8_UNORM_SRGB",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "Format(" + strconv.FormatUint(uint64(f), 10) + ")"
}

// ParseFormat accepts the DXGI name of a format, with or without the
// DXGI_FORMAT_ prefix, case-insensitively.
func ParseFormat(s string) (Format, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "DXGI_FORMAT_")
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown pixel format %q", s)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// BytesPerPixel returns the storage size of one texel.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatR16G16B16A16Float:
		return 8
	case FormatUnknown:
		return 0
	}
	return 4
}

// textureFormats pairs each backbuffer format with its WebGPU counterpart
// in gputypes.
var textureFormats = map[Format]gputypes.TextureFormat{
	FormatR16G16B16A16Float: gputypes.TextureFormatRGBA16Float,
	FormatR10G10B10A2Unorm:  gputypes.TextureFormatRGB10A2Unorm,
	FormatR8G8B8A8Unorm:     gputypes.TextureFormatRGBA8Unorm,
	FormatR8G8B8A8UnormSRGB: gputypes.TextureFormatRGBA8UnormSrgb,
	FormatB8G8R8A8Unorm:     gputypes.TextureFormatBGRA8Unorm,
	FormatB8G8R8A8UnormSRGB: gputypes.TextureFormatBGRA8UnormSrgb,
}

// TextureFormat maps f to the WebGPU texture format vocabulary used by
// gputypes-based pipelines. FormatUnknown and unsupported values map to
// TextureFormatUndefined.
func (f Format) TextureFormat() gputypes.TextureFormat {
	if tf, ok := textureFormats[f]; ok {
		return tf
	}
	return gputypes.TextureFormatUndefined
}

// FormatFromTexture is the inverse of Format.TextureFormat.
func FormatFromTexture(tf gputypes.TextureFormat) Format {
	for f, t := range textureFormats {
		if t == tf {
			return f
		}
	}
	return FormatUnknown
}

// Supported reports whether f is a concrete format a chain can be created
// with.
func (f Format) Supported() bool {
	_, ok := textureFormats[f]
	return ok
}
