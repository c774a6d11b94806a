package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an 8-bit RGB color. Arithmetic saturates, so every channel stays in [0,255].
type Color struct {
	R, G, B uint8
}

// Colors for convenience
var (
	ColorBlack = Color{0, 0, 0}
	ColorWhite = Color{255, 255, 255}
	ColorSky   = Color{135, 206, 235}
	ColorGreen = Color{0, 255, 128}
)

// ErrInvalidHex is returned by ParseHex for malformed input.
var ErrInvalidHex = errors.New("invalid hex color")

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// ParseHex parses "rrggbb" or "#rrggbb".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("%w: %q must be 6 hex digits", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
}

// Add returns the per-channel sum, saturating at 255.
func (c Color) Add(o Color) Color {
	return Color{addSat(c.R, o.R), addSat(c.G, o.G), addSat(c.B, o.B)}
}

// Scale multiplies every channel by s and clamps the result to [0,255].
// NaN scales to 0.
func (c Color) Scale(s float32) Color {
	return Color{scaleSat(c.R, s), scaleSat(c.G, s), scaleSat(c.B, s)}
}

// RGBA converts to the standard library color type with full opacity.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 255}
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}

func scaleSat(v uint8, s float32) uint8 {
	f := float32(v) * s
	switch {
	case f >= 255:
		return 255
	case f > 0:
		return uint8(f)
	default:
		// negative or NaN
		return 0
	}
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float32) Color {
	return Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
	}
}
