package style

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an optionally set RGB color.
// The zero value is unset and inherits from the base style when overlaid.
type Color struct {
	RGB colorful.Color
	Set bool
}

// Unset is the inherit-from-base color.
var Unset = Color{}

// RGB creates a set color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return Color{
		RGB: colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255},
		Set: true,
	}
}

// ParseColor parses "#rgb" or "#rrggbb". The empty string and "inherit"
// yield Unset.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "inherit") {
		return Unset, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) == 4 {
		// go-colorful only understands the long form.
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Unset, fmt.Errorf("invalid color %q: %w", s, err)
	}
	// Quantize so that equal hex strings intern to the same style.
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}

// RGB255 returns the 8-bit components. Unset colors return zeros.
func (c Color) RGB255() (r, g, b uint8) {
	if !c.Set {
		return 0, 0, 0
	}
	return c.RGB.Clamped().RGB255()
}

// Or returns c if set, otherwise base.
func (c Color) Or(base Color) Color {
	if c.Set {
		return c
	}
	return base
}

// String returns the hex form, or "inherit" for unset colors.
func (c Color) String() string {
	if !c.Set {
		return "inherit"
	}
	return c.RGB.Clamped().Hex()
}
