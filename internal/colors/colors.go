// Package colors holds the fixed LED color palette shared by the footswitch
// LEDs and the display, plus the brightness math for off-state rendering.
package colors

import "strings"

// Color is a named palette color. Configuration files refer to colors by
// these names only; anything else resolves to Default.
type Color string

const (
	Red     Color = "red"
	Green   Color = "green"
	Blue    Color = "blue"
	Yellow  Color = "yellow"
	Cyan    Color = "cyan"
	Magenta Color = "magenta"
	Orange  Color = "orange"
	Purple  Color = "purple"
	White   Color = "white"
	Off     Color = "off"
)

// Default is used whenever a configuration names no color or an
// unrecognized one.
const Default = White

// DimFactor is the brightness applied to a control's color while it is
// logically off (off_mode "dim").
const DimFactor = 0.15

// RGB is an 8-bit-per-channel color as pushed to the pixel strip.
type RGB struct {
	R, G, B uint8
}

var palette = map[Color]RGB{
	Red:     {255, 0, 0},
	Green:   {0, 255, 0},
	Blue:    {0, 0, 255},
	Yellow:  {255, 255, 0},
	Cyan:    {0, 255, 255},
	Magenta: {255, 0, 255},
	Orange:  {255, 128, 0},
	Purple:  {128, 0, 255},
	White:   {255, 255, 255},
	Off:     {0, 0, 0},
}

// Parse maps a raw color name to a palette color, case-insensitively.
// Unrecognized names fall back to Default.
func Parse(name string) Color {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := palette[c]; ok {
		return c
	}
	return Default
}

// Known reports whether name is a palette color name.
func Known(name string) bool {
	_, ok := palette[Color(strings.ToLower(strings.TrimSpace(name)))]
	return ok
}

// Names returns the palette names in a stable order, for help output and
// editor pickers.
func Names() []Color {
	return []Color{Red, Green, Blue, Yellow, Cyan, Magenta, Orange, Purple, White, Off}
}

// RGB returns the palette value for c. Colors produced by Parse always hit
// the palette; anything constructed by hand reads as Default.
func (c Color) RGB() RGB {
	if v, ok := palette[c]; ok {
		return v
	}
	return palette[Default]
}

// Hex packs v into a 0xRRGGBB integer for the display driver.
func (v RGB) Hex() uint32 {
	return uint32(v.R)<<16 | uint32(v.G)<<8 | uint32(v.B)
}

// Dim scales v by factor, truncating each channel toward zero.
func Dim(v RGB, factor float64) RGB {
	return RGB{
		R: uint8(float64(v.R) * factor),
		G: uint8(float64(v.G) * factor),
		B: uint8(float64(v.B) * factor),
	}
}

// OffState returns the LED color for a control that is logically off:
// fully dark when offMode is "off", the dimmed base color otherwise.
func OffState(base Color, offMode string) RGB {
	if offMode == "off" {
		return RGB{}
	}
	return Dim(base.RGB(), DimFactor)
}

// LabelOffState returns the display label color for a control that is
// logically off. Labels stay visible regardless of offMode, so this is
// always the dimmed base color.
func LabelOffState(base Color) RGB {
	return Dim(base.RGB(), DimFactor)
}
