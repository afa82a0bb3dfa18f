package dat

import (
	"image/color"
)

// DatasetColor is an 8-bit color as used for minimap colors: an index into a
// 6x6x6 color cube. Indices from 216 up are black.
type DatasetColor uint8

// RGBA implements color.Color.
func (c DatasetColor) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA returns the color as an 8-bit per channel color.
func (c DatasetColor) NRGBA() color.NRGBA {
	if c >= 216 {
		return color.NRGBA{A: 0xFF}
	}
	return color.NRGBA{
		R: uint8(c/36) % 6 * 51,
		G: uint8(c/6) % 6 * 51,
		B: uint8(c) % 6 * 51,
		A: 0xFF,
	}
}
