package things

import (
	"image"
	"image/color"
	"math"

	"badc0de.net/pkg/go-tibia-things/dat"
)

// lightOverlay is the glow of a single light around center, computed per
// pixel on access.
type lightOverlay struct {
	light  dat.LightInfo
	center image.Point
	bounds image.Rectangle
}

func (*lightOverlay) ColorModel() color.Model {
	return color.RGBAModel
}

func (o *lightOverlay) Bounds() image.Rectangle {
	return o.bounds
}

func (o *lightOverlay) At(x, y int) color.Color {
	radius := float64(o.light.Intensity) * 16
	if radius == 0 || !(image.Point{x, y}.In(o.bounds)) {
		return color.RGBA{}
	}

	dX := float64(o.center.X - x)
	dY := float64(o.center.Y - y)
	d := math.Sqrt(dX*dX+dY*dY) + 32

	// Full strength within the radius, falling off quadratically beyond it.
	d2 := math.Max(d-radius, 0)
	denominator := d2/radius + 1.0
	influence := math.Min(1.0/(denominator*denominator), 1)

	r, g, b, _ := dat.DatasetColor(uint8(o.light.Color)).RGBA()
	return color.RGBA{
		R: uint8(influence * float64(r>>8)),
		G: uint8(influence * float64(g>>8)),
		B: uint8(influence * float64(b>>8)),
		A: uint8(255 * influence),
	}
}

// LightPreview returns an image, tiles sprites wide and high, of the light the
// thing emits as seen around it. It returns nil for things that emit none.
func (th *Thing) LightPreview(tiles int) image.Image {
	if !th.dataset.Flags.Has(dat.FLAG_LIGHT) || th.dataset.Light.Intensity == 0 || tiles <= 0 {
		return nil
	}
	size := tiles * spriteSize
	return &lightOverlay{
		light:  th.dataset.Light,
		center: image.Pt(size/2, size/2),
		bounds: image.Rect(0, 0, size, size),
	}
}
