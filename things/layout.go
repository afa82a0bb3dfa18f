package things

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/golang/glog"

	"badc0de.net/pkg/go-tibia-things/dat"
)

// Default phase durations for things without per-phase timing.
const (
	defaultPhaseDuration       = 500 * time.Millisecond
	defaultEffectPhaseDuration = 75 * time.Millisecond
)

// SpriteColor returns the color a sprite id is drawn with in layouts. Sprite
// 0 is transparent.
func SpriteColor(id uint32) color.Color {
	if id == 0 {
		return color.Transparent
	}
	return dat.DatasetColor(uint8(id % 216))
}

// LayoutFrame draws the sprite table of one pattern and phase of a frame
// group, each sprite a tile-sized square in its SpriteColor. Layers are drawn
// over each other. Tiles are placed right to left and bottom to top, the way
// the client draws things larger than one tile.
//
// Pattern and phase indices wrap around. It returns nil for an empty group or
// negative indices.
func (th *Thing) LayoutFrame(kind dat.FrameGroupKind, x, y, z, phase, tile int) image.Image {
	fg := th.dataset.FrameGroup(kind)
	if fg.Width == 0 || fg.Height == 0 || fg.PatternX == 0 || fg.PatternY == 0 || fg.PatternZ == 0 || fg.Phases == 0 || tile <= 0 ||
		x < 0 || y < 0 || z < 0 || phase < 0 {
		return nil
	}
	w, h := int(fg.Width), int(fg.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w*tile, h*tile))
	glog.V(3).Infof("layout of %s %s group: %dx%d tiles", th.dataset, kind, w, h)

	x %= int(fg.PatternX)
	y %= int(fg.PatternY)
	z %= int(fg.PatternZ)
	phase %= int(fg.Phases)

	for l := 0; l < int(fg.Layers); l++ {
		for ty := 0; ty < h; ty++ {
			for tx := 0; tx < w; tx++ {
				spr := fg.Sprite(tx, ty, l, x, y, z, phase)
				if spr == 0 {
					continue
				}
				r := image.Rect(
					(w-tx-1)*tile, (h-ty-1)*tile,
					(w-tx)*tile, (h-ty)*tile)
				draw.Draw(img, r, &image.Uniform{SpriteColor(spr)}, image.Point{}, draw.Over)
			}
		}
	}
	return img
}

// LayoutAnimation draws every phase of a pattern with LayoutFrame and returns
// the frames along with how long each is shown.
func (th *Thing) LayoutAnimation(kind dat.FrameGroupKind, x, y, z, tile int) ([]image.Image, []time.Duration) {
	fg := th.dataset.FrameGroup(kind)
	anim := th.dataset.Animation(kind)

	var frames []image.Image
	var delays []time.Duration
	for p := 0; p < int(fg.Phases); p++ {
		img := th.LayoutFrame(kind, x, y, z, p, tile)
		if img == nil {
			return nil, nil
		}
		frames = append(frames, img)
		delays = append(delays, th.phaseDuration(anim, p))
	}
	return frames, delays
}

func (th *Thing) phaseDuration(anim *dat.Animation, phase int) time.Duration {
	if anim != nil && phase < len(anim.Phases) {
		d := anim.Phases[phase]
		return time.Duration((uint64(d.Min)+uint64(d.Max))/2) * time.Millisecond
	}
	if th.dataset.Category == dat.CATEGORY_EFFECT {
		return defaultEffectPhaseDuration
	}
	return defaultPhaseDuration
}
