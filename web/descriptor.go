package web

import (
	"bytes"
	"image/png"

	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/things"
)

// Descriptor is the JSON form of a thing.
type Descriptor struct {
	ID       uint16   `json:"id"`
	Category string   `json:"category"`
	Name     string   `json:"name,omitempty"`
	Flags    []string `json:"flags"`

	GroundSpeed        *uint16           `json:"ground_speed,omitempty"`
	WritableLength     *uint16           `json:"writable_length,omitempty"`
	WritableOnceLength *uint16           `json:"writable_once_length,omitempty"`
	Light              *dat.LightInfo    `json:"light,omitempty"`
	Displacement       *dat.Displacement `json:"displacement,omitempty"`
	Elevation          *uint16           `json:"elevation,omitempty"`
	MinimapColor       *uint16           `json:"minimap_color,omitempty"`
	LensHelp           *uint16           `json:"lens_help,omitempty"`
	ClothSlot          *uint16           `json:"cloth_slot,omitempty"`
	DefaultAction      *uint16           `json:"default_action,omitempty"`

	Market      *dat.MarketData   `json:"market,omitempty"`
	NPCSaleData []dat.NPCSaleData `json:"npc_sale_data,omitempty"`

	FrameGroups    []FrameGroupDescriptor `json:"frame_groups"`
	DuplicatedFrom string                 `json:"duplicated_from,omitempty"`

	// Layout is a data URL of the default frame group's first frame.
	Layout string `json:"layout,omitempty"`
}

type FrameGroupDescriptor struct {
	Kind     string `json:"kind"`
	Width    uint8  `json:"width"`
	Height   uint8  `json:"height"`
	RealSize uint8  `json:"real_size"`
	Layers   uint8  `json:"layers"`
	PatternX uint8  `json:"pattern_x"`
	PatternY uint8  `json:"pattern_y"`
	PatternZ uint8  `json:"pattern_z"`
	Phases   uint8  `json:"phases"`

	Sprites []uint32 `json:"sprites"`

	Animation           *AnimationDescriptor `json:"animation,omitempty"`
	AnimationSharedWith string               `json:"animation_shared_with,omitempty"`
}

type AnimationDescriptor struct {
	StartPhase   int32               `json:"start_phase"`
	Synchronized bool                `json:"synchronized"`
	LoopCount    int32               `json:"loop_count"`
	Phases       []dat.PhaseDuration `json:"phases"`
}

func flagNames(f dat.Flags) []string {
	out := []string{}
	for bit := dat.FLAG_GROUND; bit < dat.FLAG_LAST; bit <<= 1 {
		if f.Has(bit) {
			out = append(out, bit.String())
		}
	}
	return out
}

func optional(t *dat.Thing, f dat.Flags, v uint16) *uint16 {
	if !t.Flags.Has(f) {
		return nil
	}
	return &v
}

func newDescriptor(th *things.Thing, layoutTile int) (*Descriptor, error) {
	t := th.Descriptor()
	d := &Descriptor{
		ID:       t.ID,
		Category: t.Category.String(),
		Name:     t.DisplayName(),
		Flags:    flagNames(t.Flags),

		GroundSpeed:        optional(t, dat.FLAG_GROUND, t.GroundSpeed),
		WritableLength:     optional(t, dat.FLAG_WRITABLE, t.WritableLength),
		WritableOnceLength: optional(t, dat.FLAG_WRITABLE_ONCE, t.WritableOnceLength),
		Elevation:          optional(t, dat.FLAG_ELEVATION, t.Elevation),
		MinimapColor:       optional(t, dat.FLAG_MINIMAP_COLOR, t.MinimapColor),
		LensHelp:           optional(t, dat.FLAG_LENS_HELP, t.LensHelp),
		ClothSlot:          optional(t, dat.FLAG_CLOTH, t.ClothSlot),
		DefaultAction:      optional(t, dat.FLAG_DEFAULT_ACTION, t.DefaultAction),

		Market:      t.Market,
		NPCSaleData: t.NPCSaleData,
	}
	if t.Flags.Has(dat.FLAG_LIGHT) {
		l := t.Light
		d.Light = &l
	}
	if t.Flags.Has(dat.FLAG_DISPLACEMENT) {
		disp := t.Displacement
		d.Displacement = &disp
	}
	if from, ok := t.DuplicatedFrom(); ok {
		d.DuplicatedFrom = from.String()
	}

	d.FrameGroups = []FrameGroupDescriptor{}
	for k := dat.FRAME_GROUP_DEFAULT; k < dat.FRAME_GROUP_COUNT; k++ {
		fg := t.FrameGroup(k)
		if fg.SpriteCount() == 0 {
			continue
		}
		fgd := FrameGroupDescriptor{
			Kind:     k.String(),
			Width:    fg.Width,
			Height:   fg.Height,
			RealSize: fg.RealSize,
			Layers:   fg.Layers,
			PatternX: fg.PatternX,
			PatternY: fg.PatternY,
			PatternZ: fg.PatternZ,
			Phases:   fg.Phases,
			Sprites:  fg.Sprites,
		}
		if from, ok := fg.SharesAnimation(); ok {
			fgd.AnimationSharedWith = from.String()
		} else if a := t.Animation(k); a != nil {
			fgd.Animation = &AnimationDescriptor{
				StartPhase:   a.StartPhase,
				Synchronized: a.Synchronized,
				LoopCount:    a.LoopCount,
				Phases:       a.Phases,
			}
		}
		d.FrameGroups = append(d.FrameGroups, fgd)
	}

	if img := th.LayoutFrame(dat.FRAME_GROUP_DEFAULT, 0, 0, 0, 0, layoutTile); img != nil {
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
		byt, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
		if err != nil {
			return nil, err
		}
		d.Layout = string(byt)
	}
	return d, nil
}
