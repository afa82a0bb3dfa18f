package dat

import (
	"github.com/bradfitz/iter"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	// maxAttributesPerThing bounds the search for the attribute terminator.
	maxAttributesPerThing = 0xFF
	// maxSpritesPerFrameGroup bounds the sprite table of a single group.
	maxSpritesPerFrameGroup = 4096
)

type header struct {
	Signature                                                uint32
	ItemCount, OutfitCount, EffectCount, DistanceEffectCount uint16
}

// maxID returns the highest id declared for a category.
func (h header) maxID(c Category) uint16 {
	switch c {
	case CATEGORY_ITEM:
		return h.ItemCount
	case CATEGORY_OUTFIT:
		return h.OutfitCount
	case CATEGORY_EFFECT:
		return h.EffectCount
	case CATEGORY_DISTANCE_EFFECT:
		return h.DistanceEffectCount
	}
	return 0
}

// legacyDecoder decodes the things of a Tibia.dat.
type legacyDecoder struct {
	r        *reader
	version  ClientVersion
	features Features
}

// decodeLegacy decodes a whole Tibia.dat held in buf.
func decodeLegacy(buf []byte, version ClientVersion, features Features) (header, [CATEGORY_COUNT][]*Thing, error) {
	var things [CATEGORY_COUNT][]*Thing
	d := &legacyDecoder{r: newReader(buf), version: version, features: features}

	h := header{}
	if err := d.r.read(&h); err != nil {
		return h, things, errors.Wrap(err, "reading header")
	}
	glog.V(1).Infof("dat signature %08x: %d items, %d outfits, %d effects, %d distance effects",
		h.Signature, h.ItemCount, h.OutfitCount, h.EffectCount, h.DistanceEffectCount)

	for c := CATEGORY_ITEM; c < CATEGORY_COUNT; c++ {
		maxID := int(h.maxID(c))
		things[c] = make([]*Thing, maxID+1)
		for id := c.firstID(); id <= maxID; id++ {
			t, err := d.decodeThing(uint16(id), c)
			if err != nil {
				return h, [CATEGORY_COUNT][]*Thing{}, errors.Wrapf(err, "decoding %s %d", c, id)
			}
			things[c][id] = t
		}
	}
	return h, things, nil
}

func (d *legacyDecoder) decodeThing(id uint16, c Category) (*Thing, error) {
	t := newThing(id, c)
	if err := d.decodeAttributes(t); err != nil {
		return nil, err
	}
	if err := d.decodeFrameGroups(t); err != nil {
		return nil, err
	}
	return t, nil
}

// decodeAttributes consumes attribute codes up to and including the
// terminator.
func (d *legacyDecoder) decodeAttributes(t *Thing) error {
	for range iter.N(maxAttributesPerThing) {
		raw, err := d.r.u8()
		if err != nil {
			return err
		}
		if Attribute(raw) == ATTR_END {
			return nil
		}

		attr := RemapAttribute(raw, d.version)
		h, ok := attributeHandlers[attr]
		if !ok {
			glog.V(2).Infof("%s: ignoring unknown attribute %d (raw %d)", t, attr, raw)
			continue
		}
		glog.V(3).Infof("%s: %s", t, h.name)
		t.Flags |= h.flag
		if h.read != nil {
			if err := h.read(t, d.r, d.version); err != nil {
				return errors.Wrapf(err, "reading %s", h.name)
			}
		}
	}
	return ErrMalformedAttributeBlock
}

func (d *legacyDecoder) decodeFrameGroups(t *Thing) error {
	hasFrameGroups := t.Category == CATEGORY_OUTFIT && d.features.Has(FeatureFrameGroups)

	groupCount := uint8(1)
	if hasFrameGroups {
		var err error
		if groupCount, err = d.r.u8(); err != nil {
			return errors.Wrap(err, "reading frame group count")
		}
	}

	lastKind := FRAME_GROUP_DEFAULT
	for range iter.N(int(groupCount)) {
		kind := FRAME_GROUP_DEFAULT
		if hasFrameGroups {
			k, err := d.r.u8()
			if err != nil {
				return errors.Wrap(err, "reading frame group kind")
			}
			kind = FrameGroupKind(k)
			if kind >= FRAME_GROUP_COUNT {
				glog.V(2).Infof("%s: frame group kind %d out of range, using default", t, k)
				kind = FRAME_GROUP_DEFAULT
			}
		}
		if err := d.decodeFrameGroup(&t.frameGroups[kind]); err != nil {
			return errors.Wrapf(err, "%s frame group", kind)
		}
		lastKind = kind
	}

	if t.Category != CATEGORY_OUTFIT {
		return nil
	}
	if !hasFrameGroups {
		t.Flags |= FLAG_NO_MOVE_ANIMATION
	}
	if groupCount == 1 {
		switch lastKind {
		case FRAME_GROUP_MOVING:
			t.duplicateFrameGroup(FRAME_GROUP_MOVING, FRAME_GROUP_IDLE)
		case FRAME_GROUP_IDLE:
			t.duplicateFrameGroup(FRAME_GROUP_IDLE, FRAME_GROUP_MOVING)
		}
	}
	return nil
}

func (d *legacyDecoder) decodeFrameGroup(fg *FrameGroup) error {
	var err error
	if fg.Width, err = d.r.u8(); err != nil {
		return err
	}
	if fg.Height, err = d.r.u8(); err != nil {
		return err
	}
	if fg.Width > 1 || fg.Height > 1 {
		if fg.RealSize, err = d.r.u8(); err != nil {
			return err
		}
	} else {
		fg.RealSize = 32
	}
	if fg.Layers, err = d.r.u8(); err != nil {
		return err
	}
	if fg.PatternX, err = d.r.u8(); err != nil {
		return err
	}
	if fg.PatternY, err = d.r.u8(); err != nil {
		return err
	}
	if d.features.Has(FeaturePatternZ) {
		if fg.PatternZ, err = d.r.u8(); err != nil {
			return err
		}
	} else {
		fg.PatternZ = 1
	}
	if fg.Phases, err = d.r.u8(); err != nil {
		return err
	}

	if fg.Phases > 1 && d.features.Has(FeatureEnhancedAnimations) {
		if fg.animation, err = d.decodeAnimation(fg.Phases); err != nil {
			return errors.Wrap(err, "reading animation")
		}
	}

	// All seven factors are bytes, so this cannot overflow.
	total := int64(fg.Width) * int64(fg.Height) * int64(fg.Layers) *
		int64(fg.PatternX) * int64(fg.PatternY) * int64(fg.PatternZ) * int64(fg.Phases)
	if total > maxSpritesPerFrameGroup {
		return errors.Wrapf(ErrOversizedFrameGroup, "%d sprites", total)
	}

	fg.Sprites = make([]uint32, total)
	for i := range iter.N(int(total)) {
		if d.features.Has(FeatureExtendedSprites) {
			if fg.Sprites[i], err = d.r.u32(); err != nil {
				return err
			}
		} else {
			id, err := d.r.u16()
			if err != nil {
				return err
			}
			fg.Sprites[i] = uint32(id)
		}
	}
	return nil
}

// decodeAnimation reads the animation block that precedes the sprites of a
// multi-phase group.
func (d *legacyDecoder) decodeAnimation(phases uint8) (*Animation, error) {
	a := &Animation{}
	sync, err := d.r.u8()
	if err != nil {
		return nil, err
	}
	a.Synchronized = sync != 0
	if a.LoopCount, err = d.r.i32(); err != nil {
		return nil, err
	}
	start, err := d.r.i8()
	if err != nil {
		return nil, err
	}
	a.StartPhase = int32(start)
	if a.StartPhase < 0 {
		a.StartPhase = ANIMATION_RANDOM_START_PHASE
	}

	a.Phases = make([]PhaseDuration, phases)
	for i := range iter.N(int(phases)) {
		if a.Phases[i].Min, err = d.r.u32(); err != nil {
			return nil, err
		}
		if a.Phases[i].Max, err = d.r.u32(); err != nil {
			return nil, err
		}
	}
	return a, nil
}
