package dat

import (
	"fmt"
)

// Attribute is a logical legacy attribute, after version remapping. The
// numbering is the one used by 8.60 to 9.86 clients, plus a few codes above
// 250 for attributes that only exist in other eras.
type Attribute uint8

const (
	ATTR_GROUND Attribute = iota
	ATTR_GROUND_BORDER
	ATTR_ON_BOTTOM
	ATTR_ON_TOP
	ATTR_CONTAINER
	ATTR_STACKABLE
	ATTR_FORCE_USE
	ATTR_MULTI_USE
	ATTR_WRITABLE
	ATTR_WRITABLE_ONCE
	ATTR_FLUID_CONTAINER
	ATTR_SPLASH
	ATTR_NOT_WALKABLE
	ATTR_NOT_MOVEABLE
	ATTR_BLOCK_PROJECTILE
	ATTR_NOT_PATHABLE
	ATTR_PICKUPABLE
	ATTR_HANGABLE
	ATTR_HOOK_SOUTH
	ATTR_HOOK_EAST
	ATTR_ROTATEABLE
	ATTR_LIGHT
	ATTR_DONT_HIDE
	ATTR_TRANSLUCENT
	ATTR_DISPLACEMENT
	ATTR_ELEVATION
	ATTR_LYING_CORPSE
	ATTR_ANIMATE_ALWAYS
	ATTR_MINIMAP_COLOR
	ATTR_LENS_HELP
	ATTR_FULL_GROUND
	ATTR_LOOK_THROUGH
	ATTR_CLOTH
	ATTR_MARKET
	ATTR_DEFAULT_ACTION
	ATTR_WRAPABLE
	ATTR_UNWRAPABLE
	ATTR_TOP_EFFECT
)

const (
	ATTR_FLOOR_CHANGE      Attribute = 251
	ATTR_NO_MOVE_ANIMATION Attribute = 252
	ATTR_USABLE            Attribute = 253
	ATTR_CHARGEABLE        Attribute = 254

	// ATTR_END terminates an attribute block. It is checked before remapping.
	ATTR_END Attribute = 255
)

func (a Attribute) String() string {
	if h, ok := attributeHandlers[a]; ok {
		return h.name
	}
	if a == ATTR_END {
		return "end"
	}
	return fmt.Sprintf("attribute %d unknown", uint8(a))
}

// versionBand groups client versions that number legacy attributes the same
// way.
type versionBand int

const (
	BAND_1000 versionBand = iota // 10.00 and later: 16 is "no move animation".
	BAND_860                     // 8.60 to 9.86: canonical numbering.
	BAND_780                     // 7.80 to 8.57: 8 is "chargeable".
	BAND_755                     // 7.55 to 7.72: 23 is "floor change".
	BAND_740                     // 7.40 to 7.50: no ground border.
	BAND_710                     // 7.10 to 7.30: like 7.40 without hangables.
	BAND_OLD                     // Before 7.10: no remapping.

	bandCount
)

// bandMinVersions holds the first client version of each band.
var bandMinVersions = [bandCount]ClientVersion{
	BAND_1000: 1000,
	BAND_860:  860,
	BAND_780:  780,
	BAND_755:  755,
	BAND_740:  740,
	BAND_710:  710,
	BAND_OLD:  0,
}

func bandForVersion(v ClientVersion) versionBand {
	for b := versionBand(0); b < bandCount; b++ {
		if v >= bandMinVersions[b] {
			return b
		}
	}
	return BAND_OLD
}

// bandRule describes how one band renumbers raw codes. Codes in
// [shiftFrom, shiftTo] move by shift; explicit codes are then replaced, and
// finally the codes in swap are exchanged with each other.
type bandRule struct {
	shiftFrom, shiftTo uint8
	shift              int
	explicit           map[uint8]Attribute
	swap               [2]Attribute
}

// 7.10 through 7.50 renumber most of the table.
var preBorderExplicit = map[uint8]Attribute{
	16: ATTR_LIGHT,
	17: ATTR_FLOOR_CHANGE,
	18: ATTR_FULL_GROUND,
	19: ATTR_ELEVATION,
	20: ATTR_DISPLACEMENT,
	22: ATTR_MINIMAP_COLOR,
	23: ATTR_ROTATEABLE,
	24: ATTR_LYING_CORPSE,
}

func withExplicit(base map[uint8]Attribute, extra map[uint8]Attribute) map[uint8]Attribute {
	out := make(map[uint8]Attribute, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

var bandRules = [bandCount]bandRule{
	BAND_1000: {
		shiftFrom: 17, shiftTo: 254, shift: -1,
		explicit: map[uint8]Attribute{16: ATTR_NO_MOVE_ANIMATION},
	},
	BAND_860: {},
	BAND_780: {
		shiftFrom: 9, shiftTo: 254, shift: -1,
		explicit: map[uint8]Attribute{8: ATTR_CHARGEABLE},
	},
	BAND_755: {
		explicit: map[uint8]Attribute{23: ATTR_FLOOR_CHANGE},
	},
	BAND_740: {
		shiftFrom: 1, shiftTo: 15, shift: 1,
		explicit: withExplicit(preBorderExplicit, map[uint8]Attribute{
			25: ATTR_HANGABLE,
			26: ATTR_HOOK_SOUTH,
			27: ATTR_HOOK_EAST,
			28: ATTR_ANIMATE_ALWAYS,
		}),
		swap: [2]Attribute{ATTR_FORCE_USE, ATTR_MULTI_USE},
	},
	BAND_710: {
		shiftFrom: 1, shiftTo: 15, shift: 1,
		explicit: withExplicit(preBorderExplicit, map[uint8]Attribute{
			25: ATTR_ANIMATE_ALWAYS,
			26: ATTR_LENS_HELP,
		}),
		swap: [2]Attribute{ATTR_FORCE_USE, ATTR_MULTI_USE},
	},
	BAND_OLD: {},
}

func (r bandRule) apply(raw uint8) Attribute {
	a := Attribute(raw)
	if r.shift != 0 && raw >= r.shiftFrom && raw <= r.shiftTo {
		a = Attribute(int(raw) + r.shift)
	}
	if e, ok := r.explicit[raw]; ok {
		a = e
	}
	if r.swap[0] != r.swap[1] {
		switch a {
		case r.swap[0]:
			a = r.swap[1]
		case r.swap[1]:
			a = r.swap[0]
		}
	}
	return a
}

// remapTables holds, per band, the logical attribute of every raw code.
var remapTables [bandCount][256]Attribute

func init() {
	for b := versionBand(0); b < bandCount; b++ {
		for raw := 0; raw < 256; raw++ {
			remapTables[b][raw] = bandRules[b].apply(uint8(raw))
		}
	}
}

// RemapAttribute translates a raw attribute code read from a Tibia.dat made
// for client version v into its logical attribute.
//
// The terminator (0xFF) is not special here; callers check it first.
func RemapAttribute(raw uint8, v ClientVersion) Attribute {
	return remapTables[bandForVersion(v)][raw]
}

// attributeHandler is what decoding a logical attribute does: set a flag and,
// for some attributes, read a payload.
type attributeHandler struct {
	name string
	flag Flags
	read func(t *Thing, r *reader, v ClientVersion) error
}

func readU16Into(dst func(t *Thing) *uint16) func(*Thing, *reader, ClientVersion) error {
	return func(t *Thing, r *reader, _ ClientVersion) error {
		val, err := r.u16()
		if err != nil {
			return err
		}
		*dst(t) = val
		return nil
	}
}

var attributeHandlers = map[Attribute]attributeHandler{
	ATTR_GROUND:           {"ground", FLAG_GROUND, readU16Into(func(t *Thing) *uint16 { return &t.GroundSpeed })},
	ATTR_GROUND_BORDER:    {"ground border", FLAG_GROUND_BORDER, nil},
	ATTR_ON_BOTTOM:        {"on bottom", FLAG_ON_BOTTOM, nil},
	ATTR_ON_TOP:           {"on top", FLAG_ON_TOP, nil},
	ATTR_CONTAINER:        {"container", FLAG_CONTAINER, nil},
	ATTR_STACKABLE:        {"stackable", FLAG_STACKABLE, nil},
	ATTR_FORCE_USE:        {"force use", FLAG_FORCE_USE, nil},
	ATTR_MULTI_USE:        {"multi use", FLAG_MULTI_USE, nil},
	ATTR_WRITABLE:         {"writable", FLAG_WRITABLE, readU16Into(func(t *Thing) *uint16 { return &t.WritableLength })},
	ATTR_WRITABLE_ONCE:    {"writable once", FLAG_WRITABLE_ONCE, readU16Into(func(t *Thing) *uint16 { return &t.WritableOnceLength })},
	ATTR_FLUID_CONTAINER:  {"fluid container", FLAG_FLUID_CONTAINER, nil},
	ATTR_SPLASH:           {"splash", FLAG_SPLASH, nil},
	ATTR_NOT_WALKABLE:     {"not walkable", FLAG_NOT_WALKABLE, nil},
	ATTR_NOT_MOVEABLE:     {"not moveable", FLAG_NOT_MOVEABLE, nil},
	ATTR_BLOCK_PROJECTILE: {"block projectile", FLAG_BLOCK_PROJECTILE, nil},
	ATTR_NOT_PATHABLE:     {"not pathable", FLAG_NOT_PATHABLE, nil},
	ATTR_PICKUPABLE:       {"pickupable", FLAG_PICKUPABLE, nil},
	ATTR_HANGABLE:         {"hangable", FLAG_HANGABLE, nil},
	ATTR_HOOK_SOUTH:       {"hook south", FLAG_HOOK_SOUTH, nil},
	ATTR_HOOK_EAST:        {"hook east", FLAG_HOOK_EAST, nil},
	ATTR_ROTATEABLE:       {"rotateable", FLAG_ROTATEABLE, nil},
	ATTR_LIGHT:            {"light", FLAG_LIGHT, readLight},
	ATTR_DONT_HIDE:        {"don't hide", FLAG_DONT_HIDE, nil},
	ATTR_TRANSLUCENT:      {"translucent", FLAG_TRANSLUCENT, nil},
	ATTR_DISPLACEMENT:     {"displacement", FLAG_DISPLACEMENT, readDisplacement},
	ATTR_ELEVATION:        {"elevation", FLAG_ELEVATION, readU16Into(func(t *Thing) *uint16 { return &t.Elevation })},
	ATTR_LYING_CORPSE:     {"lying corpse", FLAG_LYING_CORPSE, nil},
	ATTR_ANIMATE_ALWAYS:   {"animate always", FLAG_ANIMATE_ALWAYS, nil},
	ATTR_MINIMAP_COLOR:    {"minimap color", FLAG_MINIMAP_COLOR, readU16Into(func(t *Thing) *uint16 { return &t.MinimapColor })},
	ATTR_LENS_HELP:        {"lens help", FLAG_LENS_HELP, readU16Into(func(t *Thing) *uint16 { return &t.LensHelp })},
	ATTR_FULL_GROUND:      {"full ground", FLAG_FULL_GROUND, nil},
	ATTR_LOOK_THROUGH:     {"look through", FLAG_LOOK_THROUGH, nil},
	ATTR_CLOTH:            {"cloth", FLAG_CLOTH, readU16Into(func(t *Thing) *uint16 { return &t.ClothSlot })},
	ATTR_MARKET:           {"market", FLAG_MARKET, readMarket},
	ATTR_DEFAULT_ACTION:   {"default action", FLAG_DEFAULT_ACTION, readU16Into(func(t *Thing) *uint16 { return &t.DefaultAction })},
	ATTR_WRAPABLE:         {"wrapable", FLAG_WRAPABLE, nil},
	ATTR_UNWRAPABLE:       {"unwrapable", FLAG_UNWRAPABLE, nil},
	ATTR_TOP_EFFECT:       {"top effect", FLAG_TOP_EFFECT, nil},

	ATTR_FLOOR_CHANGE:      {"floor change", FLAG_FLOOR_CHANGE, nil},
	ATTR_NO_MOVE_ANIMATION: {"no move animation", FLAG_NO_MOVE_ANIMATION, nil},
	ATTR_USABLE:            {"usable", FLAG_USABLE, nil},
	ATTR_CHARGEABLE:        {"chargeable", FLAG_CHARGEABLE, nil},
}

func readLight(t *Thing, r *reader, _ ClientVersion) error {
	var err error
	if t.Light.Intensity, err = r.u16(); err != nil {
		return err
	}
	t.Light.Color, err = r.u16()
	return err
}

// readDisplacement reads the offset. Before 7.55 it is implied to be 8,8.
func readDisplacement(t *Thing, r *reader, v ClientVersion) error {
	if v < CLIENT_VERSION_755 {
		t.Displacement = Displacement{X: 8, Y: 8}
		return nil
	}
	var err error
	if t.Displacement.X, err = r.u16(); err != nil {
		return err
	}
	t.Displacement.Y, err = r.u16()
	return err
}

func readMarket(t *Thing, r *reader, _ ClientVersion) error {
	m := &MarketData{}
	var err error
	if m.Category, err = r.u16(); err != nil {
		return err
	}
	if m.TradeAs, err = r.u16(); err != nil {
		return err
	}
	if m.ShowAs, err = r.u16(); err != nil {
		return err
	}
	if m.Name, err = r.str(); err != nil {
		return err
	}
	if m.RestrictVocation, err = r.u16(); err != nil {
		return err
	}
	if m.MinimumLevel, err = r.u16(); err != nil {
		return err
	}
	t.Market = m
	return nil
}
