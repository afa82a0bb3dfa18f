package dat

import (
	"context"
	"runtime"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the top-level Appearances message.
const (
	appearancesObject  protowire.Number = 1
	appearancesOutfit  protowire.Number = 2
	appearancesEffect  protowire.Number = 3
	appearancesMissile protowire.Number = 4
)

// Field numbers of Appearance.
const (
	appearanceID          protowire.Number = 1
	appearanceFrameGroup  protowire.Number = 2
	appearanceFlags       protowire.Number = 3
	appearanceName        protowire.Number = 4
	appearanceDescription protowire.Number = 5
)

// Field numbers of FrameGroup, SpriteInfo and Box.
const (
	frameGroupFixedGroup protowire.Number = 1
	frameGroupID         protowire.Number = 2
	frameGroupSpriteInfo protowire.Number = 3

	spriteInfoPatternWidth   protowire.Number = 1
	spriteInfoPatternHeight  protowire.Number = 2
	spriteInfoPatternDepth   protowire.Number = 3
	spriteInfoLayers         protowire.Number = 4
	spriteInfoSpriteID       protowire.Number = 5
	spriteInfoAnimation      protowire.Number = 6
	spriteInfoBoundingSquare protowire.Number = 7
	spriteInfoIsOpaque       protowire.Number = 8
	spriteInfoBoundingBoxes  protowire.Number = 9

	boundingBoxX      protowire.Number = 1
	boundingBoxY      protowire.Number = 2
	boundingBoxWidth  protowire.Number = 3
	boundingBoxHeight protowire.Number = 4
)

// Field numbers of SpriteAnimation and SpritePhase.
const (
	animationDefaultStartPhase protowire.Number = 1
	animationSynchronized      protowire.Number = 2
	animationRandomStartPhase  protowire.Number = 3
	animationLoopType          protowire.Number = 4
	animationLoopCount         protowire.Number = 5
	animationSpritePhase       protowire.Number = 6

	phaseDurationMin protowire.Number = 1
	phaseDurationMax protowire.Number = 2
)

// Loop types of SpriteAnimation.
const (
	loopTypePingPong = -1
	loopTypeInfinite = 0
	loopTypeCounted  = 1
)

// Field numbers of AppearanceFlags that are not a plain flag or a scalar
// message.
const (
	flagsMarket      protowire.Number = 36
	flagsNPCSaleData protowire.Number = 40
)

// appearanceBoolFlags maps AppearanceFlags fields that are mere booleans to
// the flags they set.
var appearanceBoolFlags = map[protowire.Number]Flags{
	2:  FLAG_GROUND_BORDER, // clip
	3:  FLAG_ON_BOTTOM,
	4:  FLAG_ON_TOP,
	5:  FLAG_CONTAINER,
	6:  FLAG_STACKABLE, // cumulative
	7:  FLAG_USABLE,
	8:  FLAG_FORCE_USE,
	9:  FLAG_MULTI_USE,
	12: FLAG_SPLASH,           // liquidpool
	13: FLAG_NOT_WALKABLE,     // unpass
	14: FLAG_NOT_MOVEABLE,     // unmove
	15: FLAG_BLOCK_PROJECTILE, // unsight
	16: FLAG_NOT_PATHABLE,     // avoid
	17: FLAG_NO_MOVE_ANIMATION,
	18: FLAG_PICKUPABLE,      // take
	19: FLAG_FLUID_CONTAINER, // liquidcontainer
	20: FLAG_HANGABLE,
	22: FLAG_ROTATEABLE,
	24: FLAG_DONT_HIDE,
	25: FLAG_TRANSLUCENT,
	28: FLAG_LYING_CORPSE, // lying_object
	29: FLAG_ANIMATE_ALWAYS,
	32: FLAG_FULL_GROUND,  // fullbank
	33: FLAG_LOOK_THROUGH, // ignore_look
	37: FLAG_WRAPABLE,
	38: FLAG_UNWRAPABLE,
	39: FLAG_TOP_EFFECT,
	42: FLAG_CONTAINER | FLAG_CORPSE,
	43: FLAG_CONTAINER | FLAG_PLAYER_CORPSE,
}

// Hook directions.
const (
	hookSouth = 1
	hookEast  = 2
)

// flagMessage is an AppearanceFlags field holding a small message of
// varints. Its presence sets flag (if any); its fields fill in scalars.
type flagMessage struct {
	flag   Flags
	fields scalarFields
}

var appearanceFlagMessages = map[protowire.Number]flagMessage{
	1: {FLAG_GROUND, scalarFields{ // bank
		1: func(t *Thing, v uint64) { t.GroundSpeed = uint16(v) }, // waypoints
	}},
	10: {FLAG_WRITABLE, scalarFields{
		1: func(t *Thing, v uint64) { t.WritableLength = uint16(v) },
	}},
	11: {FLAG_WRITABLE_ONCE, scalarFields{
		1: func(t *Thing, v uint64) { t.WritableOnceLength = uint16(v) },
	}},
	21: {0, scalarFields{ // hook
		1: func(t *Thing, v uint64) {
			switch v {
			case hookSouth:
				t.Flags |= FLAG_HOOK_SOUTH
			case hookEast:
				t.Flags |= FLAG_HOOK_EAST
			}
		},
	}},
	23: {FLAG_LIGHT, scalarFields{
		1: func(t *Thing, v uint64) { t.Light.Intensity = uint16(v) },
		2: func(t *Thing, v uint64) { t.Light.Color = uint16(v) },
	}},
	26: {FLAG_DISPLACEMENT, scalarFields{ // shift
		1: func(t *Thing, v uint64) { t.Displacement.X = uint16(v) },
		2: func(t *Thing, v uint64) { t.Displacement.Y = uint16(v) },
	}},
	27: {FLAG_ELEVATION, scalarFields{ // height
		1: func(t *Thing, v uint64) { t.Elevation = uint16(v) },
	}},
	30: {FLAG_MINIMAP_COLOR, scalarFields{ // automap
		1: func(t *Thing, v uint64) { t.MinimapColor = uint16(v) },
	}},
	31: {FLAG_LENS_HELP, scalarFields{
		1: func(t *Thing, v uint64) { t.LensHelp = uint16(v) },
	}},
	34: {FLAG_CLOTH, scalarFields{ // clothes
		1: func(t *Thing, v uint64) { t.ClothSlot = uint16(v) },
	}},
	35: {FLAG_DEFAULT_ACTION, scalarFields{
		1: func(t *Thing, v uint64) { t.DefaultAction = uint16(v) },
	}},
	41: {0, scalarFields{ // changedtoexpire
		1: func(t *Thing, v uint64) { t.FormerObjectTypeID = uint32(v) },
	}},
	44: {0, scalarFields{ // cyclopediaitem
		1: func(t *Thing, v uint64) { t.CyclopediaType = uint32(v) },
	}},
}

// rawRecord is one top-level appearance, not yet decoded.
type rawRecord struct {
	category Category
	payload  []byte
}

// frameRecords splits an appearances file into its top-level records.
//
// An unknown top-level field ends the stream. A record that claims more bytes
// than are left is an error.
func frameRecords(buf []byte) ([]rawRecord, error) {
	var records []rawRecord
	m := message{buf: buf}
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			glog.V(1).Infof("appearances: stopping at malformed tag: %v", err)
			break
		}
		var c Category
		switch num {
		case appearancesObject:
			c = CATEGORY_ITEM
		case appearancesOutfit:
			c = CATEGORY_OUTFIT
		case appearancesEffect:
			c = CATEGORY_EFFECT
		case appearancesMissile:
			c = CATEGORY_DISTANCE_EFFECT
		default:
			glog.V(1).Infof("appearances: stopping at top-level field %d", num)
			return records, nil
		}
		if typ != protowire.BytesType {
			glog.V(1).Infof("appearances: stopping at %s record with wire type %d", c, typ)
			return records, nil
		}
		payload, n := protowire.ConsumeBytes(m.buf)
		if n < 0 {
			return nil, errors.Wrapf(ErrTruncated, "%s record %d: %v", c, len(records), protowire.ParseError(n))
		}
		m.buf = m.buf[n:]
		records = append(records, rawRecord{category: c, payload: payload})
	}
	return records, nil
}

// decodeAppearances decodes a whole appearances file held in buf.
//
// Records are decoded concurrently, each into its own slot, and then
// compacted into dense per-category slices indexed by id. Ids need not be
// ascending nor contiguous; for duplicates, the last record wins.
func decodeAppearances(buf []byte) ([CATEGORY_COUNT][]*Thing, error) {
	var things [CATEGORY_COUNT][]*Thing

	records, err := frameRecords(buf)
	if err != nil {
		return things, err
	}

	decoded := make([]*Thing, len(records))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range records {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := decodeAppearance(records[i].category, message{buf: records[i].payload})
			if err != nil {
				return errors.Wrapf(err, "%s record %d", records[i].category, i)
			}
			decoded[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return things, err
	}

	var maxIDs [CATEGORY_COUNT]uint16
	for _, t := range decoded {
		if t != nil && t.ID > maxIDs[t.Category] {
			maxIDs[t.Category] = t.ID
		}
	}
	for c := CATEGORY_ITEM; c < CATEGORY_COUNT; c++ {
		if maxIDs[c] > 0 {
			things[c] = make([]*Thing, int(maxIDs[c])+1)
		}
	}
	for _, t := range decoded {
		if t != nil {
			things[t.Category][t.ID] = t
		}
	}
	return things, nil
}

// decodeAppearance decodes a single Appearance. It returns nil, without
// error, for records lacking an id. Only an oversized frame group is an
// error; other problems stop decoding of the affected message.
func decodeAppearance(c Category, m message) (*Thing, error) {
	t := newThing(0, c)
	if err := decodeAppearanceFields(t, m); err != nil {
		return nil, err
	}
	if t.ID == 0 {
		glog.V(2).Infof("appearances: skipping %s record without id", c)
		return nil, nil
	}

	if c == CATEGORY_OUTFIT {
		idle, moving := &t.frameGroups[FRAME_GROUP_IDLE], &t.frameGroups[FRAME_GROUP_MOVING]
		switch {
		case len(moving.Sprites) > 0 && len(idle.Sprites) == 0:
			t.duplicateFrameGroup(FRAME_GROUP_MOVING, FRAME_GROUP_IDLE)
		case len(idle.Sprites) > 0 && len(moving.Sprites) == 0:
			t.duplicateFrameGroup(FRAME_GROUP_IDLE, FRAME_GROUP_MOVING)
		}
	}
	return t, nil
}

func decodeAppearanceFields(t *Thing, m message) error {
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "appearance", err)
			return nil
		}
		switch num {
		case appearanceID:
			v, err := m.varint(typ)
			if err != nil {
				stopMessage(t, "appearance", err)
				return nil
			}
			if v > 0xFFFF {
				glog.V(2).Infof("appearances: %s id %d out of range", t.Category, v)
				v = 0
			}
			t.ID = uint16(v)
		case appearanceFrameGroup:
			sub, err := m.sub(typ)
			if err != nil {
				stopMessage(t, "appearance", err)
				return nil
			}
			if err := decodeFrameGroupMessage(t, sub); err != nil {
				return err
			}
		case appearanceFlags:
			sub, err := m.sub(typ)
			if err != nil {
				stopMessage(t, "appearance", err)
				return nil
			}
			decodeAppearanceFlags(t, sub)
		case appearanceName:
			if t.Name, err = m.str(typ); err != nil {
				stopMessage(t, "appearance", err)
				return nil
			}
		case appearanceDescription:
			if _, err := m.bytes(typ); err != nil {
				stopMessage(t, "appearance", err)
				return nil
			}
		default:
			stopMessage(t, "appearance", unknownField(num, typ))
			return nil
		}
	}
	return nil
}

func decodeFrameGroupMessage(t *Thing, m message) error {
	fg := FrameGroup{
		Width:    1,
		Height:   1,
		RealSize: 32,
		Layers:   1,
		PatternX: 1,
		PatternY: 1,
		PatternZ: 1,
		Phases:   1,
	}
	kind := FRAME_GROUP_DEFAULT

walk:
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "frame group", err)
			break
		}
		switch num {
		case frameGroupFixedGroup:
			v, err := m.varint(typ)
			if err != nil {
				stopMessage(t, "frame group", err)
				break walk
			}
			kind = FrameGroupKind(v)
			if v >= uint64(FRAME_GROUP_COUNT) {
				kind = FRAME_GROUP_DEFAULT
			}
		case frameGroupID:
			v, err := m.varint(typ)
			if err != nil {
				stopMessage(t, "frame group", err)
				break walk
			}
			fg.ID = uint32(v)
		case frameGroupSpriteInfo:
			sub, err := m.sub(typ)
			if err != nil {
				stopMessage(t, "frame group", err)
				break walk
			}
			if err := decodeSpriteInfo(t, &fg, sub); err != nil {
				return err
			}
		default:
			stopMessage(t, "frame group", unknownField(num, typ))
			break walk
		}
	}

	if fg.Phases <= 1 {
		fg.animation = nil
	}
	t.frameGroups[kind] = fg
	return nil
}

func decodeSpriteInfo(t *Thing, fg *FrameGroup, m message) error {
	patterns := scalarFields{
		spriteInfoPatternWidth:   func(_ *Thing, v uint64) { fg.PatternX = uint8(v) },
		spriteInfoPatternHeight:  func(_ *Thing, v uint64) { fg.PatternY = uint8(v) },
		spriteInfoPatternDepth:   func(_ *Thing, v uint64) { fg.PatternZ = uint8(v) },
		spriteInfoLayers:         func(_ *Thing, v uint64) { fg.Layers = uint8(v) },
		spriteInfoBoundingSquare: func(*Thing, uint64) {},
		spriteInfoIsOpaque:       func(*Thing, uint64) {},
	}
	addSprite := func(v uint64) error {
		if len(fg.Sprites) >= maxSpritesPerFrameGroup {
			return errors.Wrapf(ErrOversizedFrameGroup, "%s: more than %d sprites", t, maxSpritesPerFrameGroup)
		}
		fg.Sprites = append(fg.Sprites, uint32(v))
		return nil
	}

	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "sprite info", err)
			return nil
		}
		if set, ok := patterns[num]; ok {
			v, err := m.varint(typ)
			if err != nil {
				stopMessage(t, "sprite info", err)
				return nil
			}
			set(t, v)
			continue
		}
		switch num {
		case spriteInfoSpriteID:
			if err := m.repeatedVarint(num, typ, addSprite); err != nil {
				if errors.Cause(err) == ErrOversizedFrameGroup {
					return err
				}
				stopMessage(t, "sprite info", err)
				return nil
			}
		case spriteInfoAnimation:
			sub, err := m.sub(typ)
			if err != nil {
				stopMessage(t, "sprite info", err)
				return nil
			}
			fg.animation = decodeAnimationMessage(t, sub)
			if n := len(fg.animation.Phases); n > 0 {
				fg.Phases = uint8(n)
			}
		case spriteInfoBoundingBoxes:
			err := m.repeatedMessage(num, typ, func(box message) error {
				decodeScalars(t, box, scalarFields{
					boundingBoxX:      func(*Thing, uint64) {},
					boundingBoxY:      func(*Thing, uint64) {},
					boundingBoxWidth:  func(_ *Thing, v uint64) { fg.raiseRealSize(v) },
					boundingBoxHeight: func(_ *Thing, v uint64) { fg.raiseRealSize(v) },
				}, "bounding box")
				return nil
			})
			if err != nil {
				stopMessage(t, "sprite info", err)
				return nil
			}
		default:
			stopMessage(t, "sprite info", unknownField(num, typ))
			return nil
		}
	}
	return nil
}

func (fg *FrameGroup) raiseRealSize(v uint64) {
	if uint8(v) > fg.RealSize {
		fg.RealSize = uint8(v)
	}
}

func decodeAnimationMessage(t *Thing, m message) *Animation {
	a := &Animation{}
	random := false
	loopType, loopTypeSet := loopTypeInfinite, false
	var loopCount uint64

walk:
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "animation", err)
			break
		}
		switch num {
		case animationDefaultStartPhase, animationSynchronized, animationRandomStartPhase, animationLoopType, animationLoopCount:
			v, err := m.varint(typ)
			if err != nil {
				stopMessage(t, "animation", err)
				break walk
			}
			switch num {
			case animationDefaultStartPhase:
				a.StartPhase = int32(v)
			case animationSynchronized:
				a.Synchronized = v != 0
			case animationRandomStartPhase:
				random = v != 0
			case animationLoopType:
				loopTypeSet = true
				switch v {
				case 0:
					loopType = loopTypeInfinite
				case 1:
					loopType = loopTypeCounted
				default:
					loopType = loopTypePingPong
				}
			case animationLoopCount:
				loopCount = v
			}
		case animationSpritePhase:
			err := m.repeatedMessage(num, typ, func(phase message) error {
				var d PhaseDuration
				decodeScalars(t, phase, scalarFields{
					phaseDurationMin: func(_ *Thing, v uint64) { d.Min = uint32(v) },
					phaseDurationMax: func(_ *Thing, v uint64) { d.Max = uint32(v) },
				}, "sprite phase")
				a.Phases = append(a.Phases, d)
				return nil
			})
			if err != nil {
				stopMessage(t, "animation", err)
				break walk
			}
		default:
			stopMessage(t, "animation", unknownField(num, typ))
			break walk
		}
	}

	if random {
		a.StartPhase = ANIMATION_RANDOM_START_PHASE
	}
	switch {
	case loopType == loopTypePingPong:
		a.LoopCount = -1
	case loopType == loopTypeCounted:
		a.LoopCount = 1
		if loopCount > 0 {
			a.LoopCount = int32(loopCount)
		}
	case !loopTypeSet && loopCount > 0:
		a.LoopCount = int32(loopCount)
	}
	return a
}

func decodeAppearanceFlags(t *Thing, m message) {
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "flags", err)
			return
		}

		if flag, ok := appearanceBoolFlags[num]; ok {
			set, err := m.presence(typ)
			if err != nil {
				stopMessage(t, "flags", err)
				return
			}
			if set {
				t.Flags |= flag
			}
			continue
		}

		if fm, ok := appearanceFlagMessages[num]; ok {
			sub, err := m.sub(typ)
			if err != nil {
				stopMessage(t, "flags", err)
				return
			}
			t.Flags |= fm.flag
			decodeScalars(t, sub, fm.fields, "flag message")
			continue
		}

		switch num {
		case flagsMarket:
			sub, err := m.sub(typ)
			if err != nil {
				stopMessage(t, "flags", err)
				return
			}
			decodeMarket(t, sub)
		case flagsNPCSaleData:
			err := m.repeatedMessage(num, typ, func(sub message) error {
				decodeNPCSaleData(t, sub)
				return nil
			})
			if err != nil {
				stopMessage(t, "flags", err)
				return
			}
		default:
			stopMessage(t, "flags", unknownField(num, typ))
			return
		}
	}
}

// vocationRestriction keeps known vocations and maps anything else to any.
func vocationRestriction(v uint64) uint16 {
	switch v {
	case VOCATION_NONE, VOCATION_KNIGHT, VOCATION_PALADIN, VOCATION_SORCERER, VOCATION_DRUID, VOCATION_PROMOTED:
		return uint16(v)
	}
	return VOCATION_ANY
}

func decodeMarket(t *Thing, m message) {
	t.Flags |= FLAG_MARKET
	if t.Market == nil {
		t.Market = &MarketData{}
	}
	md := t.Market
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "market", err)
			return
		}
		switch num {
		case 1, 2, 3, 6:
			v, err := m.varint(typ)
			if err != nil {
				stopMessage(t, "market", err)
				return
			}
			switch num {
			case 1:
				md.Category = uint16(v)
			case 2:
				md.TradeAs = uint16(v)
			case 3:
				md.ShowAs = uint16(v)
			case 6:
				md.MinimumLevel = uint16(v)
			}
		case 4:
			if md.Name, err = m.str(typ); err != nil {
				stopMessage(t, "market", err)
				return
			}
		case 5: // restrict_to_profession
			err := m.repeatedVarint(num, typ, func(v uint64) error {
				md.RestrictVocation = vocationRestriction(v)
				return nil
			})
			if err != nil {
				stopMessage(t, "market", err)
				return
			}
		default:
			stopMessage(t, "market", unknownField(num, typ))
			return
		}
	}
}

func decodeNPCSaleData(t *Thing, m message) {
	var sd NPCSaleData
	defer func() { t.NPCSaleData = append(t.NPCSaleData, sd) }()
	for !m.done() {
		num, typ, err := m.tag()
		if err != nil {
			stopMessage(t, "npc sale data", err)
			return
		}
		switch num {
		case 1:
			sd.Name, err = m.str(typ)
		case 2:
			sd.Location, err = m.str(typ)
		case 3, 4:
			var v uint64
			v, err = m.varint(typ)
			if num == 3 {
				sd.SalePrice = uint32(v)
			} else {
				sd.BuyPrice = uint32(v)
			}
		default:
			err = unknownField(num, typ)
		}
		if err != nil {
			stopMessage(t, "npc sale data", err)
			return
		}
	}
}

// stopMessage records that decoding of a message ended early. This is not an
// error: the enclosing message carries on after the stopped one.
func stopMessage(t *Thing, what string, why error) {
	glog.V(2).Infof("appearances: %s: stopped decoding %s: %v", t, what, why)
}
