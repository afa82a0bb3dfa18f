package dat

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"

	"badc0de.net/pkg/go-tibia-things/ttesting"
)

// pb builds wire-format messages for tests.
type pb []byte

func (b pb) varint(num protowire.Number, v uint64) pb {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func (b pb) msg(num protowire.Number, m pb) pb {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

func (b pb) str(num protowire.Number, s string) pb {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func (b pb) packed(num protowire.Number, vs ...uint64) pb {
	var p []byte
	for _, v := range vs {
		p = protowire.AppendVarint(p, v)
	}
	return b.msg(num, p)
}

func (b pb) unpacked(num protowire.Number, vs ...uint64) pb {
	for _, v := range vs {
		b = b.varint(num, v)
	}
	return b
}

func spriteInfo(patternX uint64, sprites ...uint64) pb {
	return pb{}.varint(spriteInfoPatternWidth, patternX).packed(spriteInfoSpriteID, sprites...)
}

func frameGroup(kind FrameGroupKind, info pb) pb {
	return pb{}.varint(frameGroupFixedGroup, uint64(kind)).msg(frameGroupSpriteInfo, info)
}

func loadAppearances(t *testing.T, buf []byte) *Dataset {
	t.Helper()
	ds := New(Options{})
	if err := ds.ReadAppearances(bytes.NewReader(buf)); err != nil {
		t.Fatalf("failed to read appearances: %s", err)
	}
	return ds
}

func TestAppearancesSingleObject(t *testing.T) {
	obj := pb{}.
		varint(appearanceID, 100).
		msg(appearanceFrameGroup, frameGroup(FRAME_GROUP_DEFAULT, spriteInfo(2, 11, 12))).
		msg(appearanceFlags, pb{}.msg(5, nil))
	ds := loadAppearances(t, pb{}.msg(appearancesObject, obj))

	ttesting.AssertEqualString(t, "format", ds.Format().String(), "appearances")
	ttesting.AssertEqualInt(t, "item count", ds.Count(CATEGORY_ITEM), 1)
	ttesting.AssertEqualInt(t, "max item id", int(ds.MaxItemID()), 100)
	ttesting.AssertEqualUint32(t, "signature", ds.Signature(), 0)

	itm := ds.Item(100)
	if itm == nil {
		t.Fatalf("item 100 missing")
	}
	ttesting.AssertEqualBool(t, "container", itm.Flags.Has(FLAG_CONTAINER), true)
	fg := itm.FrameGroup(FRAME_GROUP_DEFAULT)
	ttesting.AssertEqualInt(t, "pattern x", int(fg.PatternX), 2)
	ttesting.AssertEqualInt(t, "pattern y", int(fg.PatternY), 1)
	ttesting.AssertEqualInt(t, "width", int(fg.Width), 1)
	ttesting.AssertEqualInt(t, "real size", int(fg.RealSize), 32)
	ttesting.AssertEqualInt(t, "sprites", len(fg.Sprites), 2)
	ttesting.AssertEqualUint32(t, "sprite x=1", itm.Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 1, 0, 0, 0), 12)
	if ds.Item(99) != nil {
		t.Errorf("item 99 should be a placeholder")
	}
}

func TestAppearancesPackedAndUnpackedSprites(t *testing.T) {
	build := func(info pb) *Thing {
		obj := pb{}.varint(appearanceID, 100).msg(appearanceFrameGroup, pb{}.msg(frameGroupSpriteInfo, info))
		return loadAppearances(t, pb{}.msg(appearancesObject, obj)).Item(100)
	}
	packed := build(pb{}.varint(spriteInfoPatternWidth, 3).packed(spriteInfoSpriteID, 1, 300, 70000))
	unpacked := build(pb{}.varint(spriteInfoPatternWidth, 3).unpacked(spriteInfoSpriteID, 1, 300, 70000))

	ps, us := packed.FrameGroup(FRAME_GROUP_DEFAULT).Sprites, unpacked.FrameGroup(FRAME_GROUP_DEFAULT).Sprites
	ttesting.AssertEqualInt(t, "packed sprites", len(ps), 3)
	ttesting.AssertEqualInt(t, "unpacked sprites", len(us), 3)
	for i := range ps {
		if i < len(us) && ps[i] != us[i] {
			t.Errorf("sprite %d: packed %d, unpacked %d", i, ps[i], us[i])
		}
	}

	// A split list: two tagged runs separated by another field.
	split := build(pb{}.unpacked(spriteInfoSpriteID, 1, 2).varint(spriteInfoLayers, 1).packed(spriteInfoSpriteID, 3))
	ttesting.AssertEqualInt(t, "split sprites", len(split.FrameGroup(FRAME_GROUP_DEFAULT).Sprites), 3)
}

func TestAppearancesCompaction(t *testing.T) {
	rec := func(id, sprite uint64) pb {
		return pb{}.varint(appearanceID, id).msg(appearanceFrameGroup, pb{}.msg(frameGroupSpriteInfo, spriteInfo(1, sprite)))
	}
	buf := pb{}.
		msg(appearancesObject, rec(300, 3)).
		msg(appearancesObject, rec(100, 1)).
		msg(appearancesEffect, rec(7, 70)).
		msg(appearancesObject, rec(200, 2)).
		msg(appearancesObject, rec(200, 22)).
		msg(appearancesObject, pb{}.str(appearanceName, "nameless")).
		msg(appearancesMissile, rec(4, 40))
	ds := loadAppearances(t, buf)

	ttesting.AssertEqualInt(t, "max item id", int(ds.MaxItemID()), 300)
	ttesting.AssertEqualInt(t, "item count", ds.Count(CATEGORY_ITEM), 3)
	ttesting.AssertEqualInt(t, "effect count", ds.Count(CATEGORY_EFFECT), 1)
	ttesting.AssertEqualInt(t, "missile count", ds.Count(CATEGORY_DISTANCE_EFFECT), 1)
	ttesting.AssertEqualInt(t, "outfit count", ds.Count(CATEGORY_OUTFIT), 0)
	ttesting.AssertEqualInt(t, "max outfit id", int(ds.MaxOutfitID()), 0)

	for id, want := range map[uint16]uint32{100: 1, 200: 22, 300: 3} {
		itm := ds.Item(id)
		if itm == nil {
			t.Errorf("item %d missing", id)
			continue
		}
		ttesting.AssertEqualUint32(t, itm.String(), itm.Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), want)
	}
	if ds.Item(150) != nil {
		t.Errorf("item 150 should be a placeholder")
	}
	ttesting.AssertEqualUint32(t, "effect 7", ds.Effect(7).Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 70)
	ttesting.AssertEqualUint32(t, "missile 4", ds.DistanceEffect(4).Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 40)
}

// Unknown field 99 stops the flags before stackable; unknown field 15 stops
// the record before the second name.
func TestAppearancesUnknownFields(t *testing.T) {
	obj := pb{}.
		varint(appearanceID, 100).
		msg(appearanceFlags, pb{}.msg(5, nil).varint(99, 1).varint(6, 1)).
		str(appearanceName, "chest").
		varint(15, 1).
		str(appearanceName, "ignored")
	next := pb{}.varint(appearanceID, 101)
	ds := loadAppearances(t, pb{}.msg(appearancesObject, obj).msg(appearancesObject, next))

	itm := ds.Item(100)
	ttesting.AssertEqualBool(t, "container", itm.Flags.Has(FLAG_CONTAINER), true)
	ttesting.AssertEqualBool(t, "stackable", itm.Flags.Has(FLAG_STACKABLE), false)
	ttesting.AssertEqualString(t, "name", itm.Name, "chest")
	ttesting.AssertEqualString(t, "display name", itm.DisplayName(), "chest")
	if ds.Item(101) == nil {
		t.Errorf("record after a stopped record should still be decoded")
	}
}

func TestAppearancesUnknownTopLevelFieldEndsStream(t *testing.T) {
	buf := pb{}.
		msg(appearancesObject, pb{}.varint(appearanceID, 100)).
		varint(5, 1).
		msg(appearancesObject, pb{}.varint(appearanceID, 101))
	ds := loadAppearances(t, buf)
	ttesting.AssertEqualInt(t, "item count", ds.Count(CATEGORY_ITEM), 1)
	if ds.Item(101) != nil {
		t.Errorf("records after an unknown top-level field should not be decoded")
	}
}

func TestAppearancesTruncatedRecord(t *testing.T) {
	buf := pb{}.msg(appearancesObject, pb{}.varint(appearanceID, 100))
	buf = protowire.AppendTag(buf, appearancesObject, protowire.BytesType)
	buf = protowire.AppendVarint(buf, 50)
	buf = append(buf, 1, 2, 3)

	ds := New(Options{})
	err := ds.ReadAppearances(bytes.NewReader(buf))
	if errors.Cause(err) != ErrTruncated {
		t.Fatalf("got %v; want %v", err, ErrTruncated)
	}
	ttesting.AssertEqualInt(t, "item count after failure", ds.Count(CATEGORY_ITEM), 0)
	ttesting.AssertEqualString(t, "format after failure", ds.Format().String(), "none")
}

func TestAppearancesOversizedFrameGroup(t *testing.T) {
	sprites := make([]uint64, maxSpritesPerFrameGroup+1)
	obj := pb{}.varint(appearanceID, 100).msg(appearanceFrameGroup, pb{}.msg(frameGroupSpriteInfo, pb{}.packed(spriteInfoSpriteID, sprites...)))
	err := New(Options{}).ReadAppearances(bytes.NewReader(pb{}.msg(appearancesObject, obj)))
	if errors.Cause(err) != ErrOversizedFrameGroup {
		t.Errorf("got %v; want %v", err, ErrOversizedFrameGroup)
	}
}

func TestAppearancesFlagMessages(t *testing.T) {
	market := pb{}.
		varint(1, 3).
		varint(2, 3031).
		varint(3, 3035).
		str(4, "gold coin").
		packed(5, VOCATION_PALADIN).
		varint(6, 8)
	npc := func(name string, sale uint64) pb {
		return pb{}.str(1, name).str(2, "Thais").varint(3, sale).varint(4, 1)
	}
	flags := pb{}.
		msg(1, pb{}.varint(1, 150)).
		varint(6, 1).
		varint(8, 0).
		msg(21, pb{}.varint(1, hookEast)).
		msg(23, pb{}.varint(1, 7).varint(2, 215)).
		msg(26, pb{}.varint(1, 4).varint(2, 6)).
		msg(30, pb{}.varint(1, 156)).
		msg(flagsMarket, market).
		msg(flagsNPCSaleData, npc("Rachel", 10)).
		msg(flagsNPCSaleData, npc("Frodo", 12)).
		msg(41, pb{}.varint(1, 3030)).
		msg(42, nil).
		msg(44, pb{}.varint(1, 2))
	ds := loadAppearances(t, pb{}.msg(appearancesObject, pb{}.varint(appearanceID, 3031).msg(appearanceFlags, flags)))
	itm := ds.Item(3031)

	for _, f := range []Flags{FLAG_GROUND, FLAG_STACKABLE, FLAG_HOOK_EAST, FLAG_LIGHT, FLAG_DISPLACEMENT, FLAG_MINIMAP_COLOR, FLAG_MARKET, FLAG_CONTAINER, FLAG_CORPSE} {
		ttesting.AssertEqualBool(t, f.String(), itm.Flags.Has(f), true)
	}
	for _, f := range []Flags{FLAG_FORCE_USE, FLAG_HOOK_SOUTH, FLAG_PLAYER_CORPSE} {
		ttesting.AssertEqualBool(t, f.String(), itm.Flags.Has(f), false)
	}
	ttesting.AssertEqualInt(t, "ground speed", int(itm.GroundSpeed), 150)
	ttesting.AssertEqualInt(t, "light intensity", int(itm.Light.Intensity), 7)
	ttesting.AssertEqualInt(t, "light color", int(itm.Light.Color), 215)
	ttesting.AssertEqualInt(t, "displacement x", int(itm.Displacement.X), 4)
	ttesting.AssertEqualInt(t, "displacement y", int(itm.Displacement.Y), 6)
	ttesting.AssertEqualInt(t, "minimap color", int(itm.MinimapColor), 156)
	ttesting.AssertEqualUint32(t, "former object type", itm.FormerObjectTypeID, 3030)
	ttesting.AssertEqualUint32(t, "cyclopedia type", itm.CyclopediaType, 2)

	if itm.Market == nil {
		t.Fatalf("market data missing")
	}
	ttesting.AssertEqualInt(t, "market category", int(itm.Market.Category), 3)
	ttesting.AssertEqualInt(t, "market trade as", int(itm.Market.TradeAs), 3031)
	ttesting.AssertEqualInt(t, "market show as", int(itm.Market.ShowAs), 3035)
	ttesting.AssertEqualString(t, "market name", itm.Market.Name, "gold coin")
	ttesting.AssertEqualInt(t, "market vocation", int(itm.Market.RestrictVocation), VOCATION_PALADIN)
	ttesting.AssertEqualInt(t, "market level", int(itm.Market.MinimumLevel), 8)

	ttesting.AssertEqualInt(t, "npc sale data", len(itm.NPCSaleData), 2)
	if len(itm.NPCSaleData) == 2 {
		ttesting.AssertEqualString(t, "first npc", itm.NPCSaleData[0].Name, "Rachel")
		ttesting.AssertEqualString(t, "second npc location", itm.NPCSaleData[1].Location, "Thais")
		ttesting.AssertEqualUint32(t, "second npc sale price", itm.NPCSaleData[1].SalePrice, 12)
		ttesting.AssertEqualUint32(t, "second npc buy price", itm.NPCSaleData[1].BuyPrice, 1)
	}
}

func TestAppearancesUnknownVocation(t *testing.T) {
	flags := pb{}.msg(flagsMarket, pb{}.varint(5, 7))
	ds := loadAppearances(t, pb{}.msg(appearancesObject, pb{}.varint(appearanceID, 100).msg(appearanceFlags, flags)))
	ttesting.AssertEqualInt(t, "vocation", int(ds.Item(100).Market.RestrictVocation), VOCATION_ANY)
}

func animationMessage(extra pb, phases ...PhaseDuration) pb {
	m := extra
	for _, p := range phases {
		m = m.msg(animationSpritePhase, pb{}.varint(phaseDurationMin, uint64(p.Min)).varint(phaseDurationMax, uint64(p.Max)))
	}
	return m
}

func TestAppearancesAnimation(t *testing.T) {
	phases := []PhaseDuration{{100, 100}, {200, 300}, {50, 60}}
	tests := []struct {
		name       string
		extra      pb
		wantStart  int32
		wantLoop   int32
		wantSynced bool
	}{
		{"defaults", pb{}, 0, 0, false},
		{"start phase", pb{}.varint(animationDefaultStartPhase, 2).varint(animationSynchronized, 1), 2, 0, true},
		{"random start", pb{}.varint(animationDefaultStartPhase, 2).varint(animationRandomStartPhase, 1), ANIMATION_RANDOM_START_PHASE, 0, false},
		{"counted", pb{}.varint(animationLoopType, 1).varint(animationLoopCount, 3), 0, 3, false},
		{"counted without count", pb{}.varint(animationLoopType, 1), 0, 1, false},
		{"ping pong", pb{}.varint(animationLoopType, ^uint64(0)), 0, -1, false},
		{"count without type", pb{}.varint(animationLoopCount, 5), 0, 5, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := pb{}.msg(spriteInfoAnimation, animationMessage(test.extra, phases...)).packed(spriteInfoSpriteID, 1, 2, 3)
			obj := pb{}.varint(appearanceID, 100).msg(appearanceFrameGroup, pb{}.msg(frameGroupSpriteInfo, info))
			itm := loadAppearances(t, pb{}.msg(appearancesObject, obj)).Item(100)

			a := itm.Animation(FRAME_GROUP_DEFAULT)
			if a == nil {
				t.Fatalf("animation missing")
			}
			ttesting.AssertEqualInt(t, "phases", int(itm.FrameGroup(FRAME_GROUP_DEFAULT).Phases), 3)
			ttesting.AssertEqualInt(t, "phase count", a.PhaseCount(), 3)
			ttesting.AssertEqualUint32(t, "second phase max", a.Phases[1].Max, 300)
			ttesting.AssertEqualInt(t, "start phase", int(a.StartPhase), int(test.wantStart))
			ttesting.AssertEqualInt(t, "loop count", int(a.LoopCount), int(test.wantLoop))
			ttesting.AssertEqualBool(t, "synchronized", a.Synchronized, test.wantSynced)
		})
	}
}

func TestAppearancesSinglePhaseHasNoAnimation(t *testing.T) {
	info := pb{}.msg(spriteInfoAnimation, animationMessage(pb{}, PhaseDuration{100, 100})).packed(spriteInfoSpriteID, 1)
	obj := pb{}.varint(appearanceID, 100).msg(appearanceFrameGroup, pb{}.msg(frameGroupSpriteInfo, info))
	itm := loadAppearances(t, pb{}.msg(appearancesObject, obj)).Item(100)
	if itm.Animation(FRAME_GROUP_DEFAULT) != nil {
		t.Errorf("single phase group should not animate")
	}
	ttesting.AssertEqualInt(t, "owned animations", len(itm.OwnedAnimations()), 0)
}

func TestAppearancesBoundingBoxes(t *testing.T) {
	box := func(w, h uint64) pb {
		return pb{}.varint(boundingBoxX, 0).varint(boundingBoxY, 0).varint(boundingBoxWidth, w).varint(boundingBoxHeight, h)
	}
	info := pb{}.msg(spriteInfoBoundingBoxes, box(40, 20)).msg(spriteInfoBoundingBoxes, box(10, 48)).packed(spriteInfoSpriteID, 1)
	obj := pb{}.varint(appearanceID, 100).msg(appearanceFrameGroup, pb{}.msg(frameGroupSpriteInfo, info))
	itm := loadAppearances(t, pb{}.msg(appearancesObject, obj)).Item(100)
	ttesting.AssertEqualInt(t, "real size", int(itm.FrameGroup(FRAME_GROUP_DEFAULT).RealSize), 48)
}

func TestAppearancesOutfitDuplication(t *testing.T) {
	anim := animationMessage(pb{}.varint(animationSynchronized, 1), PhaseDuration{100, 100}, PhaseDuration{100, 100})
	moving := pb{}.varint(spriteInfoPatternWidth, 4).msg(spriteInfoAnimation, anim).packed(spriteInfoSpriteID, 1, 2, 3, 4, 5, 6, 7, 8)
	idleOnly := pb{}.varint(spriteInfoPatternWidth, 4).packed(spriteInfoSpriteID, 9, 10, 11, 12)

	buf := pb{}.
		msg(appearancesOutfit, pb{}.varint(appearanceID, 1).msg(appearanceFrameGroup, frameGroup(FRAME_GROUP_MOVING, moving))).
		msg(appearancesOutfit, pb{}.varint(appearanceID, 2).msg(appearanceFrameGroup, frameGroup(FRAME_GROUP_IDLE, idleOnly))).
		msg(appearancesOutfit, pb{}.varint(appearanceID, 3).
			msg(appearanceFrameGroup, frameGroup(FRAME_GROUP_IDLE, idleOnly)).
			msg(appearanceFrameGroup, frameGroup(FRAME_GROUP_MOVING, moving)))
	ds := loadAppearances(t, buf)

	o := ds.Outfit(1)
	ttesting.AssertEqualInt(t, "idle sprites", len(o.FrameGroup(FRAME_GROUP_IDLE).Sprites), 8)
	ttesting.AssertEqualUint32(t, "idle last sprite", o.Sprite(FRAME_GROUP_IDLE, 0, 0, 0, 3, 0, 0, 1), 8)
	if o.Animation(FRAME_GROUP_IDLE) == nil || o.Animation(FRAME_GROUP_IDLE) != o.Animation(FRAME_GROUP_MOVING) {
		t.Errorf("idle should share the moving animation")
	}
	ttesting.AssertEqualInt(t, "owned animations", len(o.OwnedAnimations()), 1)
	from, dup := o.DuplicatedFrom()
	ttesting.AssertEqualBool(t, "outfit 1 duplicated", dup, true)
	ttesting.AssertEqualInt(t, "outfit 1 duplicated from", int(from), int(FRAME_GROUP_MOVING))

	o = ds.Outfit(2)
	ttesting.AssertEqualUint32(t, "moving sprite", o.Sprite(FRAME_GROUP_MOVING, 0, 0, 0, 2, 0, 0, 0), 11)
	from, dup = o.DuplicatedFrom()
	ttesting.AssertEqualBool(t, "outfit 2 duplicated", dup, true)
	ttesting.AssertEqualInt(t, "outfit 2 duplicated from", int(from), int(FRAME_GROUP_IDLE))

	o = ds.Outfit(3)
	_, dup = o.DuplicatedFrom()
	ttesting.AssertEqualBool(t, "outfit 3 duplicated", dup, false)
	ttesting.AssertEqualUint32(t, "outfit 3 idle sprite", o.Sprite(FRAME_GROUP_IDLE, 0, 0, 0, 0, 0, 0, 0), 9)
	ttesting.AssertEqualUint32(t, "outfit 3 moving sprite", o.Sprite(FRAME_GROUP_MOVING, 0, 0, 0, 0, 0, 0, 0), 1)
	ttesting.AssertEqualInt(t, "outfit 3 owned animations", len(o.OwnedAnimations()), 1)
}
