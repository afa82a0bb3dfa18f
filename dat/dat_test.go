package dat

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-tibia-things/ttesting"
)

// datWriter builds Tibia.dat contents in memory.
type datWriter struct {
	bytes.Buffer
}

func (w *datWriter) put(values ...interface{}) *datWriter {
	for _, v := range values {
		if err := binary.Write(&w.Buffer, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}
	return w
}

func (w *datWriter) header(signature uint32, items, outfits, effects, distanceEffects uint16) *datWriter {
	return w.put(signature, items, outfits, effects, distanceEffects)
}

// simpleGroup writes a 1x1 single-phase group with one 16-bit sprite, for
// clients with pattern Z.
func (w *datWriter) simpleGroup(sprite uint16) *datWriter {
	return w.put(uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), sprite)
}

func writeTemp(t *testing.T, name string, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, contents, 0644); err != nil {
		t.Fatalf("failed to write %s: %s", path, err)
	}
	return path
}

// scenarioA is one stackable item with sprite 42. Header counts are maximum
// ids and items start at 100, so the item count written is 100 rather than a
// literal count of 1; a count of 1 would describe no items at all.
func scenarioA() []byte {
	w := &datWriter{}
	w.header(0x00000001, 100, 0, 0, 0)
	w.put(uint8(5), uint8(0xFF))
	w.simpleGroup(42)
	return w.Bytes()
}

func TestLoadDatSingleItem(t *testing.T) {
	ds := New(Options{Version: CLIENT_VERSION_854})
	if err := ds.LoadDat(writeTemp(t, "Tibia.dat", scenarioA())); err != nil {
		t.Fatalf("failed to load dat: %s", err)
	}

	ttesting.AssertEqualUint32(t, "signature", ds.Signature(), 1)
	ttesting.AssertEqualInt(t, "item count", ds.Count(CATEGORY_ITEM), 1)
	ttesting.AssertEqualInt(t, "outfit count", ds.Count(CATEGORY_OUTFIT), 0)
	ttesting.AssertEqualInt(t, "max item id", int(ds.MaxItemID()), 100)
	ttesting.AssertEqualString(t, "format", ds.Format().String(), "dat")

	itm := ds.Item(100)
	if itm == nil {
		t.Fatalf("item 100 missing")
	}
	ttesting.AssertEqualInt(t, "first item's ID should be 100", int(itm.ID), 100)
	ttesting.AssertEqualBool(t, "stackable", itm.Flags.Has(FLAG_STACKABLE), true)
	ttesting.AssertEqualBool(t, "only stackable", itm.Flags == FLAG_STACKABLE, true)
	ttesting.AssertEqualUint32(t, "sprite", itm.Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 42)
	ttesting.AssertEqualInt(t, "real size", int(itm.FrameGroup(FRAME_GROUP_DEFAULT).RealSize), 32)

	if ds.Item(99) != nil {
		t.Errorf("item 99 should be a placeholder")
	}
	if ds.Item(101) != nil {
		t.Errorf("item 101 should be out of range")
	}
	if ds.Thing(CATEGORY_COUNT, 100) != nil {
		t.Errorf("invalid category should yield nothing")
	}
}

func TestLoadDatItemCountIsMaxID(t *testing.T) {
	w := &datWriter{}
	w.header(0x00000001, 1, 0, 0, 0)
	w.put(uint8(5), uint8(0xFF))
	w.simpleGroup(42)

	ds := New(Options{Version: CLIENT_VERSION_854})
	if err := ds.ReadDat(bytes.NewReader(w.Bytes())); err != nil {
		t.Fatalf("failed to read dat: %s", err)
	}
	ttesting.AssertEqualInt(t, "item count", ds.Count(CATEGORY_ITEM), 0)
	if ds.Item(100) != nil {
		t.Errorf("a max item id of 1 should hold no items")
	}
}

func TestLoadDatMissingFile(t *testing.T) {
	ds := New(Options{Version: CLIENT_VERSION_854})
	err := ds.LoadDat(filepath.Join(t.TempDir(), "nope.dat"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !os.IsNotExist(errors.Cause(err)) {
		t.Errorf("got %v; want a not-exist error", err)
	}
}

func TestEmptyAttributeBlock(t *testing.T) {
	d := &legacyDecoder{r: newReader([]byte{0xFF}), version: CLIENT_VERSION_1098}
	th := newThing(100, CATEGORY_ITEM)
	if err := d.decodeAttributes(th); err != nil {
		t.Fatalf("failed to decode attributes: %s", err)
	}
	ttesting.AssertEqualInt(t, "flags", int(th.Flags), 0)
	ttesting.AssertEqualInt(t, "remaining bytes", d.r.Len(), 0)
}

func TestMissingTerminatorFailsLoad(t *testing.T) {
	ds := New(Options{Version: CLIENT_VERSION_854})
	if err := ds.LoadDat(writeTemp(t, "good.dat", scenarioA())); err != nil {
		t.Fatalf("failed to load dat: %s", err)
	}

	w := &datWriter{}
	w.header(2, 100, 0, 0, 0)
	for i := 0; i < 300; i++ {
		w.put(uint8(5))
	}
	err := ds.LoadDat(writeTemp(t, "bad.dat", w.Bytes()))
	if errors.Cause(err) != ErrMalformedAttributeBlock {
		t.Fatalf("got %v; want %v", err, ErrMalformedAttributeBlock)
	}
	ttesting.AssertEqualInt(t, "item count after failure", ds.Count(CATEGORY_ITEM), 0)
	ttesting.AssertEqualInt(t, "max item id after failure", int(ds.MaxItemID()), 0)
	ttesting.AssertEqualUint32(t, "signature after failure", ds.Signature(), 0)
	ttesting.AssertEqualString(t, "format after failure", ds.Format().String(), "none")
	if ds.Item(100) != nil {
		t.Errorf("previous catalog should have been cleared")
	}
}

func TestTerminatorAtLastAttempt(t *testing.T) {
	w := &datWriter{}
	for i := 0; i < maxAttributesPerThing-1; i++ {
		w.put(uint8(5))
	}
	w.put(uint8(0xFF))
	d := &legacyDecoder{r: newReader(w.Bytes()), version: CLIENT_VERSION_854}
	th := newThing(100, CATEGORY_ITEM)
	if err := d.decodeAttributes(th); err != nil {
		t.Fatalf("failed to decode attributes: %s", err)
	}
}

func TestTruncatedDat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{1, 0, 0, 0, 100}},
		{"cut in sprites", scenarioA()[:len(scenarioA())-1]},
		{"cut in attributes", (&datWriter{}).header(1, 100, 0, 0, 0).put(uint8(0)).Bytes()},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewDataset(bytes.NewReader(test.data), Options{Version: CLIENT_VERSION_854})
			if errors.Cause(err) != ErrTruncated {
				t.Errorf("got %v; want %v", err, ErrTruncated)
			}
		})
	}
}

func TestOversizedFrameGroup(t *testing.T) {
	build := func(phases uint8) []byte {
		w := &datWriter{}
		w.header(1, 100, 0, 0, 0)
		w.put(uint8(0xFF))
		// 4x4 tiles, 2 layers, 4x4x4 patterns.
		w.put(uint8(4), uint8(4), uint8(64), uint8(2), uint8(4), uint8(4), uint8(4), phases)
		total := 4 * 4 * 2 * 4 * 4 * 4 * int(phases)
		if total <= maxSpritesPerFrameGroup {
			for i := 0; i < total; i++ {
				w.put(uint16(i))
			}
		}
		return w.Bytes()
	}

	ds, err := NewDataset(bytes.NewReader(build(2)), Options{Version: CLIENT_VERSION_854})
	if err != nil {
		t.Fatalf("4096 sprites should be accepted: %s", err)
	}
	ttesting.AssertEqualInt(t, "sprites at limit", len(ds.Item(100).FrameGroup(FRAME_GROUP_DEFAULT).Sprites), 4096)
	ttesting.AssertEqualUint32(t, "last sprite", ds.Item(100).Sprite(FRAME_GROUP_DEFAULT, 3, 3, 1, 3, 3, 3, 1), 4095)

	_, err = NewDataset(bytes.NewReader(build(3)), Options{Version: CLIENT_VERSION_854})
	if errors.Cause(err) != ErrOversizedFrameGroup {
		t.Errorf("got %v; want %v", err, ErrOversizedFrameGroup)
	}
}

func TestLegacyAttributePayloads(t *testing.T) {
	w := &datWriter{}
	w.header(1, 100, 0, 0, 0)
	w.put(uint8(ATTR_GROUND), uint16(150))
	w.put(uint8(ATTR_WRITABLE), uint16(512))
	w.put(uint8(ATTR_LIGHT), uint16(7), uint16(215))
	w.put(uint8(ATTR_DISPLACEMENT), uint16(4), uint16(6))
	w.put(uint8(ATTR_ELEVATION), uint16(16))
	w.put(uint8(ATTR_MINIMAP_COLOR), uint16(156))
	w.put(uint8(ATTR_CLOTH), uint16(8))
	w.put(uint8(ATTR_MARKET), uint16(3), uint16(2148), uint16(2149), uint16(len("gold coin")), []byte("gold coin"), uint16(VOCATION_KNIGHT), uint16(20))
	w.put(uint8(ATTR_DEFAULT_ACTION), uint16(2))
	w.put(uint8(200)) // unknown, ignored
	w.put(uint8(0xFF))
	w.simpleGroup(7)

	ds, err := NewDataset(bytes.NewReader(w.Bytes()), Options{Version: CLIENT_VERSION_860})
	if err != nil {
		t.Fatalf("failed to parse dataset: %s", err)
	}
	itm := ds.Item(100)

	want := FLAG_GROUND | FLAG_WRITABLE | FLAG_LIGHT | FLAG_DISPLACEMENT | FLAG_ELEVATION | FLAG_MINIMAP_COLOR | FLAG_CLOTH | FLAG_MARKET | FLAG_DEFAULT_ACTION
	if itm.Flags != want {
		t.Errorf("got flags %s; want %s", itm.Flags, want)
	}
	ttesting.AssertEqualInt(t, "ground speed", int(itm.GroundSpeed), 150)
	ttesting.AssertEqualInt(t, "writable length", int(itm.WritableLength), 512)
	ttesting.AssertEqualInt(t, "light intensity", int(itm.Light.Intensity), 7)
	ttesting.AssertEqualInt(t, "light color", int(itm.Light.Color), 215)
	ttesting.AssertEqualInt(t, "displacement x", int(itm.Displacement.X), 4)
	ttesting.AssertEqualInt(t, "displacement y", int(itm.Displacement.Y), 6)
	ttesting.AssertEqualInt(t, "elevation", int(itm.Elevation), 16)
	ttesting.AssertEqualInt(t, "minimap color", int(itm.MinimapColor), 156)
	ttesting.AssertEqualInt(t, "cloth slot", int(itm.ClothSlot), 8)
	ttesting.AssertEqualInt(t, "default action", int(itm.DefaultAction), 2)
	if itm.Market == nil {
		t.Fatalf("market data missing")
	}
	ttesting.AssertEqualInt(t, "market category", int(itm.Market.Category), 3)
	ttesting.AssertEqualInt(t, "market trade as", int(itm.Market.TradeAs), 2148)
	ttesting.AssertEqualInt(t, "market show as", int(itm.Market.ShowAs), 2149)
	ttesting.AssertEqualString(t, "market name", itm.Market.Name, "gold coin")
	ttesting.AssertEqualString(t, "display name", itm.DisplayName(), "gold coin")
	ttesting.AssertEqualInt(t, "market vocation", int(itm.Market.RestrictVocation), VOCATION_KNIGHT)
	ttesting.AssertEqualInt(t, "market level", int(itm.Market.MinimumLevel), 20)
	ttesting.AssertEqualUint32(t, "sprite", itm.Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 7)
}

func TestLegacyOldClientLayout(t *testing.T) {
	// 7.50: displacement carries no payload and there is no pattern Z byte.
	w := &datWriter{}
	w.header(1, 100, 0, 0, 0)
	w.put(uint8(20), uint8(5), uint8(0xFF)) // displacement, then 5 which is multi use here
	w.put(uint8(2), uint8(2), uint8(64), uint8(1), uint8(1), uint8(1), uint8(1))
	w.put(uint16(10), uint16(11), uint16(12), uint16(13))

	ds, err := NewDataset(bytes.NewReader(w.Bytes()), Options{Version: 750})
	if err != nil {
		t.Fatalf("failed to parse dataset: %s", err)
	}
	itm := ds.Item(100)
	ttesting.AssertEqualBool(t, "displacement", itm.Flags.Has(FLAG_DISPLACEMENT), true)
	ttesting.AssertEqualBool(t, "multi use", itm.Flags.Has(FLAG_MULTI_USE), true)
	ttesting.AssertEqualInt(t, "implied displacement x", int(itm.Displacement.X), 8)
	ttesting.AssertEqualInt(t, "implied displacement y", int(itm.Displacement.Y), 8)

	fg := itm.FrameGroup(FRAME_GROUP_DEFAULT)
	ttesting.AssertEqualInt(t, "real size", int(fg.RealSize), 64)
	ttesting.AssertEqualInt(t, "implied pattern z", int(fg.PatternZ), 1)
	ttesting.AssertEqualUint32(t, "sprite w=1 h=1", itm.Sprite(FRAME_GROUP_DEFAULT, 1, 1, 0, 0, 0, 0, 0), 13)
}

func outfitWithMovingGroup() []byte {
	w := &datWriter{}
	w.header(1, 99, 1, 0, 0)
	w.put(uint8(0xFF))
	w.put(uint8(1), uint8(FRAME_GROUP_MOVING))
	// 1x1, 1 layer, 4 directions, 2 phases.
	w.put(uint8(1), uint8(1), uint8(1), uint8(4), uint8(1), uint8(1), uint8(2))
	w.put(uint8(1), int32(0), int8(-1))
	w.put(uint32(100), uint32(200), uint32(150), uint32(250))
	for i := 0; i < 8; i++ {
		w.put(uint32(70000 + i))
	}
	return w.Bytes()
}

func TestOutfitSingleMovingGroupIsDuplicated(t *testing.T) {
	ds, err := NewDataset(bytes.NewReader(outfitWithMovingGroup()), Options{Version: CLIENT_VERSION_1098})
	if err != nil {
		t.Fatalf("failed to parse dataset: %s", err)
	}
	ttesting.AssertEqualInt(t, "item count", ds.Count(CATEGORY_ITEM), 0)
	o := ds.Outfit(1)
	if o == nil {
		t.Fatalf("outfit 1 missing")
	}

	idle, moving := o.FrameGroup(FRAME_GROUP_IDLE), o.FrameGroup(FRAME_GROUP_MOVING)
	ttesting.AssertEqualInt(t, "moving sprites", len(moving.Sprites), 8)
	ttesting.AssertEqualInt(t, "idle sprites", len(idle.Sprites), len(moving.Sprites))
	for i := range moving.Sprites {
		if idle.Sprites[i] != moving.Sprites[i] {
			t.Errorf("sprite %d: idle %d, moving %d", i, idle.Sprites[i], moving.Sprites[i])
		}
	}
	ttesting.AssertEqualInt(t, "idle pattern x", int(idle.PatternX), int(moving.PatternX))
	ttesting.AssertEqualInt(t, "idle phases", int(idle.Phases), int(moving.Phases))
	ttesting.AssertEqualUint32(t, "extended sprite", o.Sprite(FRAME_GROUP_IDLE, 0, 0, 0, 3, 0, 0, 1), 70007)

	if o.Animation(FRAME_GROUP_IDLE) != o.Animation(FRAME_GROUP_MOVING) {
		t.Errorf("idle and moving should share one animation")
	}
	owner, shared := idle.SharesAnimation()
	ttesting.AssertEqualBool(t, "idle shares animation", shared, true)
	ttesting.AssertEqualInt(t, "idle animation owner", int(owner), int(FRAME_GROUP_MOVING))
	ttesting.AssertEqualInt(t, "owned animations", len(o.OwnedAnimations()), 1)
	from, dup := o.DuplicatedFrom()
	ttesting.AssertEqualBool(t, "duplicated", dup, true)
	ttesting.AssertEqualInt(t, "duplicated from", int(from), int(FRAME_GROUP_MOVING))
	ttesting.AssertEqualBool(t, "no move animation", o.Flags.Has(FLAG_NO_MOVE_ANIMATION), false)

	a := o.Animation(FRAME_GROUP_MOVING)
	if a == nil {
		t.Fatalf("animation missing")
	}
	ttesting.AssertEqualBool(t, "synchronized", a.Synchronized, true)
	ttesting.AssertEqualBool(t, "infinite", a.Infinite(), true)
	ttesting.AssertEqualBool(t, "random start", a.RandomStartPhase(), true)
	ttesting.AssertEqualInt(t, "phase count", a.PhaseCount(), 2)
	ttesting.AssertEqualUint32(t, "second phase max", a.Phases[1].Max, 250)

	// A copy of the sprites, not the same backing array.
	idle.Sprites[0] = 1
	ttesting.AssertEqualUint32(t, "moving sprites untouched", moving.Sprites[0], 70000)
}

func TestOutfitWithoutFrameGroupSupport(t *testing.T) {
	w := &datWriter{}
	w.header(1, 99, 1, 0, 0)
	w.put(uint8(0xFF))
	w.simpleGroup(9)

	ds := New(Options{Version: CLIENT_VERSION_854})
	if err := ds.ReadDat(bytes.NewReader(w.Bytes())); err != nil {
		t.Fatalf("failed to read dat: %s", err)
	}
	o := ds.Outfit(1)
	ttesting.AssertEqualBool(t, "no move animation", o.Flags.Has(FLAG_NO_MOVE_ANIMATION), true)
	ttesting.AssertEqualUint32(t, "idle sprite", o.Sprite(FRAME_GROUP_IDLE, 0, 0, 0, 0, 0, 0, 0), 9)
	ttesting.AssertEqualUint32(t, "moving sprite", o.Sprite(FRAME_GROUP_MOVING, 0, 0, 0, 0, 0, 0, 0), 9)
	ttesting.AssertEqualInt(t, "owned animations", len(o.OwnedAnimations()), 0)
	from, dup := o.DuplicatedFrom()
	ttesting.AssertEqualBool(t, "duplicated", dup, true)
	ttesting.AssertEqualInt(t, "duplicated from", int(from), int(FRAME_GROUP_IDLE))
}

func TestOutfitWithTwoFrameGroups(t *testing.T) {
	w := &datWriter{}
	w.header(1, 99, 1, 0, 0)
	w.put(uint8(0xFF), uint8(2))
	w.put(uint8(FRAME_GROUP_IDLE), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint32(5))
	w.put(uint8(FRAME_GROUP_MOVING), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint32(6))

	ds, err := NewDataset(bytes.NewReader(w.Bytes()), Options{Version: CLIENT_VERSION_1098})
	if err != nil {
		t.Fatalf("failed to parse dataset: %s", err)
	}
	o := ds.Outfit(1)
	ttesting.AssertEqualUint32(t, "idle sprite", o.Sprite(FRAME_GROUP_IDLE, 0, 0, 0, 0, 0, 0, 0), 5)
	ttesting.AssertEqualUint32(t, "moving sprite", o.Sprite(FRAME_GROUP_MOVING, 0, 0, 0, 0, 0, 0, 0), 6)
	_, dup := o.DuplicatedFrom()
	ttesting.AssertEqualBool(t, "duplicated", dup, false)
}

func TestFeatureOverride(t *testing.T) {
	// An 8.54 file decoded as if it used 32-bit sprite ids.
	fs := FeaturesForVersion(CLIENT_VERSION_854).With(FeatureExtendedSprites, true)
	w := &datWriter{}
	w.header(1, 100, 0, 0, 0)
	w.put(uint8(0xFF), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint8(1), uint32(123456))

	ds, err := NewDataset(bytes.NewReader(w.Bytes()), Options{Version: CLIENT_VERSION_854, Features: &fs})
	if err != nil {
		t.Fatalf("failed to parse dataset: %s", err)
	}
	ttesting.AssertEqualUint32(t, "sprite", ds.Item(100).Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 123456)
}

func TestAllCategories(t *testing.T) {
	w := &datWriter{}
	w.header(0xABCD, 101, 1, 2, 1)
	for i := 0; i < 2+1+2+1; i++ {
		w.put(uint8(0xFF))
		w.simpleGroup(uint16(i + 1))
	}
	ds, err := NewDataset(bytes.NewReader(w.Bytes()), Options{Version: CLIENT_VERSION_860})
	if err != nil {
		t.Fatalf("failed to parse dataset: %s", err)
	}
	ttesting.AssertEqualInt(t, "items", ds.Count(CATEGORY_ITEM), 2)
	ttesting.AssertEqualInt(t, "outfits", ds.Count(CATEGORY_OUTFIT), 1)
	ttesting.AssertEqualInt(t, "effects", ds.Count(CATEGORY_EFFECT), 2)
	ttesting.AssertEqualInt(t, "distance effects", ds.Count(CATEGORY_DISTANCE_EFFECT), 1)
	ttesting.AssertEqualUint32(t, "effect 2 sprite", ds.Effect(2).Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 5)
	ttesting.AssertEqualUint32(t, "missile 1 sprite", ds.DistanceEffect(1).Sprite(FRAME_GROUP_DEFAULT, 0, 0, 0, 0, 0, 0, 0), 6)
	ttesting.AssertEqualInt(t, "missile category", int(ds.DistanceEffect(1).Category), int(CATEGORY_DISTANCE_EFFECT))

	var ids []uint16
	ds.Things(CATEGORY_ITEM, func(th *Thing) bool {
		ids = append(ids, th.ID)
		return true
	})
	if len(ids) != 2 || ids[0] != 100 || ids[1] != 101 {
		t.Errorf("got item ids %v; want [100 101]", ids)
	}
}

func TestDatasetColor(t *testing.T) {
	r, g, b, a := DatasetColor(156).RGBA()
	if r != 0xCCCC || g != 0x6666 || b != 0 || a != 0xFFFF {
		t.Errorf("got %d %d %d %d; want %d %d %d %d", r, g, b, a, 0xCCCC, 0x6666, 0, 0xFFFF)
	}
	if c := DatasetColor(216).NRGBA(); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("out of palette color should be black, got %v", c)
	}
	if c := DatasetColor(215).NRGBA(); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("color 215 should be white, got %v", c)
	}
}
