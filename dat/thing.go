package dat

import (
	"fmt"
)

// Category selects one of the four id spaces of the catalog.
type Category int

const (
	CATEGORY_ITEM Category = iota
	CATEGORY_OUTFIT
	CATEGORY_EFFECT
	CATEGORY_DISTANCE_EFFECT

	CATEGORY_COUNT
)

func (c Category) String() string {
	switch c {
	case CATEGORY_ITEM:
		return "item"
	case CATEGORY_OUTFIT:
		return "outfit"
	case CATEGORY_EFFECT:
		return "effect"
	case CATEGORY_DISTANCE_EFFECT:
		return "missile"
	}
	return fmt.Sprintf("category %d unknown", int(c))
}

// ParseCategory accepts the names returned by Category.String, plus
// "distance" as an alias for missiles.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "item", "items":
		return CATEGORY_ITEM, true
	case "outfit", "outfits", "creature":
		return CATEGORY_OUTFIT, true
	case "effect", "effects":
		return CATEGORY_EFFECT, true
	case "missile", "missiles", "distance":
		return CATEGORY_DISTANCE_EFFECT, true
	}
	return 0, false
}

// firstID returns the lowest id a category can use. Items begin at 100.
func (c Category) firstID() int {
	if c == CATEGORY_ITEM {
		return 100
	}
	return 1
}

// FrameGroupKind indexes the frame groups of a thing.
type FrameGroupKind uint8

const (
	FRAME_GROUP_DEFAULT FrameGroupKind = iota
	FRAME_GROUP_MOVING
	FRAME_GROUP_INITIAL

	FRAME_GROUP_COUNT
)

// FRAME_GROUP_IDLE is the default group of an outfit.
const FRAME_GROUP_IDLE = FRAME_GROUP_DEFAULT

func (k FrameGroupKind) String() string {
	switch k {
	case FRAME_GROUP_DEFAULT:
		return "default"
	case FRAME_GROUP_MOVING:
		return "moving"
	case FRAME_GROUP_INITIAL:
		return "initial"
	}
	return fmt.Sprintf("frame group %d unknown", uint8(k))
}

// ParseFrameGroupKind accepts the names returned by FrameGroupKind.String,
// plus "idle" for the default group of an outfit.
func ParseFrameGroupKind(s string) (FrameGroupKind, bool) {
	switch s {
	case "default", "idle", "":
		return FRAME_GROUP_DEFAULT, true
	case "moving", "walking":
		return FRAME_GROUP_MOVING, true
	case "initial":
		return FRAME_GROUP_INITIAL, true
	}
	return 0, false
}

// ANIMATION_RANDOM_START_PHASE is stored in Animation.StartPhase when each
// instance should start on a random phase.
const ANIMATION_RANDOM_START_PHASE = -1

// PhaseDuration is the range, in milliseconds, a single animation phase is
// shown for.
type PhaseDuration struct {
	Min, Max uint32
}

// Animation describes the timing of a frame group with more than one phase.
type Animation struct {
	// StartPhase is the phase new instances start in. Negative means random.
	StartPhase int32
	// Synchronized animations run off the global clock so all instances show
	// the same phase.
	Synchronized bool
	// LoopCount is 0 for an infinite loop, positive for a finite number of
	// loops and negative for ping-pong.
	LoopCount int32
	Phases    []PhaseDuration
}

func (a *Animation) RandomStartPhase() bool { return a.StartPhase < 0 }
func (a *Animation) Infinite() bool         { return a.LoopCount == 0 }
func (a *Animation) PingPong() bool         { return a.LoopCount < 0 }
func (a *Animation) PhaseCount() int        { return len(a.Phases) }

// FrameGroup is one animation variant of a thing and the layout of its
// sprites.
type FrameGroup struct {
	// ID is only present in appearances files.
	ID uint32

	Width, Height uint8
	// RealSize is the edge length, in pixels, of the visual bounding box.
	RealSize uint8
	Layers   uint8

	PatternX, PatternY, PatternZ uint8
	Phases                       uint8

	// Sprites is indexed by SpriteIndex.
	Sprites []uint32

	animation *Animation
	// When animationShared is set, animation is nil and the group uses the
	// one owned by the group in animationOwner.
	animationShared bool
	animationOwner  FrameGroupKind
}

// SpriteIndex computes the index into Sprites of the passed coordinates.
// Pattern Z varies slowest (after phase) and width fastest.
func (fg *FrameGroup) SpriteIndex(w, h, layer, x, y, z, phase int) int {
	return ((((((phase*int(fg.PatternZ)+z)*int(fg.PatternY)+y)*int(fg.PatternX)+x)*int(fg.Layers)+layer)*int(fg.Height)+h)*int(fg.Width) + w)
}

// Sprite returns the sprite id at the passed coordinates, or 0 (no sprite)
// when any coordinate falls outside its dimension or the table is short.
func (fg *FrameGroup) Sprite(w, h, layer, x, y, z, phase int) uint32 {
	for _, c := range [...]struct{ v, n int }{
		{w, int(fg.Width)}, {h, int(fg.Height)}, {layer, int(fg.Layers)},
		{x, int(fg.PatternX)}, {y, int(fg.PatternY)}, {z, int(fg.PatternZ)},
		{phase, int(fg.Phases)},
	} {
		if c.v < 0 || c.v >= c.n {
			return 0
		}
	}
	idx := fg.SpriteIndex(w, h, layer, x, y, z, phase)
	if idx >= len(fg.Sprites) {
		return 0
	}
	return fg.Sprites[idx]
}

// SpriteCount returns the product of all dimensions.
func (fg *FrameGroup) SpriteCount() int {
	return int(fg.Width) * int(fg.Height) * int(fg.Layers) * int(fg.PatternX) * int(fg.PatternY) * int(fg.PatternZ) * int(fg.Phases)
}

// SharesAnimation reports whether the group borrows its animation from
// another group of the same thing, and which.
func (fg *FrameGroup) SharesAnimation() (FrameGroupKind, bool) {
	return fg.animationOwner, fg.animationShared
}

// LightInfo is the light a thing emits.
type LightInfo struct {
	Intensity uint16
	Color     uint16
}

// Displacement is the pixel offset a thing is drawn with.
type Displacement struct {
	X, Y uint16
}

// Vocation restrictions of market data. Other values are kept verbatim.
const (
	VOCATION_NONE     = 0
	VOCATION_KNIGHT   = 1
	VOCATION_PALADIN  = 2
	VOCATION_SORCERER = 3
	VOCATION_DRUID    = 4
	VOCATION_PROMOTED = 10
	VOCATION_ANY      = 0xFFFF
)

// MarketData describes how an item is listed in the market.
type MarketData struct {
	Category         uint16
	TradeAs          uint16
	ShowAs           uint16
	Name             string
	RestrictVocation uint16
	MinimumLevel     uint16
}

// NPCSaleData is one NPC trade offer, only present in appearances files.
type NPCSaleData struct {
	Name      string
	Location  string
	SalePrice uint32
	BuyPrice  uint32
}

// Thing is a single catalog entry: a class of renderable object, not an
// instance of one in the game world.
type Thing struct {
	ID       uint16
	Category Category
	Flags    Flags

	// Scalar attributes below are meaningful only if the corresponding flag
	// is set.
	GroundSpeed        uint16
	WritableLength     uint16
	WritableOnceLength uint16
	Light              LightInfo
	Displacement       Displacement
	Elevation          uint16
	MinimapColor       uint16
	LensHelp           uint16
	ClothSlot          uint16
	DefaultAction      uint16

	// Market is nil unless FLAG_MARKET is set.
	Market *MarketData

	// Only present in appearances files.
	Name               string
	NPCSaleData        []NPCSaleData
	FormerObjectTypeID uint32
	CyclopediaType     uint32

	frameGroups    [FRAME_GROUP_COUNT]FrameGroup
	duplicated     bool
	duplicatedFrom FrameGroupKind
}

func newThing(id uint16, c Category) *Thing {
	return &Thing{
		ID:          id,
		Category:    c,
		GroundSpeed: 100,
	}
}

// FrameGroup returns the frame group of the passed kind. Unused kinds return a
// zero-valued group.
func (t *Thing) FrameGroup(kind FrameGroupKind) *FrameGroup {
	if kind >= FRAME_GROUP_COUNT {
		kind = FRAME_GROUP_DEFAULT
	}
	return &t.frameGroups[kind]
}

// Animation returns the animation of the passed frame group, following a
// shared reference to the owning group when needed. It returns nil for
// groups that do not animate.
func (t *Thing) Animation(kind FrameGroupKind) *Animation {
	fg := t.FrameGroup(kind)
	if fg.animationShared {
		return t.frameGroups[fg.animationOwner].animation
	}
	return fg.animation
}

// OwnedAnimations returns each animation the thing holds exactly once. Shared
// references are not repeated.
func (t *Thing) OwnedAnimations() []*Animation {
	var out []*Animation
	for i := range t.frameGroups {
		fg := &t.frameGroups[i]
		if fg.animation != nil && !fg.animationShared {
			out = append(out, fg.animation)
		}
	}
	return out
}

// DuplicatedFrom reports whether an outfit's idle and moving groups were
// populated from a single source group, and which group that was.
func (t *Thing) DuplicatedFrom() (FrameGroupKind, bool) {
	return t.duplicatedFrom, t.duplicated
}

// Sprite returns the sprite id at the passed coordinates of a frame group, or
// 0 when there is nothing to draw.
func (t *Thing) Sprite(kind FrameGroupKind, w, h, layer, x, y, z, phase int) uint32 {
	if kind >= FRAME_GROUP_COUNT {
		return 0
	}
	return t.frameGroups[kind].Sprite(w, h, layer, x, y, z, phase)
}

// DisplayName returns the market name if there is one, or the name from an
// appearances file otherwise.
func (t *Thing) DisplayName() string {
	if t.Market != nil && t.Market.Name != "" {
		return t.Market.Name
	}
	return t.Name
}

// duplicateFrameGroup copies the layout and sprites of one group into
// another. An animation is not copied; the destination refers to the
// source's.
func (t *Thing) duplicateFrameGroup(from, to FrameGroupKind) {
	src := &t.frameGroups[from]
	t.frameGroups[to] = FrameGroup{
		ID:       src.ID,
		Width:    src.Width,
		Height:   src.Height,
		RealSize: src.RealSize,
		Layers:   src.Layers,
		PatternX: src.PatternX,
		PatternY: src.PatternY,
		PatternZ: src.PatternZ,
		Phases:   src.Phases,
		Sprites:  append([]uint32(nil), src.Sprites...),
	}
	if src.animation != nil {
		t.frameGroups[to].animationShared = true
		t.frameGroups[to].animationOwner = from
	}
	t.duplicated = true
	t.duplicatedFrom = from
}

func (t *Thing) String() string {
	return fmt.Sprintf("%s %d", t.Category, t.ID)
}
