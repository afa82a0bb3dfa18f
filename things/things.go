// Package things is a registry of renderable things backed by a loaded
// catalog. It wraps catalog entries in per-category types with helpers used by
// the binaries and the web inspector.
package things

import (
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-tibia-things/dat"
)

var (
	// ErrNoDataset is returned by lookups on a registry with no catalog.
	ErrNoDataset = errors.New("things: no dataset")
	// ErrNotFound is returned for ids the catalog has no thing for.
	ErrNotFound = errors.New("things: not found")
)

// spriteSize is the edge length, in pixels, of one sprite tile.
const spriteSize = 32

// Thing wraps a single catalog entry.
type Thing struct {
	dataset *dat.Thing
}

// Descriptor returns the underlying catalog entry.
func (th *Thing) Descriptor() *dat.Thing {
	return th.dataset
}

func (th *Thing) ID() uint16 {
	return th.dataset.ID
}

func (th *Thing) Category() dat.Category {
	return th.dataset.Category
}

// Name returns the market or appearance name, which may be empty.
func (th *Thing) Name() string {
	return th.dataset.DisplayName()
}

func (th *Thing) LightInfo() dat.LightInfo {
	return th.dataset.Light
}

// GraphicsSize returns the pixel size of the default frame group.
func (th *Thing) GraphicsSize() struct{ W, H int } {
	fg := th.dataset.FrameGroup(dat.FRAME_GROUP_DEFAULT)
	return struct{ W, H int }{W: int(fg.Width) * spriteSize, H: int(fg.Height) * spriteSize}
}

// Sprites returns the sprite ids of a frame group in table order.
func (th *Thing) Sprites(kind dat.FrameGroupKind) []uint32 {
	return th.dataset.FrameGroup(kind).Sprites
}

func (th *Thing) String() string {
	if n := th.Name(); n != "" {
		return th.dataset.String() + " (" + n + ")"
	}
	return th.dataset.String()
}

type Item struct {
	*Thing
}

func (i *Item) Stackable() bool {
	return i.dataset.Flags.Has(dat.FLAG_STACKABLE)
}

func (i *Item) Container() bool {
	return i.dataset.Flags.Has(dat.FLAG_CONTAINER)
}

// GroundSpeed returns the walking speed over a ground item, or 0 for items
// that are not ground.
func (i *Item) GroundSpeed() uint16 {
	if !i.dataset.Flags.Has(dat.FLAG_GROUND) {
		return 0
	}
	return i.dataset.GroundSpeed
}

type Outfit struct {
	*Thing
}

func (o *Outfit) Idle() *dat.FrameGroup {
	return o.dataset.FrameGroup(dat.FRAME_GROUP_IDLE)
}

func (o *Outfit) Moving() *dat.FrameGroup {
	return o.dataset.FrameGroup(dat.FRAME_GROUP_MOVING)
}

// Directions returns how many directions the outfit is drawn facing.
func (o *Outfit) Directions() int {
	return int(o.Idle().PatternX)
}

// Addons returns the number of addon variants, the base outfit included.
func (o *Outfit) Addons() int {
	return int(o.Idle().PatternY)
}

// Mountable reports whether the outfit has a mounted variant.
func (o *Outfit) Mountable() bool {
	return o.Idle().PatternZ > 1
}

type Effect struct {
	*Thing
}

type Missile struct {
	*Thing
}

// DirectionSprite returns the sprite of a missile flying in direction
// (dx, dy), each in [-1, 1]. Missiles lay their directions out in a 3x3
// pattern grid.
func (m *Missile) DirectionSprite(dx, dy int) uint32 {
	return m.dataset.Sprite(dat.FRAME_GROUP_DEFAULT, 0, 0, 0, dx+1, dy+1, 0, 0)
}

// Things is the registry.
type Things struct {
	dataset *dat.Dataset
}

func New() (*Things, error) {
	return &Things{}, nil
}

func (t *Things) AddTibiaDataset(d *dat.Dataset) error {
	if d == nil {
		return errors.New("things: adding nil dataset")
	}
	t.dataset = d
	return nil
}

// Dataset returns the catalog, which is nil until one is added.
func (t *Things) Dataset() *dat.Dataset {
	return t.dataset
}

func (t *Things) TibiaDatasetSignature() uint32 {
	if t.dataset == nil {
		return 0
	}
	return t.dataset.Signature()
}

// Thing returns the thing with the passed id in a category.
func (t *Things) Thing(c dat.Category, id uint16) (*Thing, error) {
	if t.dataset == nil {
		return nil, ErrNoDataset
	}
	d := t.dataset.Thing(c, id)
	if d == nil {
		return nil, errors.Wrapf(ErrNotFound, "%s %d", c, id)
	}
	return &Thing{dataset: d}, nil
}

// Item returns an item by its client id.
func (t *Things) Item(clientID uint16) (*Item, error) {
	th, err := t.Thing(dat.CATEGORY_ITEM, clientID)
	if err != nil {
		return nil, err
	}
	return &Item{th}, nil
}

func (t *Things) Outfit(id uint16) (*Outfit, error) {
	th, err := t.Thing(dat.CATEGORY_OUTFIT, id)
	if err != nil {
		return nil, err
	}
	return &Outfit{th}, nil
}

func (t *Things) Effect(id uint16) (*Effect, error) {
	th, err := t.Thing(dat.CATEGORY_EFFECT, id)
	if err != nil {
		return nil, err
	}
	return &Effect{th}, nil
}

func (t *Things) Missile(id uint16) (*Missile, error) {
	th, err := t.Thing(dat.CATEGORY_DISTANCE_EFFECT, id)
	if err != nil {
		return nil, err
	}
	return &Missile{th}, nil
}
