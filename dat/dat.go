package dat

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Format identifies the encoding a Dataset was loaded from.
type Format int

const (
	FORMAT_NONE Format = iota
	FORMAT_DAT
	FORMAT_APPEARANCES
)

func (f Format) String() string {
	switch f {
	case FORMAT_DAT:
		return "dat"
	case FORMAT_APPEARANCES:
		return "appearances"
	}
	return "none"
}

// Dataset is the thing catalog: every item, outfit, effect and distance
// effect a client can render.
//
// Each load call replaces the whole catalog. A failed load leaves it empty.
// Once loaded, a Dataset is not modified and can be read from any number of
// goroutines.
type Dataset struct {
	Header header

	opts     Options
	format   Format
	features Features
	things   [CATEGORY_COUNT][]*Thing
}

// New returns an empty Dataset that will decode files using the passed
// options.
func New(opts Options) *Dataset {
	return &Dataset{
		opts:     opts,
		features: opts.features(),
	}
}

// NewDataset decodes a Tibia.dat from the passed reader.
func NewDataset(r io.Reader, opts Options) (*Dataset, error) {
	ds := New(opts)
	if err := ds.ReadDat(r); err != nil {
		return nil, err
	}
	return ds, nil
}

// Unload clears the catalog.
func (ds *Dataset) Unload() {
	ds.Header = header{}
	ds.format = FORMAT_NONE
	ds.things = [CATEGORY_COUNT][]*Thing{}
}

// LoadDat replaces the catalog with the contents of the Tibia.dat at path.
func (ds *Dataset) LoadDat(path string) error {
	ds.Unload()
	buf, err := readFile(path)
	if err != nil {
		return err
	}
	return ds.decodeDat(buf)
}

// ReadDat replaces the catalog with a Tibia.dat read from r.
func (ds *Dataset) ReadDat(r io.Reader) error {
	ds.Unload()
	buf, err := readAll(r)
	if err != nil {
		return err
	}
	return ds.decodeDat(buf)
}

func (ds *Dataset) decodeDat(buf []byte) error {
	h, things, err := decodeLegacy(buf, ds.opts.Version, ds.features)
	if err != nil {
		return errors.Wrapf(err, "decoding dat for client %s", ds.opts.Version)
	}
	ds.Header = h
	ds.things = things
	ds.format = FORMAT_DAT
	glog.Infof("loaded dat %08x (client %s, %s): %s", h.Signature, ds.opts.Version, ds.features, ds.summary())
	return nil
}

// LoadAppearances replaces the catalog with the contents of the appearances
// file at path.
func (ds *Dataset) LoadAppearances(path string) error {
	ds.Unload()
	buf, err := readFile(path)
	if err != nil {
		return err
	}
	return ds.decodeAppearances(buf)
}

// ReadAppearances replaces the catalog with an appearances file read from r.
func (ds *Dataset) ReadAppearances(r io.Reader) error {
	ds.Unload()
	buf, err := readAll(r)
	if err != nil {
		return err
	}
	return ds.decodeAppearances(buf)
}

func (ds *Dataset) decodeAppearances(buf []byte) error {
	things, err := decodeAppearances(buf)
	if err != nil {
		return errors.Wrap(err, "decoding appearances")
	}
	ds.things = things
	ds.format = FORMAT_APPEARANCES
	glog.Infof("loaded appearances: %s", ds.summary())
	return nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer f.Close()
	return readAll(f)
}

func readAll(r io.Reader) ([]byte, error) {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, "reading catalog")
	}
	return buf.Bytes(), nil
}

func (ds *Dataset) summary() string {
	return fmt.Sprintf("%d items, %d outfits, %d effects, %d distance effects",
		ds.Count(CATEGORY_ITEM), ds.Count(CATEGORY_OUTFIT), ds.Count(CATEGORY_EFFECT), ds.Count(CATEGORY_DISTANCE_EFFECT))
}

// Format returns which encoding the catalog was loaded from.
func (ds *Dataset) Format() Format {
	return ds.format
}

// ClientVersion returns the client version the dataset decodes for.
func (ds *Dataset) ClientVersion() ClientVersion {
	return ds.opts.Version
}

// Features returns the layout features in effect.
func (ds *Dataset) Features() Features {
	return ds.features
}

// Signature returns the revision from the Tibia.dat header. Appearances
// files have none and report 0.
func (ds *Dataset) Signature() uint32 {
	return ds.Header.Signature
}

// Thing returns the thing with the passed id, or nil if the category has no
// such thing.
func (ds *Dataset) Thing(c Category, id uint16) *Thing {
	if c < 0 || c >= CATEGORY_COUNT || int(id) >= len(ds.things[c]) {
		return nil
	}
	return ds.things[c][id]
}

func (ds *Dataset) Item(id uint16) *Thing           { return ds.Thing(CATEGORY_ITEM, id) }
func (ds *Dataset) Outfit(id uint16) *Thing         { return ds.Thing(CATEGORY_OUTFIT, id) }
func (ds *Dataset) Effect(id uint16) *Thing         { return ds.Thing(CATEGORY_EFFECT, id) }
func (ds *Dataset) DistanceEffect(id uint16) *Thing { return ds.Thing(CATEGORY_DISTANCE_EFFECT, id) }

// MaxID returns the highest id slot of a category, or 0 if it is empty.
func (ds *Dataset) MaxID(c Category) uint16 {
	if c < 0 || c >= CATEGORY_COUNT || len(ds.things[c]) == 0 {
		return 0
	}
	return uint16(len(ds.things[c]) - 1)
}

func (ds *Dataset) MaxItemID() uint16   { return ds.MaxID(CATEGORY_ITEM) }
func (ds *Dataset) MaxOutfitID() uint16 { return ds.MaxID(CATEGORY_OUTFIT) }

// Count returns the number of things present in a category. Placeholder
// slots are not counted.
func (ds *Dataset) Count(c Category) int {
	if c < 0 || c >= CATEGORY_COUNT {
		return 0
	}
	n := 0
	for _, t := range ds.things[c] {
		if t != nil {
			n++
		}
	}
	return n
}

// Things calls fn for each thing of a category in ascending id order until fn
// returns false.
func (ds *Dataset) Things(c Category, fn func(*Thing) bool) {
	if c < 0 || c >= CATEGORY_COUNT {
		return
	}
	for _, t := range ds.things[c] {
		if t != nil && !fn(t) {
			return
		}
	}
}
