// Package dat decodes the client-side thing catalog: the legacy Tibia.dat
// file and the later protobuf-encoded appearances file.
//
// Both encodings are normalized into the same model. A Dataset holds one dense
// slice of things per category (items, outfits, effects and distance effects,
// also known as missiles), indexed by client id. Each Thing carries its
// attribute flags, the scalar attributes those flags enable, optional market
// data and up to three frame groups describing how its sprites are laid out.
//
// The decoder performs no pixel I/O. Sprite ids it produces are opaque keys
// for a sprite loader.
package dat
