package dat

import (
	"strings"
)

// Flags is the set of boolean capabilities of a thing. Flags are only ever set
// while decoding; nothing clears them afterwards.
type Flags uint64

// Enumeration containing possible bits in the Flags of a thing.
const (
	FLAG_GROUND Flags = 1 << iota
	FLAG_GROUND_BORDER
	FLAG_ON_BOTTOM
	FLAG_ON_TOP
	FLAG_CONTAINER
	FLAG_STACKABLE
	FLAG_FORCE_USE
	FLAG_MULTI_USE
	FLAG_WRITABLE
	FLAG_WRITABLE_ONCE
	FLAG_FLUID_CONTAINER
	FLAG_SPLASH
	FLAG_NOT_WALKABLE
	FLAG_NOT_MOVEABLE
	FLAG_BLOCK_PROJECTILE
	FLAG_NOT_PATHABLE
	FLAG_PICKUPABLE
	FLAG_HANGABLE
	FLAG_HOOK_SOUTH
	FLAG_HOOK_EAST
	FLAG_ROTATEABLE
	FLAG_LIGHT
	FLAG_DONT_HIDE
	FLAG_TRANSLUCENT
	FLAG_DISPLACEMENT
	FLAG_ELEVATION
	FLAG_LYING_CORPSE
	FLAG_ANIMATE_ALWAYS
	FLAG_MINIMAP_COLOR
	FLAG_LENS_HELP
	FLAG_FULL_GROUND
	FLAG_LOOK_THROUGH
	FLAG_CLOTH
	FLAG_MARKET
	FLAG_DEFAULT_ACTION
	FLAG_WRAPABLE
	FLAG_UNWRAPABLE
	FLAG_TOP_EFFECT
	FLAG_FLOOR_CHANGE
	FLAG_NO_MOVE_ANIMATION
	FLAG_USABLE
	FLAG_CHARGEABLE
	FLAG_CORPSE
	FLAG_PLAYER_CORPSE

	FLAG_LAST
)

var flagNames = map[Flags]string{
	FLAG_GROUND:            "ground",
	FLAG_GROUND_BORDER:     "ground border",
	FLAG_ON_BOTTOM:         "on bottom",
	FLAG_ON_TOP:            "on top",
	FLAG_CONTAINER:         "container",
	FLAG_STACKABLE:         "stackable",
	FLAG_FORCE_USE:         "force use",
	FLAG_MULTI_USE:         "multi use",
	FLAG_WRITABLE:          "writable",
	FLAG_WRITABLE_ONCE:     "writable once",
	FLAG_FLUID_CONTAINER:   "fluid container",
	FLAG_SPLASH:            "splash",
	FLAG_NOT_WALKABLE:      "not walkable",
	FLAG_NOT_MOVEABLE:      "not moveable",
	FLAG_BLOCK_PROJECTILE:  "block projectile",
	FLAG_NOT_PATHABLE:      "not pathable",
	FLAG_PICKUPABLE:        "pickupable",
	FLAG_HANGABLE:          "hangable",
	FLAG_HOOK_SOUTH:        "hook south",
	FLAG_HOOK_EAST:         "hook east",
	FLAG_ROTATEABLE:        "rotateable",
	FLAG_LIGHT:             "light",
	FLAG_DONT_HIDE:         "don't hide",
	FLAG_TRANSLUCENT:       "translucent",
	FLAG_DISPLACEMENT:      "displacement",
	FLAG_ELEVATION:         "elevation",
	FLAG_LYING_CORPSE:      "lying corpse",
	FLAG_ANIMATE_ALWAYS:    "animate always",
	FLAG_MINIMAP_COLOR:     "minimap color",
	FLAG_LENS_HELP:         "lens help",
	FLAG_FULL_GROUND:       "full ground",
	FLAG_LOOK_THROUGH:      "look through",
	FLAG_CLOTH:             "cloth",
	FLAG_MARKET:            "market",
	FLAG_DEFAULT_ACTION:    "default action",
	FLAG_WRAPABLE:          "wrapable",
	FLAG_UNWRAPABLE:        "unwrapable",
	FLAG_TOP_EFFECT:        "top effect",
	FLAG_FLOOR_CHANGE:      "floor change",
	FLAG_NO_MOVE_ANIMATION: "no move animation",
	FLAG_USABLE:            "usable",
	FLAG_CHARGEABLE:        "chargeable",
	FLAG_CORPSE:            "corpse",
	FLAG_PLAYER_CORPSE:     "player corpse",
}

// Has reports whether all bits of g are set in f.
func (f Flags) Has(g Flags) bool {
	return f&g == g
}

func (f Flags) String() string {
	out := make([]string, 0, 8)
	for bit := FLAG_GROUND; bit < FLAG_LAST; bit <<= 1 {
		if f&bit == 0 {
			continue
		}
		out = append(out, flagNames[bit])
	}
	return strings.Join(out, ", ")
}
