package main

import (
	"fmt"
	"io"

	"badc0de.net/pkg/go-tibia-things/dat"
)

func printStats(w io.Writer, ds *dat.Dataset) {
	fmt.Fprintf(w, "format: %s\n", ds.Format())
	fmt.Fprintf(w, "signature: %08x\n", ds.Signature())
	for c := dat.CATEGORY_ITEM; c < dat.CATEGORY_COUNT; c++ {
		fmt.Fprintf(w, "%s: %d things, max id %d\n", c, ds.Count(c), ds.MaxID(c))
	}
}

func listThings(w io.Writer, ds *dat.Dataset, c dat.Category) {
	ds.Things(c, func(t *dat.Thing) bool {
		if n := t.DisplayName(); n != "" {
			fmt.Fprintf(w, "%d\t%s\n", t.ID, n)
		} else {
			fmt.Fprintf(w, "%d\n", t.ID)
		}
		return true
	})
}

func describe(w io.Writer, t *dat.Thing) {
	fmt.Fprintf(w, "%s\n", t)
	if n := t.DisplayName(); n != "" {
		fmt.Fprintf(w, "name: %s\n", n)
	}
	fmt.Fprintf(w, "flags: %s\n", t.Flags)

	if t.Flags.Has(dat.FLAG_GROUND) {
		fmt.Fprintf(w, "ground speed: %d\n", t.GroundSpeed)
	}
	if t.Flags.Has(dat.FLAG_WRITABLE) {
		fmt.Fprintf(w, "writable length: %d\n", t.WritableLength)
	}
	if t.Flags.Has(dat.FLAG_WRITABLE_ONCE) {
		fmt.Fprintf(w, "writable once length: %d\n", t.WritableOnceLength)
	}
	if t.Flags.Has(dat.FLAG_LIGHT) {
		fmt.Fprintf(w, "light: intensity %d color %d\n", t.Light.Intensity, t.Light.Color)
	}
	if t.Flags.Has(dat.FLAG_DISPLACEMENT) {
		fmt.Fprintf(w, "displacement: %d,%d\n", t.Displacement.X, t.Displacement.Y)
	}
	if t.Flags.Has(dat.FLAG_ELEVATION) {
		fmt.Fprintf(w, "elevation: %d\n", t.Elevation)
	}
	if t.Flags.Has(dat.FLAG_MINIMAP_COLOR) {
		fmt.Fprintf(w, "minimap color: %d\n", t.MinimapColor)
	}
	if t.Flags.Has(dat.FLAG_LENS_HELP) {
		fmt.Fprintf(w, "lens help: %d\n", t.LensHelp)
	}
	if t.Flags.Has(dat.FLAG_CLOTH) {
		fmt.Fprintf(w, "cloth slot: %d\n", t.ClothSlot)
	}
	if t.Flags.Has(dat.FLAG_DEFAULT_ACTION) {
		fmt.Fprintf(w, "default action: %d\n", t.DefaultAction)
	}
	if m := t.Market; m != nil {
		fmt.Fprintf(w, "market: %q category %d trade as %d show as %d vocation %d level %d\n",
			m.Name, m.Category, m.TradeAs, m.ShowAs, m.RestrictVocation, m.MinimumLevel)
	}
	for _, s := range t.NPCSaleData {
		fmt.Fprintf(w, "npc: %s in %s sells for %d buys for %d\n", s.Name, s.Location, s.SalePrice, s.BuyPrice)
	}

	for k := dat.FRAME_GROUP_DEFAULT; k < dat.FRAME_GROUP_COUNT; k++ {
		fg := t.FrameGroup(k)
		if fg.SpriteCount() == 0 {
			continue
		}
		fmt.Fprintf(w, "%s group: %dx%d real size %d, %d layers, patterns %dx%dx%d, %d phases, %d sprites\n",
			k, fg.Width, fg.Height, fg.RealSize, fg.Layers, fg.PatternX, fg.PatternY, fg.PatternZ, fg.Phases, len(fg.Sprites))
		if from, ok := fg.SharesAnimation(); ok {
			fmt.Fprintf(w, "  animation shared with %s group\n", from)
		} else if a := t.Animation(k); a != nil {
			describeAnimation(w, a)
		}
		fmt.Fprintf(w, "  sprites: %v\n", fg.Sprites)
	}
	if from, ok := t.DuplicatedFrom(); ok {
		fmt.Fprintf(w, "duplicated from %s group\n", from)
	}
}

func describeAnimation(w io.Writer, a *dat.Animation) {
	start := fmt.Sprintf("%d", a.StartPhase)
	if a.RandomStartPhase() {
		start = "random"
	}
	loop := fmt.Sprintf("%d loops", a.LoopCount)
	switch {
	case a.Infinite():
		loop = "infinite"
	case a.PingPong():
		loop = "ping-pong"
	}
	fmt.Fprintf(w, "  animation: start %s, %s, synchronized %t\n", start, loop, a.Synchronized)
	for i, p := range a.Phases {
		fmt.Fprintf(w, "    phase %d: %d-%dms\n", i, p.Min, p.Max)
	}
}
