// Command thingprint prints what a Tibia.dat or appearances catalog knows
// about a single thing, along with its sprite layout and light.
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/imageprint"
	"badc0de.net/pkg/go-tibia-things/things/full"
)

var (
	category = flag.String("category", "item", "category of the thing to print: item, outfit, effect or missile")
	id       = flag.Int("id", 0, "id of the thing to print; 0 prints catalog statistics")
	group    = flag.String("group", "default", "frame group to print: default, moving or initial")
	patX     = flag.Int("x", 0, "pattern x of the layout")
	patY     = flag.Int("y", 0, "pattern y of the layout")
	patZ     = flag.Int("z", 0, "pattern z of the layout")
	phase    = flag.Int("phase", 0, "animation phase of the layout")
	tile     = flag.Int("tile", 4, "pixels per sprite in the layout")

	layout = flag.Bool("layout", true, "whether to print the sprite layout")
	light  = flag.Bool("light", false, "whether to print a preview of the emitted light")
	swatch = flag.Bool("swatch", true, "whether to print color swatches for light and minimap colors")
	list   = flag.Bool("list", false, "whether to list every thing in the category instead")

	downsize = flag.Bool("downsize", true, "whether to fit images to the terminal")
	col      = flag.Bool("col", true, "whether to print with color")
	col256   = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm    = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm  = flag.Bool("rasterm", false, "whether to print with kitty, iterm or sixel graphics using rasterm")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
)

func printer() *imageprint.Printer {
	mode := imageprint.MODE_24BIT
	switch {
	case *rasterm:
		mode = imageprint.MODE_RASTERM
	case !*col:
		mode = imageprint.MODE_NOCOLOR
	case *iterm:
		mode = imageprint.MODE_ITERM
	case *col256:
		mode = imageprint.MODE_256COLOR
	}
	return imageprint.New(os.Stdout, mode, *blanks)
}

func main() {
	full.SetupFilePathFlags()
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	th, _, err := full.FromFilePathFlags()
	if err != nil {
		glog.Exitf("loading catalog: %v", err)
	}
	ds := th.Dataset()
	glog.Infof("loaded %s catalog for client %s with features %q", ds.Format(), ds.ClientVersion(), ds.Features())

	c, ok := dat.ParseCategory(*category)
	if !ok {
		glog.Exitf("unknown category %q", *category)
	}

	if *list {
		listThings(os.Stdout, ds, c)
		return
	}
	if *id == 0 {
		printStats(os.Stdout, ds)
		return
	}

	thing, err := th.Thing(c, uint16(*id))
	if err != nil {
		glog.Exitf("looking up %s %d: %v", c, *id, err)
	}
	kind, ok := dat.ParseFrameGroupKind(*group)
	if !ok {
		glog.Exitf("unknown frame group %q", *group)
	}

	if err := checkCoordinates(map[string]int{"x": *patX, "y": *patY, "z": *patZ, "phase": *phase}); err != nil {
		glog.Exitf("bad layout coordinates: %v", err)
	}

	p := printer()
	describe(os.Stdout, thing.Descriptor())
	if *swatch {
		printSwatches(p, thing.Descriptor())
	}
	if *layout {
		if img := thing.LayoutFrame(kind, *patX, *patY, *patZ, *phase, *tile); img != nil {
			fmt.Printf("\n%s layout, pattern %d,%d,%d phase %d:\n", kind, *patX, *patY, *patZ, *phase)
			out(p, img)
		} else {
			fmt.Printf("\nno %s frame group\n", kind)
		}
	}
	if *light {
		if img := thing.LightPreview(3); img != nil {
			fmt.Printf("\nlight:\n")
			out(p, img)
		}
	}
}

// checkCoordinates rejects negative pattern and phase indices.
func checkCoordinates(coords map[string]int) error {
	for name, v := range coords {
		if v < 0 {
			return errors.Errorf("%s is %d, want a non-negative number", name, v)
		}
	}
	return nil
}

func printSwatches(p *imageprint.Printer, t *dat.Thing) {
	if t.Flags.Has(dat.FLAG_LIGHT) {
		p.Swatch(dat.DatasetColor(uint8(t.Light.Color)), fmt.Sprintf("light color %d", t.Light.Color))
	}
	if t.Flags.Has(dat.FLAG_MINIMAP_COLOR) {
		p.Swatch(dat.DatasetColor(uint8(t.MinimapColor)), fmt.Sprintf("minimap color %d", t.MinimapColor))
	}
}
