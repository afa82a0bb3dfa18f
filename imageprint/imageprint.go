// Package imageprint prints images and color swatches on a terminal.
//
// This package has an API with no stability guarantees.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
)

// Mode selects how pixels are turned into terminal output.
type Mode int

const (
	// MODE_24BIT changes the background with 24-bit color escape sequences.
	MODE_24BIT Mode = iota
	// MODE_256COLOR leaves the escape sequences to gookit/color, which picks
	// what the terminal supports.
	MODE_256COLOR
	// MODE_NOCOLOR prints no escape sequences; only useful without blanks.
	MODE_NOCOLOR
	// MODE_ITERM sends a whole PNG using iTerm2's inline image sequence.
	MODE_ITERM
	// MODE_RASTERM uses kitty, iTerm2 or sixel graphics, whichever the
	// terminal supports.
	MODE_RASTERM
)

// Printer prints to a terminal.
type Printer struct {
	w    io.Writer
	mode Mode
	// blanks prints each pixel as two spaces instead of ascii art shades.
	blanks bool
}

func New(w io.Writer, mode Mode, blanks bool) *Printer {
	return &Printer{w: w, mode: mode, blanks: blanks}
}

func (p *Printer) shade(col ic.Color) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if p.mode != MODE_NOCOLOR {
			fmt.Fprintf(p.w, "\x1b[0m")
		}
		fmt.Fprintf(p.w, "  ")
		return
	}

	s := "  "
	if !p.blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			s = ".."
		case a < 64:
			s = "--"
		case a < 128:
			s = "=="
		default:
			s = "##"
		}
	}

	switch p.mode {
	case MODE_NOCOLOR:
		fmt.Fprint(p.w, s)
	case MODE_256COLOR:
		fmt.Fprint(p.w, color.RGB(uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), true).Sprintf("%s", s))
	default:
		fmt.Fprintf(p.w, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", uint8(cR>>8), uint8(cG>>8), uint8(cB>>8), s)
	}
}

// Print draws an image.
func (p *Printer) Print(i image.Image) {
	switch p.mode {
	case MODE_ITERM:
		p.printITerm(i, "image.png")
		return
	case MODE_RASTERM:
		if p.printRasTerm(i) {
			return
		}
	}

	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			p.shade(i.At(x, y))
		}
		if p.mode != MODE_NOCOLOR {
			fmt.Fprintf(p.w, "\x1b[0m")
		}
		fmt.Fprintf(p.w, "\n")
	}
}

// Swatch prints a single color block followed by a label.
func (p *Printer) Swatch(c ic.Color, label string) {
	p.shade(c)
	p.shade(c)
	fmt.Fprintf(p.w, " %s\n", label)
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func (p *Printer) printITerm(i image.Image, fn string) {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	png.Encode(bEnc, i)
	bEnc.Close()
	fmt.Fprintf(p.w, "\n\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
}
