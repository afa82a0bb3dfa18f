package imageprint

import (
	"image"
)

func (p *Printer) printRasTerm(i image.Image) bool {
	return false
}
