package main

import (
	"image"

	"github.com/golang/glog"
	"github.com/nfnt/resize"

	"badc0de.net/pkg/go-tibia-things/imageprint"
)

func out(p *imageprint.Printer, img image.Image) {
	if *downsize {
		termSize, err := GetTermSize()
		if err != nil {
			glog.V(1).Infof("not downsizing: %v", err)
		} else if (termSize.WSXPixel != 0 && termSize.WSYPixel != 0) && (*rasterm || *iterm) {
			// Native size is preferred when an image rather than pixels will likely be printed.
			img = resize.Thumbnail(termSize.WSXPixel/2, termSize.WSYPixel/2, img, resize.Lanczos3)
		} else if termSize.WSCol != 0 && termSize.WSRow != 0 {
			// Each pixel takes two columns and one row.
			img = resize.Thumbnail(termSize.WSCol/2, termSize.WSRow-1, img, resize.Lanczos3)
		}
	}
	p.Print(img)
}
