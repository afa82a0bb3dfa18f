//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

var kittySizeReply = regexp.MustCompile(`\[4;(\d+);(\d+)t`)

// TermSize is the terminal size in cells and, where known, in pixels.
type TermSize struct {
	WSRow, WSCol       uint
	WSXPixel, WSYPixel uint
}

// GetTermSize asks the controlling terminal for its size, falling back to
// stdin.
func GetTermSize() (TermSize, error) {
	var err error
	var f *os.File
	if f, err = os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666); err == nil {
		// based on snippet: https://sw.kovidgoyal.net/kitty/graphics-protocol/#getting-the-window-size
		// see also: https://github.com/influxdata/docker-client/blob/916439ee97e9a5c5067949d0705774cb33d5c780/pkg/term/winsize.go
		defer f.Close()
		var sz *unix.Winsize
		if sz, err = unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ); err == nil {
			if sz.Xpixel == 0 && sz.Ypixel == 0 && os.Getenv("TERM") == "xterm-kitty" {
				// Kitty answers CSI 14 t with the window size in pixels.
				glog.V(2).Infof("no pixel size from TIOCGWINSZ, asking kitty")
				state, err := terminal.MakeRaw(int(f.Fd()))
				if err == nil {
					defer terminal.Restore(int(f.Fd()), state) // ignoring error
					// hack to populate the size on kitty
					fmt.Printf("\033[14t")
					b := make([]byte, 1)
					_, err := os.Stdin.Read(b)
					if err == nil && b[0] == 033 {
						// <ESC>[4;<height>;<width>t
						reader := bufio.NewReader(os.Stdin)
						s, err := reader.ReadString('t')
						if err == nil {
							matches := kittySizeReply.FindStringSubmatch(s)
							if len(matches) == 3 {
								heightStr := matches[1]
								widthStr := matches[2]

								height, errH := strconv.Atoi(heightStr)
								width, errW := strconv.Atoi(widthStr)

								if errH == nil && errW == nil {
									sz.Xpixel = uint16(width)
									sz.Ypixel = uint16(height)
								}
							}
						}
					}
				}

			}
			return TermSize{WSRow: uint(sz.Row), WSCol: uint(sz.Col), WSXPixel: uint(sz.Xpixel), WSYPixel: uint(sz.Ypixel)}, nil
		}
	}
	var w, h int
	if w, h, err = terminal.GetSize(int(os.Stdin.Fd())); err == nil {
		return TermSize{WSRow: uint(h), WSCol: uint(w)}, nil
	}
	return TermSize{}, errors.Wrap(err, "getting terminal size")
}
