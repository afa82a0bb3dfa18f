package paths

import (
	"io"
	"os"

	"github.com/golang/glog"
)

// Find locates the passed datafile shortname and returns an absolute or
// relative path to find the datafile at.
//
// For example, for "Tibia.dat" it may return
// "mybinary.runfiles/go_tibia_things/datafiles/Tibia.dat".
func Find(fileName string) string {
	candidates := possiblePaths(fileName)

	for _, path := range candidates {
		if f, err := os.Open(path); err == nil {
			f.Close()
			glog.V(1).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}

	return ""
}

// Dirs returns the directories Find looks in, in order.
func Dirs() []string {
	return possibleDirs()
}

// Open locates the passed file in the same locations that Find would look, and
// opens it. If Find returns an empty string, an error is returned.
func Open(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	return openFS(fileName)
}

// NoFindOpen opens the file at exactly the passed path.
func NoFindOpen(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	return noFindOpenFS(fileName)
}
