package paths

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DataDirEnv names an environment variable holding a directory that is
// searched before all others.
const DataDirEnv = "TIBIA_THINGS_DATA"

func possibleDirs() []string {
	var dirs []string
	if d := os.Getenv(DataDirEnv); d != "" {
		dirs = append(dirs, d)
	}
	dirs = append(dirs,
		"datafiles",
		filepath.Join(os.Getenv("GOPATH"), "src/badc0de.net/pkg/go-tibia-things/datafiles"),
		filepath.Join(os.Getenv("TEST_SRCDIR"), "go_tibia_things/datafiles"),
		os.Args[0]+".runfiles/go_tibia_things/datafiles",
		os.Args[0]+".runfiles/go_tibia_things/external/tibia854",
	)
	return dirs
}

func possiblePaths(fileName string) []string {
	dirs := possibleDirs()
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, filepath.Join(d, fileName))
	}
	return out
}

func openFS(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	path := Find(fileName)
	if path == "" {
		return nil, errors.Errorf("paths: %s not found in %v", fileName, possibleDirs())
	}
	return noFindOpenFS(path)
}

func noFindOpenFS(fileName string) (interface {
	io.ReadCloser
	io.Seeker
}, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "paths: opening %s", fileName)
	}
	return f, nil
}
