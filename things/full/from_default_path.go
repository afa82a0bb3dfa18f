package full

import (
	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/paths"
	"badc0de.net/pkg/go-tibia-things/things"
)

// FromDefaultPaths finds a data file using default filepaths as found by the
// paths package, and adds it to a new Things structure.
//
// Appropriate for tests or web frontends. Inappropriate for clients where the
// path should be specifiable by the user on the command line.
func FromDefaultPaths(opts dat.Options) (*things.Things, error) {
	return FromPaths(paths.Find("Tibia.dat"), paths.Find("appearances.dat"), opts)
}
