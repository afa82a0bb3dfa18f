// Package full is a helper to populate things.Things from data files found on
// disk, named by flags or named in a config.
package full

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-tibia-things/dat"
	"badc0de.net/pkg/go-tibia-things/paths"
	"badc0de.net/pkg/go-tibia-things/things"
)

// FromPaths populates a things.Things datastructure using the data file at
// one of the passed paths. An appearances file is preferred over a Tibia.dat.
// Any path passed as an empty string will be omitted; at least one is needed.
func FromPaths(tibiaDatPath, appearancesPath string, opts dat.Options) (*things.Things, error) {
	t, err := things.New()
	if err != nil {
		return nil, errors.Wrap(err, "creating thing registry")
	}

	ds := dat.New(opts)
	switch {
	case appearancesPath != "":
		glog.V(1).Infof("full.FromPaths(): opening appearances: %q", appearancesPath)
		f, err := paths.NoFindOpen(appearancesPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening appearances file for add")
		}
		err = ds.ReadAppearances(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, "parsing appearances for add")
		}
	case tibiaDatPath != "":
		glog.V(1).Infof("full.FromPaths(): opening tibia dat: %q", tibiaDatPath)
		f, err := paths.NoFindOpen(tibiaDatPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening tibia dat file for add")
		}
		err = ds.ReadDat(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, "parsing tibia dat for add")
		}
	default:
		return nil, errors.New("full.FromPaths(): no data file given")
	}

	if err := t.AddTibiaDataset(ds); err != nil {
		return nil, err
	}
	return t, nil
}
