package full

import (
	"badc0de.net/pkg/go-tibia-things/config"
	"badc0de.net/pkg/go-tibia-things/things"
)

var flags *config.Flags

// SetupFilePathFlags registers the config flags, among them --tibia_dat_path
// and --appearances_path.
//
// These will then be referred to in the FromFilePathFlags function.
func SetupFilePathFlags() {
	flags = config.SetupFlags()
}

// FromFilePathFlags loads the config named by the flags, applies the flags,
// and populates things.Things from the resulting data file paths. The flags
// need to be registered and parsed by the time this function is invoked.
func FromFilePathFlags() (*things.Things, *config.Config, error) {
	if flags == nil {
		SetupFilePathFlags()
	}
	cfg, err := flags.Load()
	if err != nil {
		return nil, nil, err
	}
	t, err := FromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return t, cfg, nil
}

// FromConfig populates things.Things from the data files a config names.
func FromConfig(cfg *config.Config) (*things.Things, error) {
	return FromPaths(cfg.Data.TibiaDat, cfg.Data.Appearances, cfg.DatasetOptions())
}
