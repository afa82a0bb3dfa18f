package config

import (
	"flag"

	"badc0de.net/pkg/go-tibia-things/paths"
)

// Flags are the command line flags that override a loaded config.
type Flags struct {
	fs *flag.FlagSet

	configPath     string
	clientVersion  uint
	tibiaDat       string
	appearances    string
	listenAddress  string
	maxConnections int
}

// SetupFlags registers the config flags on the command line. They need to be
// parsed before calling Load.
func SetupFlags() *Flags {
	return SetupFlagSet(flag.CommandLine)
}

// SetupFlagSet registers the config flags on the passed set.
//
// Data file path flags default to files found by the paths package.
func SetupFlagSet(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.configPath, "config", "", "Path to config file")
	fs.UintVar(&f.clientVersion, "client_version", 0, "Client version the data files are for, such as 854 or 1098")
	paths.SetupFilePathFlagSet(fs, "Tibia.dat", "tibia_dat_path", &f.tibiaDat)
	paths.SetupFilePathFlagSet(fs, "appearances.dat", "appearances_path", &f.appearances)
	fs.StringVar(&f.listenAddress, "listen_address", "", "http listen address for the thing inspector")
	fs.IntVar(&f.maxConnections, "max_connections", 0, "maximum number of concurrent http connections")
	return f
}

// Load loads the config named by --config (or found in a standard location)
// and applies the flags on top of it.
func (f *Flags) Load() (*Config, error) {
	cfg, err := Load(f.configPath)
	if err != nil {
		return nil, err
	}
	f.apply(cfg)
	return cfg, nil
}

// apply overrides the config with flags that were set explicitly. Naming one
// data file on the command line drops the other from the config. Discovered
// data file paths only fill in paths the config left empty.
func (f *Flags) apply(cfg *Config) {
	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["client_version"] {
		cfg.Client.Version = uint16(f.clientVersion)
	}

	switch datSet, appSet := set["tibia_dat_path"], set["appearances_path"]; {
	case datSet || appSet:
		cfg.Data = DataConfig{}
		if datSet {
			cfg.Data.TibiaDat = f.tibiaDat
		}
		if appSet {
			cfg.Data.Appearances = f.appearances
		}
	case cfg.Data.TibiaDat == "" && cfg.Data.Appearances == "":
		cfg.Data.TibiaDat = f.tibiaDat
		cfg.Data.Appearances = f.appearances
	}

	if set["listen_address"] {
		cfg.Web.ListenAddress = f.listenAddress
	}
	if set["max_connections"] {
		cfg.Web.MaxConnections = f.maxConnections
	}
}
