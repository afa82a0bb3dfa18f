// Package config holds settings shared by the binaries: which client version
// the data files are for, where they are, and where to serve the inspector.
package config

import (
	"badc0de.net/pkg/go-tibia-things/dat"
)

// Config holds all settings.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Data   DataConfig   `yaml:"data"`
	Web    WebConfig    `yaml:"web"`
}

// ClientConfig describes the client the data files were made for.
type ClientConfig struct {
	Version  uint16           `yaml:"version"`
	Features FeatureOverrides `yaml:"features"`
}

// FeatureOverrides force layout features on or off. A nil field means the
// feature follows the client version.
type FeatureOverrides struct {
	PatternZ           *bool `yaml:"pattern_z"`
	ExtendedSprites    *bool `yaml:"extended_sprites"`
	EnhancedAnimations *bool `yaml:"enhanced_animations"`
	FrameGroups        *bool `yaml:"frame_groups"`
}

// DataConfig holds data file paths. When both are set, the appearances file
// is preferred.
type DataConfig struct {
	TibiaDat    string `yaml:"tibia_dat"`
	Appearances string `yaml:"appearances"`
}

// WebConfig holds settings of the web inspector.
type WebConfig struct {
	ListenAddress  string `yaml:"listen_address"`
	MaxConnections int    `yaml:"max_connections"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			Version: uint16(dat.CLIENT_VERSION_854),
		},
		Web: WebConfig{
			ListenAddress:  ":8080",
			MaxConnections: 64,
		},
	}
}

// Features returns the client version's features with overrides applied.
func (c *Config) Features() dat.Features {
	fs := dat.FeaturesForVersion(dat.ClientVersion(c.Client.Version))
	o := c.Client.Features
	for f, v := range map[dat.Feature]*bool{
		dat.FeaturePatternZ:           o.PatternZ,
		dat.FeatureExtendedSprites:    o.ExtendedSprites,
		dat.FeatureEnhancedAnimations: o.EnhancedAnimations,
		dat.FeatureFrameGroups:        o.FrameGroups,
	} {
		if v != nil {
			fs = fs.With(f, *v)
		}
	}
	return fs
}

// DatasetOptions returns options for decoding the configured data files.
func (c *Config) DatasetOptions() dat.Options {
	fs := c.Features()
	return dat.Options{
		Version:  dat.ClientVersion(c.Client.Version),
		Features: &fs,
	}
}
