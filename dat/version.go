package dat

import (
	"fmt"
)

// ClientVersion is the numeric protocol version of the client a data file was
// made for, such as 854 for 8.54 or 1098 for 10.98.
//
// Several legacy attribute codes and layout details changed meaning between
// versions, so a Dataset must know the version before decoding a Tibia.dat.
type ClientVersion uint16

// Some well known client versions. Version bands used by the legacy attribute
// decoder begin at these.
const (
	CLIENT_VERSION_710  = ClientVersion(710)
	CLIENT_VERSION_740  = ClientVersion(740)
	CLIENT_VERSION_755  = ClientVersion(755)
	CLIENT_VERSION_780  = ClientVersion(780)
	CLIENT_VERSION_854  = ClientVersion(854)
	CLIENT_VERSION_860  = ClientVersion(860)
	CLIENT_VERSION_960  = ClientVersion(960)
	CLIENT_VERSION_1000 = ClientVersion(1000)
	CLIENT_VERSION_1050 = ClientVersion(1050)
	CLIENT_VERSION_1057 = ClientVersion(1057)
	CLIENT_VERSION_1098 = ClientVersion(1098)
)

// String implements the stringer interface, formatting 854 as "8.54".
func (v ClientVersion) String() string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}

// Feature is a single optional capability of the data file layout.
type Feature uint8

const (
	// FeaturePatternZ means frame groups carry a pattern Z byte. Earlier files
	// imply a pattern Z of 1.
	FeaturePatternZ Feature = iota
	// FeatureExtendedSprites means sprite ids are 32-bit instead of 16-bit.
	FeatureExtendedSprites
	// FeatureEnhancedAnimations means frame groups with more than one phase
	// carry an animation block with per-phase durations.
	FeatureEnhancedAnimations
	// FeatureFrameGroups means outfits may carry more than one frame group
	// (idle and moving), each preceded by its kind.
	FeatureFrameGroups

	featureCount
)

func (f Feature) String() string {
	switch f {
	case FeaturePatternZ:
		return "pattern z"
	case FeatureExtendedSprites:
		return "extended sprites"
	case FeatureEnhancedAnimations:
		return "enhanced animations"
	case FeatureFrameGroups:
		return "frame groups"
	}
	return fmt.Sprintf("feature %d unknown", uint8(f))
}

// Features is a set of Feature values.
type Features uint32

// Has reports whether f is in the set.
func (fs Features) Has(f Feature) bool {
	return fs&(1<<f) != 0
}

// With returns a copy of the set with f enabled or disabled.
func (fs Features) With(f Feature, enabled bool) Features {
	if enabled {
		return fs | 1<<f
	}
	return fs &^ (1 << f)
}

func (fs Features) String() string {
	out := ""
	for f := Feature(0); f < featureCount; f++ {
		if !fs.Has(f) {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += f.String()
	}
	return out
}

// FeaturesForVersion returns the features a stock client of the passed version
// expects.
func FeaturesForVersion(v ClientVersion) Features {
	var fs Features
	fs = fs.With(FeaturePatternZ, v >= CLIENT_VERSION_755)
	fs = fs.With(FeatureExtendedSprites, v >= CLIENT_VERSION_960)
	fs = fs.With(FeatureEnhancedAnimations, v >= CLIENT_VERSION_1050)
	fs = fs.With(FeatureFrameGroups, v >= CLIENT_VERSION_1057)
	return fs
}

// Options configure a Dataset.
type Options struct {
	// Version selects the legacy attribute numbering and layout rules.
	Version ClientVersion
	// Features overrides the features derived from Version when non-nil.
	Features *Features
}

func (o Options) features() Features {
	if o.Features != nil {
		return *o.Features
	}
	return FeaturesForVersion(o.Version)
}
