package paths

import (
	"flag"
)

// SetupFilePathFlag creates a new string flag on the command line with the
// passed name and a sane default for the path to the file, if found using the
// Find function. If not, the flag defaults to an empty string.
func SetupFilePathFlag(fileName, flagName string, flagPtr *string) {
	SetupFilePathFlagSet(flag.CommandLine, fileName, flagName, flagPtr)
}

// SetupFilePathFlagSet is like SetupFilePathFlag, but registers the flag on
// the passed set.
func SetupFilePathFlagSet(fs *flag.FlagSet, fileName, flagName string, flagPtr *string) {
	fs.StringVar(flagPtr, flagName, Find(fileName), "Path to "+fileName)
}
