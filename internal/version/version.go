package version

import (
	"fmt"
	"runtime/debug"
)

// BuildVersion is set at build time via -ldflags.
var BuildVersion = ""

// String returns the version of the running binary.
func String() string {
	if BuildVersion != "" {
		return BuildVersion
	}

	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(unknown)"
}

// ShowVersion prints the version to stdout.
func ShowVersion() {
	fmt.Printf("benchbus %s\n", String())
}
