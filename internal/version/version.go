// Package version exposes build information for the fspath binaries.
package version

import (
	"runtime/debug"
)

// Set with -ldflags at build time. When unset, values are read from the
// module build info.
var (
	Version  = ""
	Revision = ""
)

const (
	develVersion = "0.0.0-devel"
	unknown      = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()

	if Version == "" {
		Version = develVersion
		if ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			Version = info.Main.Version
		}
	}

	if Revision == "" {
		Revision = unknown
		if ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					Revision = s.Value
				}
			}
		}
	}
}
