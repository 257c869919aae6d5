// Package buildtime tells how the binary has been built.
package buildtime

import (
	"runtime/debug"
)

// set with `-ldflags "-X github.com/protocaas/protocaas/pkg/buildtime.version=..."`
var version = "dev"

// VERSION is the release name of this build.
func VERSION() string {
	return version
}

// GIT_REVISION is the commit which this binary has been built from.
//
// It is "unknown" when the binary is built outside of a git working tree.
func GIT_REVISION() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	rev, dirty := "unknown", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty {
		rev += "-dirty"
	}
	return rev
}

func VersionString() string {
	return VERSION() + " (commit: " + GIT_REVISION() + ")"
}
