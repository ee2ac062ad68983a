// Package version reports the rt release.
package version

import "runtime/debug"

// Version is set at release time with
//
//	go build -ldflags "-X github.com/vanderheijden86/radialtree/pkg/version.Version=v1.2.3"
//
// and is empty in development builds.
var Version = ""

// fallback is reported when neither ldflags nor module info name a version.
const fallback = "v0.1.0-dev"

// String returns Version, or the module version recorded by
// `go install module@version`.
func String() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return fallback
}
