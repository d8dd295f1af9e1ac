// Package version holds build metadata stamped in through -ldflags.
package version

import "fmt"

var (
	// Version is the release tag, or "dev" for untagged builds
	Version = "dev"
	// GitSHA is the git commit the binary was built from
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the stamped metadata on one line.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
