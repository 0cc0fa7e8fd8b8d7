package app

import (
	"fmt"
	"runtime"
)

// Set with -ldflags "-X github.com/tejashwikalptaru/goradio/internal/app.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
)

// VersionInfo describes the running build.
type VersionInfo struct {
	Version string
	Commit  string
	Runtime string
}

// GetVersionInfo returns the build information of this binary.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version: Version,
		Commit:  Commit,
		Runtime: runtime.Version(),
	}
}

// FullString is the version line written to the startup log.
func (v VersionInfo) FullString() string {
	return fmt.Sprintf("GoRadio %s (commit: %s, %s)", v.Version, v.Commit, v.Runtime)
}

// UserAgent is sent with every stream and artwork request. Some station hosts
// reject clients without one.
func (v VersionInfo) UserAgent(appName string) string {
	return fmt.Sprintf("%s/%s (+%s)", appName, v.Version, v.Runtime)
}
