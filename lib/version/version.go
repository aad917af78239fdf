package version

import "fmt"

var (
	Version             string = "0.1.0" // Version follows SemVer (https://semver.org); it is updated by hand at each release.
	GitCommit, GitState string           // GitCommit will be overwritten automatically by the build system
	BuildDate           string           // BuildDate will be overwritten automatically by the build system
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s build=%s", Version, GitCommit, BuildDate)
}
