package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/lesswatch/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata, also injected through ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("lesswatch %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
