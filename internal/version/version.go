// Package version holds build version information.
package version

// Set via -ldflags "-X github.com/neox5/statbox/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = ""
)

// String returns the version, with the commit if known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
