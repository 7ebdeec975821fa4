// Package version exposes build-time version information.
package version

var (
	// Version is the application version (git tag or "dev")
	Version = "dev"
	// Commit is the git commit hash
	Commit = "dev"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
