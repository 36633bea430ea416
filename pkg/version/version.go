// Package version holds build metadata injected at link time.
package version

// Populated via -ldflags at build time.
var (
	// Version is the semantic version of the gitvars binary.
	Version = "dev"

	// Commit is the git hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)
