// Package buildinfo carries version metadata stamped in at link time, e.g.
//
//	go build -ldflags "-X github.com/cleared-dev/cardspend/internal/buildinfo.Version=v0.1.0"
package buildinfo

var (
	// Version is the release version.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)
