// Package buildinfo carries version metadata stamped at link time:
//
//	go build -ldflags "-X github.com/modoterra/vtokinit/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the metadata as "version (commit) built date".
func String() string {
	return Version + " (" + Commit + ") built " + Date
}
