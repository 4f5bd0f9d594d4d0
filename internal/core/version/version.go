// Package version reports build metadata set through -ldflags
package version

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Set with -ldflags "-X 'orgcore/internal/core/version.version=v0.3.0' ..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns build metadata for the named binary
func Info(service string) BuildInfo {
	return BuildInfo{Service: service, Version: version, Commit: commit, Date: date}
}
