// Package contracts holds the types shared between bondpulse packages and
// its API clients.
package contracts

import (
	"runtime"
	"runtime/debug"
)

const (
	// Version is the bondpulse release
	Version = "0.3.0"

	// DataFormatVersion identifies the column layout of normalized tables
	DataFormatVersion = "v1"

	// APIVersion identifies the HTTP and websocket message contracts
	APIVersion = "v1"
)

// Stamped by build.go through -ldflags -X. Left as "unknown", GetVersionInfo
// falls back to the VCS data the go tool embeds.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is the payload of GET /api/version
type VersionInfo struct {
	Version    string `json:"version"`
	BuildTime  string `json:"build_time"`
	GitCommit  string `json:"git_commit"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	DataFormat string `json:"data_format"`
	APIVersion string `json:"api_version"`
}

// GetVersionInfo reports the running build
func GetVersionInfo() VersionInfo {
	info := VersionInfo{
		Version:    Version,
		BuildTime:  BuildTime,
		GitCommit:  GitCommit,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		DataFormat: DataFormatVersion,
		APIVersion: APIVersion,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && len(s.Value) >= 7 {
				info.GitCommit = s.Value[:7]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}
