// Package version carries build metadata for the Chorus backend.
package version

import "fmt"

// Overridden at build time via -ldflags.
var (
	Name      = "Chorus"
	Version   = "0.3.0"
	BuildTime = ""
	GitCommit = ""
)

// Info is the version payload served over the HTTP API.
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
	GitCommit string `json:"gitCommit,omitempty"`
}

// GetInfo snapshots the build metadata.
func GetInfo() Info {
	return Info{Name: Name, Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
}

// String renders a banner line like "Chorus v0.3.0 (abc1234)".
func (i Info) String() string {
	s := fmt.Sprintf("%s v%s", i.Name, i.Version)
	if commit := i.GitCommit; commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		s += " (" + commit + ")"
	}
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	return s
}
