// Package version reports the curricula release and build revision.
package version

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the current version, with whitespace trimmed
func Get() string {
	return strings.TrimSpace(versionContent)
}

// Full returns the version with the VCS revision when the binary carries
// build info, e.g. "0.1.0 (3f2a9c1, modified)".
func Full() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Get()
	}
	return withRevision(Get(), info.Settings)
}

func withRevision(v string, settings []debug.BuildSetting) string {
	var revision string
	var modified bool
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision == "" {
		return v
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if modified {
		return v + " (" + revision + ", modified)"
	}
	return v + " (" + revision + ")"
}
