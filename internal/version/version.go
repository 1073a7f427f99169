// Package version holds build metadata for symgraph.
package version

import "runtime/debug"

// Overridable at build time:
// go build -ldflags "-X symgraph/internal/version.Version=0.3.0 -X symgraph/internal/version.Commit=abc123"
var (
	// Version is the semantic version of symgraph
	Version = "0.3.0"

	// Commit is the git commit hash (set at build time)
	Commit = "unknown"

	// BuildDate is the build timestamp (set at build time)
	BuildDate = "unknown"
)

// Name is the program name reported by the CLI and the MCP server.
const Name = "symgraph"

func init() {
	if Commit != "unknown" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				Commit = s.Value
			}
		}
	}
}

// Info returns a formatted version string
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns complete version information
func Full() string {
	return Name + " version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate
}

// Fields returns version information as a map for structured output.
func Fields() map[string]string {
	return map[string]string{
		"name":      Name,
		"version":   Version,
		"commit":    Commit,
		"buildDate": BuildDate,
	}
}
