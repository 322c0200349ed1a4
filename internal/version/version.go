// Package version holds the coach build information.
package version

import (
	"fmt"
	"strings"
)

// Set at build time:
// go build -ldflags "-X codecoach/internal/version.Version=0.3.0 -X codecoach/internal/version.Commit=abc123"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Detail is one extra line of the version report.
type Detail struct {
	Key   string
	Value string
}

// ShortCommit is the first seven characters of a known commit, or "".
func ShortCommit() string {
	if Commit == "unknown" || len(Commit) <= 7 {
		return ""
	}
	return Commit[:7]
}

// Info is the one-line version, with the short commit when known.
func Info() string {
	if c := ShortCommit(); c != "" {
		return Version + " (" + c + ")"
	}
	return Version
}

// Full is the `coach version` report: the version line, the build fields,
// then one "Key: Value" line per detail in the given order.
func Full(details ...Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "coach version %s\nCommit: %s\nBuilt: %s", Info(), Commit, BuildDate)
	for _, d := range details {
		fmt.Fprintf(&b, "\n%s: %s", d.Key, d.Value)
	}
	return b.String()
}
