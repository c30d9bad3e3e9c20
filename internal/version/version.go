// Package version reports build metadata for the armoriq binary.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name is the binary name used in version output.
const Name = "armoriq"

// Set via -ldflags "-X github.com/hunny0025/armoriq-supervisor/internal/version.Version=v0.3.0".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns the bare version.
func Short() string {
	return Version
}

// ShortCommit returns at most the first seven characters of Commit.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

// Info returns a one-line description, e.g.
// "armoriq v0.3.0 (commit: 1a2b3c4, built: 2026-01-15T10:30:00Z, go: go1.23.4)".
func Info() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)",
		Name, Version, ShortCommit(), BuildDate, runtime.Version())
}

// Full returns the multi-line form printed by "armoriq version -v".
func Full() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Name, Version)
	fmt.Fprintf(&b, "  Commit:     %s\n", Commit)
	fmt.Fprintf(&b, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(&b, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(&b, "  OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH)
	return b.String()
}
