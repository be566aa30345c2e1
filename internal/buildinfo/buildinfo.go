// Package buildinfo reports bsc's version and build metadata for the
// `bsc version` subcommand, per SPEC_FULL.md §4.15. Version/Commit/Date are
// ldflags-settable, mirroring the teacher's cmd/sentra version variables.
package buildinfo

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
	"golang.org/x/mod/semver"
)

// These are overridden at link time via -ldflags "-X ...".
var (
	Version = "v0.0.0-dev"
	Commit  = "unknown"
	Date    = "" // RFC3339; empty means "not set"
)

// MinGrammarVersion is the oldest `bs` grammar version this binary still
// parses; Print compares Version against it with golang.org/x/mod/semver and
// warns when Version is a valid semantic version older than it. A Version
// that is not valid semver is printed without a warning.
const MinGrammarVersion = "v0.1.0"

// Print writes a human-readable version report to w.
func Print(w io.Writer) {
	fmt.Fprintf(w, "bsc %s (%s)\n", Version, Commit)

	if semver.IsValid(Version) && semver.Compare(Version, MinGrammarVersion) < 0 {
		fmt.Fprintf(w, "warning: %s predates the minimum supported grammar version %s\n", Version, MinGrammarVersion)
	}

	if Date != "" {
		if t, err := time.Parse(time.RFC3339, Date); err == nil {
			built := strftime.Format("%Y-%m-%d %H:%M:%S UTC", t.UTC())
			fmt.Fprintf(w, "built %s (%s)\n", built, humanize.Time(t))
		}
	}
}
