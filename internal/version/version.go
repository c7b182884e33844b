// Package version reports build metadata. Release builds set the variables
// with -ldflags "-X"; other builds fall back to the VCS stamp Go embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// String renders the line printed by `herguard version`.
func String() string {
	commit, date := Commit, Date
	if commit == "" || date == "" {
		vcsCommit, vcsDate := vcsStamp()
		commit = firstSet(commit, vcsCommit, "none")
		date = firstSet(date, vcsDate, "unknown")
	}
	return fmt.Sprintf("herguard %s (commit=%s, date=%s, go=%s)", Version, commit, date, runtime.Version())
}

func vcsStamp() (revision, modified string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			modified = s.Value
		}
	}
	return revision, modified
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
