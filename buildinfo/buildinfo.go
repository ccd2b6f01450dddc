// Package buildinfo reports how the running binary was built, from the
// module metadata the Go toolchain embeds at compile time.
package buildinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type BuildInfo struct {
	Path       string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (b BuildInfo) String() string {
	mod := ""
	if b.Modified {
		mod = " The working tree was dirty at build time."
	}

	return fmt.Sprintf("%s built with %s at commit %s (%s).%s", b.Path, b.GoVersion, b.Commit, b.CommitTime, mod)
}

func Get() BuildInfo {
	out := BuildInfo{}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.Path = bi.Path
	out.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// PrintToStderr announces the build on stderr so pipeline logs record which
// binary produced a dataset.
func PrintToStderr() {
	fmt.Fprintf(os.Stderr, "%s\n", Get())
}
