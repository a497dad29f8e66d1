package main

import (
	"os"
	"runtime/debug"
	"strings"
)

// Version is stamped by release builds with -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

// effectiveVersion prefers a stamped version, then the module version of a
// `go install pkg@version` build, then the VCS revision ("devel+<rev>[+dirty]")
func effectiveVersion(stamped string) string {
	if stamped != "" && stamped != "dev" {
		return stamped
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return stamped
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}
	rev := settings["vcs.revision"]
	if rev == "" {
		return stamped
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	parts := []string{"devel", rev}
	if settings["vcs.modified"] == "true" {
		parts = append(parts, "dirty")
	}
	return strings.Join(parts, "+")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
