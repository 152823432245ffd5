// Package version reports build information
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/tabgroups/tabgroups/internal/config"
	"github.com/tabgroups/tabgroups/internal/platform"
)

// Name is the product name shown in version output
const Name = "Tab Groups"

const (
	unknown      = "unknown"
	sqliteModule = "modernc.org/sqlite"
)

// Set with -ldflags "-X github.com/tabgroups/tabgroups/internal/version.version=..."
var (
	version   = "dev"
	gitCommit = unknown
	buildTime = unknown
)

// Info describes the running binary
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Platform  string

	// Backends are the accepted store.backend values
	Backends []string
	// SQLiteDriver is the version of the embedded SQLite driver
	SQLiteDriver string
}

// Get returns the build information, falling back to the module build info
// for values not set through ldflags
func Get() Info {
	info := Info{
		Version:      version,
		GitCommit:    gitCommit,
		BuildTime:    buildTime,
		GoVersion:    unknown,
		Platform:     platform.Name(),
		Backends:     append([]string(nil), config.Backends...),
		SQLiteDriver: unknown,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, dep := range bi.Deps {
		if dep.Path == sqliteModule {
			info.SQLiteDriver = dep.Version
		}
	}

	if info.Version != "dev" {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, setting := range bi.Settings {
		switch {
		case setting.Key == "vcs.revision" && info.GitCommit == unknown:
			info.GitCommit = shortCommit(setting.Value)
		case setting.Key == "vcs.time" && info.BuildTime == unknown:
			info.BuildTime = setting.Value
		}
	}
	return info
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String returns the product name and version
func (i Info) String() string {
	return fmt.Sprintf("%s %s", Name, i.Version)
}

// Detailed returns every field, one per line
func (i Info) Detailed() string {
	backends := strings.Join(i.Backends, ", ")
	if i.SQLiteDriver != "" && i.SQLiteDriver != unknown {
		backends += fmt.Sprintf(" (sqlite via %s %s)", sqliteModule, i.SQLiteDriver)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Name, i.Version)
	fmt.Fprintf(&b, "Git Commit: %s\n", i.GitCommit)
	fmt.Fprintf(&b, "Build Time: %s\n", i.BuildTime)
	fmt.Fprintf(&b, "Go Version: %s\n", i.GoVersion)
	fmt.Fprintf(&b, "Platform:   %s\n", i.Platform)
	fmt.Fprintf(&b, "Backends:   %s", backends)
	return b.String()
}
