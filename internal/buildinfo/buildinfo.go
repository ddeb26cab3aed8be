package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Name is the program name used in titles and generated documents.
const Name = "storygraph"

type info struct {
	version string
	tags    string
}

var read = sync.OnceValue(func() info {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return info{version: "dev"}
	}
	out := info{version: bi.Main.Version}
	if out.version == "" || out.version == "(devel)" {
		out.version = "dev"
	}
	for _, setting := range bi.Settings {
		if setting.Key == "-tags" {
			out.tags = setting.Value
		}
	}
	return out
})

// Version returns the module version or "dev" when unset.
func Version() string {
	return read().version
}

// Tags returns the build tags recorded at compile time.
func Tags() string {
	return read().tags
}

// VersionWithTags returns the version string and tags if present.
func VersionWithTags() string {
	i := read()
	if i.tags == "" {
		return i.version
	}
	return fmt.Sprintf("%s (tags: %s)", i.version, i.tags)
}

// Title returns the program name followed by its version.
func Title() string {
	return Name + " " + Version()
}
