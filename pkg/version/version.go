package version

import (
	"fmt"
	"runtime/debug"
)

// Semantic version components formatted by String(), which Full() falls
// back to when no build info is available or the module version is
// "(devel)".
const (
	// Major is the major version (breaking changes).
	Major = 0
	// Minor is the minor version (new features).
	Minor = 0
	// Patch is the patch version (bug fixes).
	Patch = 7
	// Label is the optional pre-release label.
	Label = ""
)

// String returns the fallback semantic version string.
func String() string {
	v := fmt.Sprintf("v%d.%d.%d", Major, Minor, Patch)
	if Label != "" {
		v += "-" + Label
	}
	return v
}

// Full returns a descriptive version string for the running binary,
// preferring the module version and VCS revision Go embeds at build time
// (runtime/debug.ReadBuildInfo) over the hand-maintained constants above,
// since those reflect what was actually built rather than what was last
// edited in this file.
func Full() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fmt.Sprintf("qryptchat-engine %s", String())
	}

	ver := info.Main.Version
	if ver == "" || ver == "(devel)" {
		ver = String()
	}

	rev, dirty := revisionFromBuildInfo(info)
	if rev == "" {
		return fmt.Sprintf("qryptchat-engine %s", ver)
	}
	if dirty {
		rev += "-dirty"
	}
	return fmt.Sprintf("qryptchat-engine %s (%s)", ver, rev)
}

// revisionFromBuildInfo extracts the short VCS commit hash and working-tree
// dirty flag from build settings, when the binary was built from a checked
// out VCS repository rather than `go install module@version`.
func revisionFromBuildInfo(info *debug.BuildInfo) (revision string, dirty bool) {
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return revision, dirty
}
