package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Version represents the current version of midecode.
type Version struct {
	Major    string
	Minor    string
	Patch    string
	Metadata string
	Build    string
}

// MIDecodeVersion is the current version of midecode.
var MIDecodeVersion = Version{
	Major: "0", Minor: "3", Patch: "0", Metadata: "",
	Build: "$Id$",
}

func (v Version) String() string {
	fixBuild(&v)
	ver := fmt.Sprintf("Version: %s.%s.%s", v.Major, v.Minor, v.Patch)
	if v.Metadata != "" {
		ver += "-" + v.Metadata
	}
	return fmt.Sprintf("%s\nBuild: %s", ver, v.Build)
}

// Short returns the version without build information, as reported to
// scripts and DAP clients.
func (v Version) Short() string {
	ver := v.Major + "." + v.Minor + "." + v.Patch
	if v.Metadata != "" {
		ver += "-" + v.Metadata
	}
	return ver
}

var buildInfo = func() string {
	return ""
}

// fixBuild replaces a Git ident placeholder in Build with the revision
// recorded by the toolchain, when it is available.
var fixBuild = func(v *Version) {
	if strings.HasPrefix(v.Build, "$Id") {
		v.Build = "unknown"
	}
}

func BuildInfo() string {
	return fmt.Sprintf("%s\n%s", runtime.Version(), buildInfo())
}
