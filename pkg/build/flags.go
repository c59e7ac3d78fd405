// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata embedded into the binary at link time:
// the application name, build timestamp, Git commit hash and semantic
// version. Development builds fall back to placeholder values.
package build

import (
	"errors"
	"fmt"
)

// Info describes one build of the application.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String formats the info for --version output.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// ErrMissing reports a build flag that was not set with -ldflags.
var ErrMissing = errors.New("build flag missing")

// Package-level variables for build information, populated during
// compilation, for example:
//
//	go build -ldflags "-X regionplay/pkg/build.buildVersion=0.2.0"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = devInfo()
)

func devInfo() Info {
	return Info{
		Name:    "regionplay",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
}

// Initialize copies the linker-provided values into the build info. When
// any value is missing the development placeholders stay in place and the
// returned error wraps ErrMissing.
func Initialize() error {
	for _, f := range []struct{ name, value string }{
		{"BuildName", buildName},
		{"BuildTime", buildTime},
		{"BuildCommit", buildCommit},
		{"BuildVersion", buildVersion},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrMissing, f.name)
		}
	}

	buildInfo = Info{
		Name:    buildName,
		Time:    buildTime,
		Commit:  buildCommit,
		Version: buildVersion,
	}
	return nil
}

// Current returns the build information. Call Initialize first.
func Current() Info {
	return buildInfo
}
