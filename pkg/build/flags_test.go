// SPDX-License-Identifier: MIT
package build

import (
	"errors"
	"os"
	"strings"
	"testing"
)

var (
	origName    string
	origTime    string
	origCommit  string
	origVersion string
	origInfo    Info
)

func TestMain(m *testing.M) {
	origName = buildName
	origTime = buildTime
	origCommit = buildCommit
	origVersion = buildVersion
	origInfo = buildInfo

	exitCode := m.Run()

	buildName = origName
	buildTime = origTime
	buildCommit = origCommit
	buildVersion = origVersion
	buildInfo = origInfo

	os.Exit(exitCode)
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name        string
		buildName   string
		buildTime   string
		buildCommit string
		buildVer    string
		wantErrMsg  string
	}{
		{
			"Missing BuildName",
			"",
			"2025-04-13",
			"abcdef123",
			"v1.0.0",
			"BuildName is required",
		},
		{
			"Missing BuildTime",
			"testapp",
			"",
			"abcdef123",
			"v1.0.0",
			"BuildTime is required",
		},
		{
			"Missing BuildCommit",
			"testapp",
			"2025-04-13",
			"",
			"v1.0.0",
			"BuildCommit is required",
		},
		{
			"Missing BuildVersion",
			"testapp",
			"2025-04-13",
			"abcdef123",
			"",
			"BuildVersion is required",
		},
		{
			"Success Case",
			"testapp",
			"2025-04-13",
			"abcdef123",
			"v1.0.0",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buildInfo = devInfo()

			buildName = tt.buildName
			buildTime = tt.buildTime
			buildCommit = tt.buildCommit
			buildVersion = tt.buildVer

			err := Initialize()

			if tt.wantErrMsg != "" {
				if !errors.Is(err, ErrMissing) {
					t.Fatalf("Initialize() error = %v, want ErrMissing", err)
				}
				if !strings.HasSuffix(err.Error(), tt.wantErrMsg) {
					t.Errorf("Initialize() error = %v, want suffix %q", err, tt.wantErrMsg)
				}
				if Current() != devInfo() {
					t.Errorf("Current() = %+v, want development defaults", Current())
				}
				return
			}

			if err != nil {
				t.Fatalf("Initialize() unexpected error: %v", err)
			}

			got := Current()
			if got.Name != tt.buildName {
				t.Errorf("Name = %v, want %v", got.Name, tt.buildName)
			}
			if got.Time != tt.buildTime {
				t.Errorf("Time = %v, want %v", got.Time, tt.buildTime)
			}
			if got.Commit != tt.buildCommit {
				t.Errorf("Commit = %v, want %v", got.Commit, tt.buildCommit)
			}
			if got.Version != tt.buildVer {
				t.Errorf("Version = %v, want %v", got.Version, tt.buildVer)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Name: "testapp", Time: "2025-04-13", Commit: "abcdef123", Version: "v1.0.0"}
	want := "testapp v1.0.0 (commit abcdef123, built 2025-04-13)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
