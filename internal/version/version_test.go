package version

import (
	"strings"
	"testing"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestInfoComposition(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	Version = "1.2.3"
	GitCommit = ""
	BuildDate = ""
	if got := Info(); got != "weft 1.2.3" {
		t.Errorf("Info() = %q, want %q", got, "weft 1.2.3")
	}

	GitCommit = "abc123d"
	if got := Info(); got != "weft 1.2.3 (abc123d)" {
		t.Errorf("Info() = %q, want commit in parens", got)
	}

	BuildDate = "2026-01-15T10:30:00Z"
	if got := Info(); !strings.HasSuffix(got, "built 2026-01-15T10:30:00Z") {
		t.Errorf("Info() = %q, want build date suffix", got)
	}
}

func TestInfoFallsBackToDev(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "  "
	if got := Info(); got != "weft dev" {
		t.Errorf("Info() = %q, want %q", got, "weft dev")
	}
}
