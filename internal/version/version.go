package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the weft CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("1") + "." + versionPatchColor.Sprint("0") + "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Info returns the one-line banner: "weft <version>" plus any recorded
// build metadata.
func Info() string {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	parts := []string{"weft", v}
	if c := strings.TrimSpace(GitCommit); c != "" {
		parts = append(parts, "("+c+")")
	}
	if d := strings.TrimSpace(BuildDate); d != "" {
		parts = append(parts, "built "+d)
	}
	return strings.Join(parts, " ")
}
