package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"weft/internal/diagfmt"
	"weft/internal/driver"
)

var showCmd = &cobra.Command{
	Use:   "show [flags] <artifact.weftir>",
	Short: "Print the declarations recorded in a compiled artifact",
	Long:  "Decode a .weftir artifact and print its declaration summary as a tree or as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	art, err := driver.ReadArtifact(args[0])
	if err != nil {
		return err
	}
	return renderArtifact(cmd.OutOrStdout(), art, strings.ToLower(format))
}

func renderArtifact(out io.Writer, art *driver.Artifact, format string) error {
	switch format {
	case "pretty":
		diagfmt.FormatArtifact(out, art)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(art)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
