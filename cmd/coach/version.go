package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codecoach/internal/features"
	"codecoach/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full(buildDetails()...))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildDetails reports the extraction mode compiled in and the supported
// languages.
func buildDetails() []version.Detail {
	parser := "token scan (built without cgo)"
	if features.StructuralAvailable() {
		parser = "tree-sitter"
	}
	langs := make([]string, len(features.Languages))
	for i, l := range features.Languages {
		langs[i] = string(l)
	}
	return []version.Detail{
		{Key: "Parser", Value: parser},
		{Key: "Languages", Value: strings.Join(langs, ", ")},
	}
}
