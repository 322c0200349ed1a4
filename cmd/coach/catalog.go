package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codecoach/internal/engine"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List detectable patterns, complexity classes and concepts",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogFormat, "format", "human", "Output format (json, human, yaml, toml)")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	c := sess.engine.Catalog()
	var output string
	if OutputFormat(catalogFormat) == FormatHuman {
		output = formatCatalogHuman(c)
	} else if output, err = FormatResponse(c, OutputFormat(catalogFormat)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func formatCatalogHuman(c engine.Catalog) string {
	var b strings.Builder
	langs := make([]string, len(c.Languages))
	for i, l := range c.Languages {
		langs[i] = string(l)
	}
	b.WriteString("Languages:   " + strings.Join(langs, ", ") + "\n")
	b.WriteString("Complexity:  " + strings.Join(c.ComplexityClasses, ", ") + "\n")

	b.WriteString("\nDetections:\n")
	for _, d := range c.Detections {
		b.WriteString(fmt.Sprintf("  %-24s %-15s %s\n", d.Name, d.Kind, d.Description))
	}
	b.WriteString("\nConcepts:\n")
	for _, n := range c.Concepts {
		b.WriteString(fmt.Sprintf("  %-24s %-12s %-12s ~%dm\n", n.Name, n.Category, n.Difficulty, n.BaseMinutes))
	}
	return strings.TrimRight(b.String(), "\n")
}
