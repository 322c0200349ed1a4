package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"codecoach/internal/slogutil"
	"codecoach/internal/version"
)

var (
	// rootFlag is the project root holding .coach/
	rootFlag    string
	verboseFlag int
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "coach",
	Short: "coach - code analysis and learning recommendations",
	Long: `coach analyzes a solution to a programming problem: it detects the
patterns, algorithms and data structures in use, estimates time and space
complexity, scores code quality, and turns the result into knowledge gaps,
concepts to learn and advice tailored to the learner's style.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("coach version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".", "Project root containing .coach/")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Silence logs")
}

// cliLevel returns the level requested on the command line, or nil when
// neither --verbose nor --quiet was given.
func cliLevel(cmd *cobra.Command) *slog.Level {
	flags := cmd.Flags()
	if !flags.Changed("verbose") && !flags.Changed("quiet") {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	return &level
}
