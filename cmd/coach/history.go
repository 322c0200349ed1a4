package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"codecoach/internal/storage"
)

var (
	historyUser   string
	historyLimit  int
	historySince  string
	historyFormat string
	historyCode   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a learner's recorded submissions and statistics",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyUser, "user", "", "Learner id")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of submissions to list (0 for all)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Only count submissions since this duration ago (e.g. 168h)")
	historyCmd.Flags().StringVar(&historyFormat, "format", "human", "Output format (json, human, yaml, toml)")
	historyCmd.Flags().StringVar(&historyCode, "code", "", "Show one recorded submission, with its code, by id")
	_ = historyCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(historyCmd)
}

// HistoryResponseCLI is the CLI response for history
type HistoryResponseCLI struct {
	Stats       *storage.LearnerStats      `json:"stats"`
	Submissions []storage.SubmissionRecord `json:"submissions"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()
	ctx := cmd.Context()

	if historyCode != "" {
		sub, err := sess.store.Submission(ctx, historyUser, historyCode)
		if err != nil {
			return err
		}
		output, err := FormatResponse(sub, OutputFormat(historyFormat))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	}

	var since time.Time
	if historySince != "" {
		d, err := time.ParseDuration(historySince)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		since = time.Now().Add(-d)
	}

	stats, err := sess.store.Stats(ctx, historyUser, since)
	if err != nil {
		return err
	}
	subs, err := sess.store.Submissions(ctx, historyUser, historyLimit)
	if err != nil {
		return err
	}

	output, err := FormatResponse(&HistoryResponseCLI{Stats: stats, Submissions: subs}, OutputFormat(historyFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
