package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codecoach/internal/errors"
	"codecoach/internal/recommend"
)

var (
	profileUser     string
	profileFormat   string
	profileFile     string
	profileStyle    string
	profileSkill    string
	profileMastered []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage stored learner profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a learner profile",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update a learner profile",
	Long: `Create or update a learner profile. --file replaces the whole profile;
--style, --skill and --mastered adjust the stored one.

Examples:
  coach profile set --user ada --file ada.toml
  coach profile set --user ada --style analytical --skill beginner
  coach profile set --user ada --mastered hash_table,two_pointers`,
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

func init() {
	profileCmd.PersistentFlags().StringVar(&profileUser, "user", "", "Learner id")
	profileCmd.PersistentFlags().StringVar(&profileFormat, "format", "human", "Output format (json, human, yaml, toml)")
	_ = profileCmd.MarkPersistentFlagRequired("user")

	profileSetCmd.Flags().StringVar(&profileFile, "file", "", "Profile file (json, yaml or toml)")
	profileSetCmd.Flags().StringVar(&profileStyle, "style", "", "Single learning style")
	profileSetCmd.Flags().StringVar(&profileSkill, "skill", "", "Skill level (beginner, intermediate, advanced)")
	profileSetCmd.Flags().StringSliceVar(&profileMastered, "mastered", nil, "Concepts to mark mastered")

	profileCmd.AddCommand(profileShowCmd, profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	p, err := sess.store.LoadProfile(cmd.Context(), profileUser)
	if err != nil {
		return err
	}
	return printProfile(cmd, p)
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	sess, err := newSession(cmd, true)
	if err != nil {
		return err
	}
	defer sess.Close()
	ctx := cmd.Context()

	var p recommend.LearnerProfile
	if profileFile != "" {
		if p, err = readProfileFile(profileFile); err != nil {
			return err
		}
	} else {
		p, err = sess.store.LoadProfile(ctx, profileUser)
		if err != nil && !errors.Is(err, errors.ProfileNotFound) {
			return err
		}
	}

	if profileStyle != "" {
		s, err := parseStyle(profileStyle)
		if err != nil {
			return err
		}
		p.Style = recommend.SingleStyle(s)
	}
	if profileSkill != "" {
		level, err := recommend.ParseSkillLevel(profileSkill)
		if err != nil {
			return err
		}
		p.SkillLevel = level
	}

	if err := sess.store.SaveProfile(ctx, profileUser, p); err != nil {
		return err
	}
	if len(profileMastered) > 0 {
		concepts := make([]string, 0, len(profileMastered))
		for _, c := range profileMastered {
			if c = strings.TrimSpace(c); c != "" {
				concepts = append(concepts, c)
			}
		}
		if err := sess.store.MarkMastered(ctx, profileUser, concepts...); err != nil {
			return err
		}
	}

	saved, err := sess.store.LoadProfile(ctx, profileUser)
	if err != nil {
		return err
	}
	return printProfile(cmd, saved)
}

func printProfile(cmd *cobra.Command, p recommend.LearnerProfile) error {
	output, err := FormatResponse(p, OutputFormat(profileFormat))
	if err != nil {
		return fmt.Errorf("failed to format profile: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
