package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codecoach/internal/engine"
	"codecoach/internal/errors"
	"codecoach/internal/features"
	"codecoach/internal/recommend"
)

var (
	analyzeFormat   string
	analyzeLang     string
	analyzeTitle    string
	analyzeExpected string
	analyzeProfile  string
	analyzeStyle    string
	analyzeUser     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>...",
	Short: "Analyze solution files and print recommendations",
	Long: `Analyze one or more solution files. The language is taken from --lang or
inferred from the file extension; "-" reads the source from stdin.

With --user the learner's stored profile is merged into the request and
the submission is recorded in the profile store.

Examples:
  coach analyze two_sum.py --title "Two Sum"
  coach analyze --format human --style creative solution.go --title "LRU Cache"
  coach analyze --user ada --profile ada.yaml a.py b.py --title "Warmup"
  cat sol.js | coach analyze - --lang js --title "Valid Parentheses"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format (json, human, yaml, toml)")
	analyzeCmd.Flags().StringVar(&analyzeLang, "lang", "", "Source language (python, java, javascript, cpp, go)")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "Problem title")
	analyzeCmd.Flags().StringVar(&analyzeExpected, "expected", "", "Expected behavior, passed to the correctness checker")
	analyzeCmd.Flags().StringVar(&analyzeProfile, "profile", "", "Learner profile file (json, yaml or toml)")
	analyzeCmd.Flags().StringVar(&analyzeStyle, "style", "", "Single learning style (analytical, creative, practical, collaborative)")
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "Learner id in the profile store")
	_ = analyzeCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(analyzeCmd)
}

// FileResult is the analysis of one file when several are given.
type FileResult struct {
	File     string             `json:"file"`
	Response *engine.Response   `json:"response,omitempty"`
	Error    *errors.CoachError `json:"error,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	start := time.Now()
	sess, err := newSession(cmd, analyzeUser != "")
	if err != nil {
		return err
	}
	defer sess.Close()
	ctx := cmd.Context()

	base, err := baseRequest()
	if err != nil {
		return err
	}
	if analyzeUser != "" {
		p, err := sess.store.LoadProfile(ctx, analyzeUser)
		switch {
		case err == nil:
			base = base.WithStoredProfile(p)
		case !errors.Is(err, errors.ProfileNotFound):
			return err
		}
	}

	reqs := make([]engine.Request, len(args))
	for i, path := range args {
		code, err := readSource(path, cmd.InOrStdin())
		if err != nil {
			return err
		}
		lang := analyzeLang
		if lang == "" {
			if lang = languageFromPath(path); lang == "" {
				return fmt.Errorf("cannot infer language of %s; use --lang", path)
			}
		}
		req := base
		req.Code, req.Language = code, lang
		reqs[i] = req
	}

	var out interface{}
	if len(reqs) == 1 {
		resp, err := sess.engine.Analyze(ctx, reqs[0])
		if err != nil {
			return err
		}
		track(cmd, sess, reqs[0], resp)
		out = resp
	} else {
		batch, err := sess.engine.AnalyzeBatch(ctx, reqs)
		if err != nil {
			return err
		}
		results := make([]FileResult, len(batch))
		for i, res := range batch {
			results[i] = FileResult{File: args[i], Response: res.Response, Error: res.Error}
			if res.Response != nil {
				track(cmd, sess, reqs[i], res.Response)
			}
		}
		out = results
	}

	output, err := FormatResponse(out, OutputFormat(analyzeFormat))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	sess.logger.Debug("Analysis completed",
		"files", len(args),
		"user", analyzeUser,
		"duration", time.Since(start).Milliseconds(),
	)
	return nil
}

// baseRequest builds the request fields shared by every file.
func baseRequest() (engine.Request, error) {
	req := engine.Request{ProblemTitle: analyzeTitle, ExpectedBehavior: analyzeExpected}
	if analyzeProfile != "" {
		p, err := readProfileFile(analyzeProfile)
		if err != nil {
			return req, err
		}
		style := p.Style
		req.LearnerProfile = &style
		req.PriorGaps = p.PriorGaps
		req.Mastered = p.Mastered
		req.SkillLevel = string(p.SkillLevel)
	}
	if analyzeStyle != "" {
		s, err := parseStyle(analyzeStyle)
		if err != nil {
			return req, err
		}
		v := recommend.SingleStyle(s)
		req.LearnerProfile = &v
	}
	return req, nil
}

// track records the submission for --user. Failures are logged, not fatal.
func track(cmd *cobra.Command, sess *session, req engine.Request, resp *engine.Response) {
	if sess.store == nil {
		return
	}
	sub := engine.NewSubmission(req, resp, time.Now())
	id, err := sess.store.Track(cmd.Context(), analyzeUser, sub, resp.Degraded == nil)
	if err != nil {
		sess.logger.Warn("Failed to record submission", "user", analyzeUser, "error", err.Error())
		return
	}
	sess.logger.Info("Recorded submission", "user", analyzeUser, "id", id)
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

var extLanguages = map[string]features.Language{
	".py":   features.LangPython,
	".java": features.LangJava,
	".js":   features.LangJavaScript,
	".mjs":  features.LangJavaScript,
	".cjs":  features.LangJavaScript,
	".cpp":  features.LangCPP,
	".cc":   features.LangCPP,
	".cxx":  features.LangCPP,
	".hpp":  features.LangCPP,
	".go":   features.LangGo,
}

// languageFromPath infers the language tag from a file extension.
func languageFromPath(path string) string {
	return string(extLanguages[strings.ToLower(filepath.Ext(path))])
}

func parseStyle(s string) (recommend.Style, error) {
	style := recommend.Style(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range recommend.Styles {
		if style == known {
			return style, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}
