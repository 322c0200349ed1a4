package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"codecoach/internal/complexity"
	"codecoach/internal/config"
	"codecoach/internal/correctness"
	"codecoach/internal/errors"
	"codecoach/internal/features"
	"codecoach/internal/patterns"
	"codecoach/internal/quality"
	"codecoach/internal/recommend"
	"codecoach/internal/slogutil"
)

// Engine runs the analysis pipeline. It keeps no per-call state and is safe
// for concurrent use.
type Engine struct {
	logger    *slog.Logger
	checker   correctness.Checker
	detector  *patterns.Detector
	estimator *complexity.Estimator
	synth     *recommend.Synthesizer

	// analyze is the pipeline; replaced in tests
	analyze func(context.Context, SourceUnit) AnalysisBundle

	maxSource          int
	budget             time.Duration
	correctnessTimeout time.Duration
	concurrency        int
}

// NewEngine creates an engine from cfg. checker may be nil, in which case
// responses never carry a correctness section.
func NewEngine(cfg *config.Config, checker correctness.Checker, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tie, err := complexity.ParseTieBreak(cfg.Analysis.TieBreak)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}

	e := &Engine{
		logger:    logger,
		checker:   checker,
		detector:  patterns.NewDetector(patterns.BuiltinRules, cfg.Analysis.PatternThreshold),
		estimator: complexity.NewEstimator(complexity.Policy{TieBreak: tie}),
		synth: recommend.NewSynthesizer(recommend.Options{
			MasteryThreshold: cfg.Analysis.MasteryThreshold,
			MaxConcepts:      cfg.Analysis.MaxConcepts,
			MaxProblems:      cfg.Analysis.MaxProblems,
		}),
		maxSource:          cfg.Analysis.MaxSourceBytes,
		budget:             cfg.TimeBudget(),
		correctnessTimeout: cfg.CorrectnessTimeout(),
		concurrency:        cfg.Analysis.BatchConcurrency,
	}
	e.analyze = e.pipeline
	return e, nil
}

// HasChecker reports whether a correctness checker is configured.
func (e *Engine) HasChecker() bool {
	return e.checker != nil
}

// Analyze validates req and produces its analysis and recommendations.
//
// Oversized source is truncated and flagged rather than rejected. When the
// time budget elapses the response carries an Unknown analysis and a
// Degraded TIMEOUT note. Only a contract violation or a cancelled ctx
// yields an error.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lang, _ := features.ParseLanguage(req.Language)

	code, truncated := truncate(req.Code, e.maxSource)
	unit := SourceUnit{
		Code:             code,
		Language:         lang,
		ProblemTitle:     req.ProblemTitle,
		ExpectedBehavior: req.ExpectedBehavior,
	}

	bctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	verdicts := make(chan correctness.Outcome, 1)
	go func() {
		verdicts <- correctness.Resolve(bctx, e.checker, correctness.Request{
			Code:             unit.Code,
			Language:         string(unit.Language),
			ExpectedBehavior: unit.ExpectedBehavior,
		}, e.correctnessTimeout)
	}()

	resp := &Response{}
	analyses := make(chan AnalysisBundle, 1)
	go func() { analyses <- e.analyze(bctx, unit) }()

	select {
	case resp.Analysis = <-analyses:
	case <-bctx.Done():
		if ctx.Err() != nil {
			return nil, errors.New(errors.Timeout, "analysis cancelled", ctx.Err())
		}
		e.logger.Warn("Analysis exceeded time budget",
			"problem", unit.ProblemTitle,
			"budget", e.budget,
		)
		resp.Analysis = unknownBundle()
		resp.Degraded = &Degraded{
			Code:    errors.Timeout,
			Message: fmt.Sprintf("analysis exceeded the %s time budget", e.budget),
		}
	}

	if truncated {
		resp.Analysis.Truncated = true
		resp.Analysis.Issues = append(resp.Analysis.Issues,
			fmt.Sprintf("source truncated to %d characters", e.maxSource))
	}

	outcome := <-verdicts
	if !outcome.Available && e.checker != nil {
		e.logger.Debug("Correctness verdict unavailable", "reason", outcome.Reason)
	}

	resp.Recommendations = e.synth.Synthesize(
		resp.Analysis.synthesisInput(unit.ProblemTitle),
		req.Profile(),
		outcome.Verdict,
	)
	return resp, nil
}

// AnalyzeBatch analyzes independent requests in parallel. Results keep the
// input order; a rejected request fails only its own entry.
func (e *Engine) AnalyzeBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	results := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := e.Analyze(gctx, req)
			if err != nil {
				if errors.CodeOf(err) == errors.Timeout && gctx.Err() != nil {
					return err
				}
				results[i].Error = errors.From(err)
				return nil
			}
			results[i].Response = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// pipeline is the pure analysis: features, patterns, complexity, scores.
func (e *Engine) pipeline(ctx context.Context, unit SourceUnit) AnalysisBundle {
	bag := features.Extract(ctx, unit.Code, unit.Language)
	matches := e.detector.Detect(bag)
	est := e.estimator.Estimate(bag)
	scores := quality.Score(bag, matches, est)

	issues := scores.Issues
	if issues == nil {
		issues = []string{}
	}
	if matches == nil {
		matches = []patterns.Match{}
	}
	return AnalysisBundle{
		Patterns:         patterns.Names(matches, patterns.KindPattern),
		Algorithms:       patterns.Names(matches, patterns.KindAlgorithm),
		DataStructures:   patterns.Names(matches, patterns.KindDataStructure),
		TimeComplexity:   est.Time,
		SpaceComplexity:  est.Space,
		QualityScore:     scores.Quality,
		ComplexityScore:  scores.Complexity,
		Matches:          matches,
		QualityBreakdown: scores.Breakdown,
		Issues:           issues,
		Reasons:          est.Reasons,
		Metrics:          metricsOf(bag),
		Features:         bag,
	}
}

// unknownBundle is the fallback analysis when the pipeline cannot finish.
func unknownBundle() AnalysisBundle {
	return AnalysisBundle{
		Patterns:        []string{},
		Algorithms:      []string{},
		DataStructures:  []string{},
		QualityScore:    quality.NeutralScore,
		ComplexityScore: quality.NeutralScore,
		Matches:         []patterns.Match{},
		Issues:          []string{"analysis did not complete within the time budget"},
		Metrics:         Metrics{Mode: features.ModeNone},
	}
}

func metricsOf(bag features.FeatureBag) Metrics {
	return Metrics{
		Mode:                 bag.Mode,
		Lines:                bag.LineCount,
		Functions:            len(bag.Functions),
		Loops:                bag.LoopCount,
		MaxLoopDepth:         bag.MaxLoopDepth,
		MaxNesting:           bag.MaxNesting,
		CyclomaticComplexity: bag.CyclomaticComplexity,
		Recursive:            bag.Recursion.Present,
	}
}

// truncate caps code at limit characters.
func truncate(code string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(code) <= limit {
		return code, false
	}
	n := 0
	for i := range code {
		if n == limit {
			return code[:i], true
		}
		n++
	}
	return code, false
}
