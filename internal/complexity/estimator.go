package complexity

import (
	"fmt"

	"codecoach/internal/features"
)

// TieBreak selects between several qualifying rules.
type TieBreak string

const (
	// TieHighest evaluates every rule and keeps the fastest-growing bound.
	TieHighest TieBreak = "highest"
	// TieFirst keeps the first qualifying rule in list order.
	TieFirst TieBreak = "first"
)

// ParseTieBreak resolves a config value; empty means TieHighest.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieHighest:
		return TieHighest, nil
	case TieFirst:
		return TieFirst, nil
	default:
		return "", fmt.Errorf("invalid tie-break %q (want %q or %q)", s, TieHighest, TieFirst)
	}
}

// Policy configures an Estimator.
type Policy struct {
	TieBreak TieBreak
}

// Rule inspects a bag and proposes a bound.
type Rule struct {
	Name  string
	Apply func(features.FeatureBag) (Bound, bool)
}

// Estimator applies ordered time and space rules.
type Estimator struct {
	policy     Policy
	timeRules  []Rule
	spaceRules []Rule
}

// NewEstimator creates an estimator over the builtin rules.
func NewEstimator(policy Policy) *Estimator {
	if policy.TieBreak == "" {
		policy.TieBreak = TieHighest
	}
	return &Estimator{
		policy:     policy,
		timeRules:  TimeRules,
		spaceRules: SpaceRules,
	}
}

var defaultEstimator = NewEstimator(Policy{TieBreak: TieHighest})

// Analyze runs the default estimator.
func Analyze(bag features.FeatureBag) Estimate {
	return defaultEstimator.Estimate(bag)
}

// Estimate derives time and space bounds. An unparsed bag, or one no rule
// qualifies for, yields Unknown.
func (e *Estimator) Estimate(bag features.FeatureBag) Estimate {
	if !bag.Parsed {
		return Estimate{Reasons: []string{"time: source yielded no tokens", "space: source yielded no tokens"}}
	}

	var est Estimate
	var reason string
	est.Time, reason = e.pick(e.timeRules, bag)
	est.Reasons = append(est.Reasons, "time: "+reason)
	est.Space, reason = e.pick(e.spaceRules, bag)
	est.Reasons = append(est.Reasons, "space: "+reason)
	return est
}

func (e *Estimator) pick(rules []Rule, bag features.FeatureBag) (Bound, string) {
	var best Bound
	reason := "no rule qualified"
	for _, r := range rules {
		b, ok := r.Apply(bag)
		if !ok {
			continue
		}
		if e.policy.TieBreak == TieFirst {
			return b, r.Name
		}
		if !best.Known() || best.Less(b) {
			best, reason = b, r.Name
		}
	}
	return best, reason
}
