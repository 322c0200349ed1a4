package patterns

import "codecoach/internal/features"

// Detector evaluates a rule catalog against feature bags.
type Detector struct {
	rules     []Rule
	threshold float64
}

// NewDetector creates a detector over rules. threshold replaces
// DefaultMinConfidence for rules that do not set their own; zero keeps the default.
func NewDetector(rules []Rule, threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultMinConfidence
	}
	return &Detector{rules: rules, threshold: threshold}
}

var defaultDetector = NewDetector(BuiltinRules, DefaultMinConfidence)

// Detect runs the builtin catalog.
func Detect(bag features.FeatureBag) []Match {
	return defaultDetector.Detect(bag)
}

// Detect returns every rule whose confidence reaches its threshold, in
// catalog order. Rules are not mutually exclusive. An unparsed bag yields
// no matches.
func (d *Detector) Detect(bag features.FeatureBag) []Match {
	if !bag.Parsed {
		return nil
	}

	var matches []Match
	for _, rule := range d.rules {
		if m, ok := d.evaluate(rule, bag); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

func (d *Detector) evaluate(rule Rule, bag features.FeatureBag) (Match, bool) {
	if len(rule.Evidence) == 0 {
		return Match{}, false
	}

	var held []string
	for _, ev := range rule.Evidence {
		if ev.Test(bag) {
			held = append(held, ev.Name)
		} else if ev.Required {
			return Match{}, false
		}
	}
	if len(held) == 0 {
		return Match{}, false
	}

	confidence := float64(len(held)) / float64(len(rule.Evidence))
	threshold := rule.MinConfidence
	if threshold <= 0 {
		threshold = d.threshold
	}
	if confidence < threshold {
		return Match{}, false
	}

	return Match{
		Name:       rule.Name,
		Kind:       rule.Kind,
		Confidence: confidence,
		Evidence:   held,
	}, true
}

// Names projects the names of matches of one kind, keeping catalog order.
func Names(matches []Match, kind Kind) []string {
	names := []string{}
	for _, m := range matches {
		if m.Kind == kind {
			names = append(names, m.Name)
		}
	}
	return names
}

// Rules returns the rules of the detector's catalog.
func (d *Detector) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}
