// Package patterns recognises problem-solving patterns, algorithm families
// and data structures from a features.FeatureBag.
package patterns

import "codecoach/internal/features"

// Kind groups catalog entries for the output contract.
type Kind string

const (
	KindPattern       Kind = "pattern"
	KindAlgorithm     Kind = "algorithm"
	KindDataStructure Kind = "data_structure"
)

// DefaultMinConfidence is the threshold applied to rules that leave MinConfidence unset.
const DefaultMinConfidence = 0.5

// Evidence is one observable fact supporting a rule.
type Evidence struct {
	Name string
	Test func(features.FeatureBag) bool

	// Required evidence must hold for the rule to match at all
	Required bool
}

// Rule is a declarative catalog entry. Adding a pattern means appending a Rule.
type Rule struct {
	Name          string
	Kind          Kind
	Description   string
	Evidence      []Evidence
	MinConfidence float64
}

// Match is a rule that fired on a bag.
type Match struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// Confidence is the fraction of the rule's evidence that held, in (0,1]
	Confidence float64 `json:"confidence"`

	// Evidence names the facts that held
	Evidence []string `json:"evidence"`
}
