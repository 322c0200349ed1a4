// Package features turns raw submission source into a normalized bag of
// structural facts that the pattern detector and complexity estimator read.
package features

import (
	"sort"
	"strings"
)

// Language represents a supported submission language.
type Language string

const (
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangJavaScript Language = "javascript"
	LangCPP        Language = "cpp"
	LangGo         Language = "go"
)

// Languages lists the supported languages in display order.
var Languages = []Language{LangPython, LangJava, LangJavaScript, LangCPP, LangGo}

// ParseLanguage resolves a language tag, accepting common aliases.
// The second return value is false for unsupported tags.
func ParseLanguage(tag string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "python", "py", "python3":
		return LangPython, true
	case "java":
		return LangJava, true
	case "javascript", "js", "node":
		return LangJavaScript, true
	case "cpp", "c++", "cc", "cxx":
		return LangCPP, true
	case "go", "golang":
		return LangGo, true
	default:
		return "", false
	}
}

// braceDelimited reports whether blocks are delimited by braces rather than indentation.
func (l Language) braceDelimited() bool {
	return l != LangPython
}

// Mode records how a bag was produced.
type Mode string

const (
	// ModeStructural means the source was parsed into a syntax tree.
	ModeStructural Mode = "structural"
	// ModeScan means the token/regex fallback produced the bag.
	ModeScan Mode = "scan"
	// ModeNone means the source carried no tokens at all.
	ModeNone Mode = "none"
)

// Loop describes a single loop construct.
type Loop struct {
	// Line is the 1-based line the loop starts on
	Line int `json:"line"`

	// Depth is the loop nesting depth, 1 for an outermost loop
	Depth int `json:"depth"`

	// LinearDepth counts the enclosing loops (itself included) that scale with the input
	LinearDepth int `json:"linearDepth"`

	// Halving is set when the loop variable is halved or doubled each pass
	Halving bool `json:"halving,omitempty"`

	// EarlyExit is set when the body breaks out of the loop
	EarlyExit bool `json:"earlyExit,omitempty"`

	// Bounded is set for inner loops whose early exit caps their iterations
	Bounded bool `json:"bounded,omitempty"`
}

// Function describes a function or method definition.
type Function struct {
	Name      string `json:"name"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Lines     int    `json:"lines"`

	// SelfCalls counts direct recursive calls in the body
	SelfCalls int `json:"selfCalls,omitempty"`
}

// Recursion summarizes self-calls across all functions.
type Recursion struct {
	Present bool `json:"present"`

	// MaxCallsPerBody is the branching factor of the most branching recursive function
	MaxCallsPerBody int `json:"maxCallsPerBody,omitempty"`

	// Halving is set when a recursive call receives a halved range
	Halving bool `json:"halving,omitempty"`

	// Traversal is set when recursive calls follow structural links (children, next)
	Traversal bool `json:"traversal,omitempty"`

	// InLoop is set when a recursive call is issued from inside a loop
	InLoop bool `json:"inLoop,omitempty"`

	// Memoized is set when results are cached between calls
	Memoized bool `json:"memoized,omitempty"`
}

// FeatureBag is the normalized set of facts extracted from one source unit.
// Every set-like slice is sorted so equal input yields an equal bag.
type FeatureBag struct {
	Language Language `json:"language"`
	Mode     Mode     `json:"mode"`
	Parsed   bool     `json:"parsed"`

	// Tokens is the ordered sequence of keywords of interest
	Tokens []string `json:"tokens,omitempty"`

	// Identifiers is the sorted set of identifiers
	Identifiers []string `json:"identifiers,omitempty"`

	// Containers is the sorted set of container kinds in use
	Containers []string `json:"containers,omitempty"`

	// Markers is the sorted set of library and idiom markers
	Markers []string `json:"markers,omitempty"`

	Functions []Function `json:"functions,omitempty"`
	Loops     []Loop     `json:"loops,omitempty"`
	Recursion Recursion  `json:"recursion"`

	LoopCount      int `json:"loopCount"`
	MaxLoopDepth   int `json:"maxLoopDepth"`
	MaxLinearDepth int `json:"maxLinearDepth"`

	// HalvingLoop is set when any loop halves its range
	HalvingLoop bool `json:"halvingLoop,omitempty"`

	// HalvingInLinear is set when a halving loop runs inside a loop that scales with the input
	HalvingInLinear bool `json:"halvingInLinear,omitempty"`

	// ContainerGrowth is set when a container is written inside a loop or recursion
	ContainerGrowth bool `json:"containerGrowth,omitempty"`

	// AdvancingIndices is the sorted set of variables stepped by one inside loops
	AdvancingIndices []string `json:"advancingIndices,omitempty"`

	// OpposingIndices is set when one index moves forward while another moves back
	OpposingIndices bool `json:"opposingIndices,omitempty"`

	LineCount            int `json:"lineCount"`
	MaxNesting           int `json:"maxNesting"`
	Conditionals         int `json:"conditionals"`
	CyclomaticComplexity int `json:"cyclomaticComplexity"`
	DuplicateLines       int `json:"duplicateLines"`
}

// HasContainer reports whether the named container kind is in use.
func (b FeatureBag) HasContainer(name string) bool {
	return contains(b.Containers, name)
}

// HasMarker reports whether the named marker is present.
func (b FeatureBag) HasMarker(name string) bool {
	return contains(b.Markers, name)
}

// HasIdentifier reports whether any of the names is a declared identifier.
func (b FeatureBag) HasIdentifier(names ...string) bool {
	for _, n := range names {
		if contains(b.Identifiers, n) {
			return true
		}
	}
	return false
}

// contains does a binary search over a sorted slice.
func contains(sorted []string, s string) bool {
	i := sort.SearchStrings(sorted, s)
	return i < len(sorted) && sorted[i] == s
}
