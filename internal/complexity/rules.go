package complexity

import "codecoach/internal/features"

// exponential reports recursion that re-solves overlapping subproblems:
// several self-calls per body, or a self-call from inside a loop, with no
// cache, no halving and no structural traversal.
func exponential(b features.FeatureBag) bool {
	r := b.Recursion
	return r.Present && !r.Memoized && !r.Halving && !r.Traversal &&
		(r.MaxCallsPerBody >= 2 || r.InLoop)
}

// TimeRules is the ordered time rule list.
var TimeRules = []Rule{
	{
		Name: "exponential recursion",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			if !exponential(b) {
				return Bound{}, false
			}
			if b.Recursion.InLoop && b.HasMarker("visited") {
				return ONFact, true
			}
			return O2N, true
		},
	},
	{
		Name: "nested loops",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			if b.MaxLinearDepth < 2 {
				return Bound{}, false
			}
			return Poly(b.MaxLinearDepth), true
		},
	},
	{
		Name: "single pass",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			r := b.Recursion
			if b.MaxLinearDepth == 1 {
				return ON, true
			}
			if r.Present && !r.Halving && (r.MaxCallsPerBody == 1 || r.Traversal || r.Memoized) {
				return ON, true
			}
			return Bound{}, false
		},
	},
	{
		Name: "divide and conquer",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			r := b.Recursion
			switch {
			case r.Halving && (r.MaxCallsPerBody >= 2 || b.MaxLinearDepth >= 1):
				return ONLogN, true
			case b.HalvingInLinear:
				return ONLogN, true
			case b.HasMarker("sort") && b.MaxLinearDepth <= 1:
				return ONLogN, true
			case b.HasMarker("heap_op") && b.MaxLinearDepth == 1:
				return ONLogN, true
			}
			return Bound{}, false
		},
	},
	{
		Name: "logarithmic halving",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			r := b.Recursion
			if b.HalvingLoop && b.MaxLinearDepth == 0 {
				return OLogN, true
			}
			if r.Halving && r.MaxCallsPerBody == 1 && b.MaxLinearDepth == 0 {
				return OLogN, true
			}
			return Bound{}, false
		},
	},
	{
		Name: "straight-line code",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			if b.LoopCount == 0 && !b.Recursion.Present {
				return O1, true
			}
			return Bound{}, false
		},
	},
}

// SpaceRules is the ordered space rule list.
var SpaceRules = []Rule{
	{
		Name: "two-dimensional table",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			if b.HasContainer("matrix") && (b.HasMarker("dp_table") || b.HasMarker("sized_alloc")) {
				return ON2, true
			}
			return Bound{}, false
		},
	},
	{
		Name: "container growing with input",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			if b.ContainerGrowth || b.HasMarker("sized_alloc") {
				return ON, true
			}
			return Bound{}, false
		},
	},
	{
		Name: "recursion depth",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			r := b.Recursion
			if !r.Present {
				return Bound{}, false
			}
			if r.Halving && r.MaxCallsPerBody == 1 {
				return OLogN, true
			}
			return ON, true
		},
	},
	{
		Name: "fixed locals",
		Apply: func(b features.FeatureBag) (Bound, bool) {
			return O1, true
		},
	},
}
