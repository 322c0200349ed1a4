package patterns

import "codecoach/internal/features"

type bag = features.FeatureBag

func container(names ...string) func(bag) bool {
	return func(b bag) bool {
		for _, n := range names {
			if b.HasContainer(n) {
				return true
			}
		}
		return false
	}
}

func marker(names ...string) func(bag) bool {
	return func(b bag) bool {
		for _, n := range names {
			if b.HasMarker(n) {
				return true
			}
		}
		return false
	}
}

func hasLoop(b bag) bool { return b.LoopCount > 0 }

func loopOrRecursion(b bag) bool { return b.LoopCount > 0 || b.Recursion.Present }

// BuiltinRules is the detection catalog. Output follows this order.
var BuiltinRules = []Rule{
	// ============ patterns ============
	{
		Name:        "two_pointers",
		Kind:        KindPattern,
		Description: "two indices walking the same sequence",
		Evidence: []Evidence{
			{Name: "two advancing indices", Test: func(b bag) bool { return len(b.AdvancingIndices) >= 2 }, Required: true},
			{Name: "opposing movement", Test: func(b bag) bool { return b.OpposingIndices }},
			{Name: "indexed sequence", Test: container("array")},
		},
	},
	{
		Name:        "sliding_window",
		Kind:        KindPattern,
		Description: "a window grown on one side and shrunk on the other",
		Evidence: []Evidence{
			{Name: "window bookkeeping", Test: marker("window"), Required: true},
			{Name: "shrinking inner loop", Test: func(b bag) bool { return b.MaxLoopDepth >= 2 && len(b.AdvancingIndices) >= 1 }},
			{Name: "running aggregate", Test: func(b bag) bool {
				return b.HasMarker("counter") || b.HasMarker("minmax") || b.HasContainer("hash_map") || b.HasContainer("hash_set")
			}},
		},
	},
	{
		Name:        "fast_slow_pointers",
		Kind:        KindPattern,
		Description: "tortoise and hare traversal",
		Evidence: []Evidence{
			{Name: "slow and fast cursors", Test: marker("slow_fast"), Required: true},
			{Name: "linked nodes", Test: container("linked_list")},
			{Name: "loop", Test: hasLoop},
		},
	},
	{
		Name:        "binary_search",
		Kind:        KindPattern,
		Description: "halving a sorted search space",
		Evidence: []Evidence{
			{Name: "halving range", Test: func(b bag) bool {
				return b.HalvingLoop || (b.Recursion.Halving && b.Recursion.MaxCallsPerBody == 1)
			}},
			{Name: "midpoint", Test: marker("mid")},
			{Name: "library bisection", Test: marker("bisect")},
		},
	},
	{
		Name:        "merge_intervals",
		Kind:        KindPattern,
		Description: "sorting intervals and folding overlaps",
		Evidence: []Evidence{
			{Name: "intervals", Test: marker("interval"), Required: true},
			{Name: "sorted input", Test: marker("sort")},
			{Name: "extend or merge", Test: marker("merge", "minmax")},
		},
	},
	{
		Name:        "tree_dfs",
		Kind:        KindPattern,
		Description: "depth-first tree traversal",
		Evidence: []Evidence{
			{Name: "tree nodes", Test: container("tree"), Required: true},
			{Name: "recursion over children", Test: func(b bag) bool { return b.Recursion.Traversal }},
			{Name: "explicit stack", Test: container("stack")},
		},
	},
	{
		Name:        "tree_bfs",
		Kind:        KindPattern,
		Description: "level-order tree traversal",
		Evidence: []Evidence{
			{Name: "tree nodes", Test: container("tree"), Required: true},
			{Name: "queue", Test: container("queue", "deque"), Required: true},
			{Name: "level loop", Test: func(b bag) bool { return b.MaxLoopDepth >= 2 || b.HasIdentifier("level", "levels", "depth") }},
		},
	},
	{
		Name:        "topological_sort",
		Kind:        KindPattern,
		Description: "ordering a DAG by in-degree",
		Evidence: []Evidence{
			{Name: "in-degree table", Test: func(b bag) bool {
				return b.HasIdentifier("indegree", "in_degree", "inDegree", "indeg", "inDeg")
			}, Required: true},
			{Name: "graph", Test: container("graph")},
			{Name: "queue", Test: container("queue", "deque")},
		},
	},
	{
		Name:        "backtracking",
		Kind:        KindPattern,
		Description: "explore, recurse, undo",
		Evidence: []Evidence{
			{Name: "recursion inside a loop", Test: func(b bag) bool { return b.Recursion.InLoop }, Required: true},
			{Name: "undo step", Test: marker("backtrack")},
			{Name: "used set", Test: marker("visited")},
		},
	},
	{
		Name:        "prefix_sum",
		Kind:        KindPattern,
		Description: "running totals answering range queries",
		Evidence: []Evidence{
			{Name: "prefix aggregate", Test: marker("prefix"), Required: true},
			{Name: "indexed sequence", Test: container("array")},
			{Name: "built in a pass", Test: func(b bag) bool { return b.ContainerGrowth || b.HasMarker("sized_alloc") }},
		},
	},

	// ============ algorithms ============
	{
		Name:        "dynamic_programming",
		Kind:        KindAlgorithm,
		Description: "reusing overlapping subproblem results",
		Evidence: []Evidence{
			{Name: "tabulation", Test: marker("dp_table")},
			{Name: "memoization", Test: func(b bag) bool { return b.Recursion.Memoized }},
		},
	},
	{
		Name:        "greedy",
		Kind:        KindAlgorithm,
		Description: "locally optimal choice per step",
		Evidence: []Evidence{
			{Name: "sorted input", Test: marker("sort")},
			{Name: "running best", Test: marker("minmax")},
			{Name: "single pass", Test: func(b bag) bool { return b.MaxLinearDepth == 1 && !b.Recursion.Present }},
		},
		MinConfidence: 0.6,
	},
	{
		Name:        "divide_and_conquer",
		Kind:        KindAlgorithm,
		Description: "split, solve halves, combine",
		Evidence: []Evidence{
			{Name: "halved subproblems", Test: func(b bag) bool { return b.Recursion.Halving }, Required: true},
			{Name: "two recursive calls", Test: func(b bag) bool { return b.Recursion.MaxCallsPerBody >= 2 }},
			{Name: "combine step", Test: marker("merge", "partition")},
		},
	},
	{
		Name:        "sorting",
		Kind:        KindAlgorithm,
		Description: "ordering elements",
		Evidence: []Evidence{
			{Name: "library sort", Test: marker("sort")},
			{Name: "element swap", Test: marker("swap")},
			{Name: "partition or merge", Test: marker("partition", "merge")},
		},
		MinConfidence: 0.3,
	},
	{
		Name:        "graph_traversal",
		Kind:        KindAlgorithm,
		Description: "BFS or DFS over a graph",
		Evidence: []Evidence{
			{Name: "graph", Test: container("graph"), Required: true},
			{Name: "visited set", Test: marker("visited")},
			{Name: "frontier", Test: func(b bag) bool {
				return b.HasContainer("queue") || b.HasContainer("deque") || b.HasContainer("stack") || b.Recursion.Present
			}},
		},
	},

	// ============ data structures ============
	{
		Name:        "hash_table",
		Kind:        KindDataStructure,
		Description: "constant-time keyed lookup",
		Evidence: []Evidence{
			{Name: "map or set", Test: container("hash_map", "hash_set"), Required: true},
			{Name: "membership test", Test: marker("lookup")},
			{Name: "frequency count", Test: marker("counter")},
		},
	},
	{
		Name: "array",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "indexed sequence", Test: container("array"), Required: true},
			{Name: "iterated", Test: loopOrRecursion},
		},
	},
	{
		Name: "stack",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "stack", Test: container("stack"), Required: true},
			{Name: "pop", Test: marker("backtrack")},
		},
	},
	{
		Name: "queue",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "queue", Test: container("queue", "deque"), Required: true},
			{Name: "drained in a loop", Test: hasLoop},
		},
	},
	{
		Name: "heap",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "heap", Test: container("heap"), Required: true},
			{Name: "push/pop", Test: marker("heap_op")},
		},
	},
	{
		Name: "linked_list",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "linked nodes", Test: container("linked_list"), Required: true},
			{Name: "walked", Test: loopOrRecursion},
		},
	},
	{
		Name: "tree",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "tree nodes", Test: container("tree"), Required: true},
			{Name: "walked", Test: loopOrRecursion},
		},
	},
	{
		Name: "graph",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "adjacency", Test: container("graph"), Required: true},
			{Name: "visited set", Test: marker("visited")},
		},
	},
	{
		Name: "matrix",
		Kind: KindDataStructure,
		Evidence: []Evidence{
			{Name: "two-dimensional table", Test: container("matrix"), Required: true},
			{Name: "nested iteration", Test: func(b bag) bool { return b.MaxLoopDepth >= 2 }},
		},
	},
}
