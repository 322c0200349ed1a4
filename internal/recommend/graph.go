package recommend

// Difficulty grades a concept or resource.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) rank() int {
	switch d {
	case DifficultyBeginner, "easy":
		return 0
	case DifficultyAdvanced, "hard":
		return 2
	default:
		return 1
	}
}

// Concept categories.
const (
	CategoryDataStructure = "data_structure"
	CategoryAlgorithm     = "algorithm"
	CategoryPattern       = "pattern"
	CategoryPractice      = "practice"
)

const defaultBaseMinutes = 120

// Concept is a node in the knowledge graph.
type Concept struct {
	Name          string
	Category      string
	Prerequisites []string
	LeadsTo       []string
	Difficulty    Difficulty
	Importance    float64
	BaseMinutes   int
}

// KnowledgeGraph is the fixed concept table in declaration order.
var KnowledgeGraph = []Concept{
	{"array", CategoryDataStructure, nil, []string{"two_pointers", "sliding_window", "prefix_sum", "dynamic_programming"}, DifficultyBeginner, 0.9, 60},
	{"linked_list", CategoryDataStructure, []string{"array"}, []string{"fast_slow_pointers", "stack", "queue", "tree"}, DifficultyBeginner, 0.8, 90},
	{"stack", CategoryDataStructure, []string{"linked_list"}, []string{"monotonic_stack", "recursion", "backtracking"}, DifficultyIntermediate, 0.7, 90},
	{"queue", CategoryDataStructure, []string{"linked_list"}, []string{"tree_bfs", "graph_traversal"}, DifficultyIntermediate, 0.7, 90},
	{"hash_table", CategoryDataStructure, []string{"array"}, []string{"memoization", "prefix_sum", "sliding_window"}, DifficultyIntermediate, 0.9, 120},
	{"heap", CategoryDataStructure, []string{"array", "tree"}, []string{"shortest_path", "greedy"}, DifficultyAdvanced, 0.8, 150},
	{"tree", CategoryDataStructure, []string{"linked_list", "recursion"}, []string{"tree_dfs", "tree_bfs", "trie"}, DifficultyIntermediate, 0.8, 150},
	{"graph", CategoryDataStructure, []string{"tree", "queue"}, []string{"graph_traversal", "topological_sort", "shortest_path", "union_find"}, DifficultyAdvanced, 0.9, 180},
	{"matrix", CategoryDataStructure, []string{"array"}, []string{"dynamic_programming", "graph_traversal"}, DifficultyIntermediate, 0.7, 90},
	{"two_pointers", CategoryPattern, []string{"array"}, []string{"sliding_window", "merge_intervals", "fast_slow_pointers"}, DifficultyIntermediate, 0.8, 90},
	{"sliding_window", CategoryPattern, []string{"two_pointers", "hash_table"}, []string{"monotonic_stack"}, DifficultyIntermediate, 0.8, 120},
	{"fast_slow_pointers", CategoryPattern, []string{"linked_list", "two_pointers"}, nil, DifficultyIntermediate, 0.6, 60},
	{"binary_search", CategoryPattern, []string{"array"}, []string{"divide_and_conquer"}, DifficultyIntermediate, 0.9, 120},
	{"merge_intervals", CategoryPattern, []string{"sorting", "two_pointers"}, []string{"greedy"}, DifficultyIntermediate, 0.7, 90},
	{"prefix_sum", CategoryPattern, []string{"array"}, []string{"dynamic_programming"}, DifficultyBeginner, 0.7, 60},
	{"tree_dfs", CategoryPattern, []string{"tree", "recursion"}, []string{"backtracking", "graph_traversal"}, DifficultyIntermediate, 0.8, 120},
	{"tree_bfs", CategoryPattern, []string{"tree", "queue"}, []string{"graph_traversal", "shortest_path"}, DifficultyIntermediate, 0.8, 120},
	{"topological_sort", CategoryPattern, []string{"graph", "queue"}, nil, DifficultyAdvanced, 0.7, 150},
	{"backtracking", CategoryPattern, []string{"recursion", "tree_dfs"}, []string{"dynamic_programming"}, DifficultyAdvanced, 0.8, 180},
	{"dynamic_programming", CategoryAlgorithm, []string{"recursion", "memoization"}, nil, DifficultyAdvanced, 0.9, 300},
	{"greedy", CategoryAlgorithm, []string{"sorting"}, nil, DifficultyIntermediate, 0.7, 120},
	{"divide_and_conquer", CategoryAlgorithm, []string{"recursion"}, []string{"sorting"}, DifficultyIntermediate, 0.7, 150},
	{"sorting", CategoryAlgorithm, []string{"array"}, []string{"binary_search", "greedy", "merge_intervals"}, DifficultyBeginner, 0.8, 90},
	{"graph_traversal", CategoryAlgorithm, []string{"graph", "queue", "recursion"}, []string{"topological_sort", "shortest_path"}, DifficultyIntermediate, 0.8, 150},
	{"recursion", CategoryAlgorithm, nil, []string{"tree_dfs", "backtracking", "divide_and_conquer", "memoization"}, DifficultyIntermediate, 0.9, 180},
	{"memoization", CategoryAlgorithm, []string{"recursion", "hash_table"}, []string{"dynamic_programming"}, DifficultyIntermediate, 0.8, 120},
	{"shortest_path", CategoryAlgorithm, []string{"graph_traversal", "heap"}, nil, DifficultyAdvanced, 0.7, 180},
	{"trie", CategoryDataStructure, []string{"tree", "hash_table"}, nil, DifficultyAdvanced, 0.6, 120},
	{"union_find", CategoryDataStructure, []string{"graph"}, nil, DifficultyAdvanced, 0.6, 120},
	{"monotonic_stack", CategoryPattern, []string{"stack"}, nil, DifficultyAdvanced, 0.6, 120},
	{"complexity_analysis", CategoryPractice, nil, []string{"algorithmic_optimization"}, DifficultyBeginner, 0.8, 60},
	{"algorithmic_optimization", CategoryPractice, []string{"complexity_analysis"}, []string{"hash_table", "two_pointers", "sorting"}, DifficultyIntermediate, 0.9, 120},
	{"space_optimization", CategoryPractice, []string{"complexity_analysis"}, []string{"dynamic_programming"}, DifficultyIntermediate, 0.6, 90},
	{"code_quality", CategoryPractice, nil, nil, DifficultyBeginner, 0.7, 60},
}

var conceptIndex = func() map[string]int {
	m := make(map[string]int, len(KnowledgeGraph))
	for i, c := range KnowledgeGraph {
		m[c.Name] = i
	}
	return m
}()

// LookupConcept returns the graph node for name.
func LookupConcept(name string) (Concept, bool) {
	i, ok := conceptIndex[name]
	if !ok {
		return Concept{Name: name, Category: CategoryPractice, Difficulty: DifficultyIntermediate, Importance: 0.5, BaseMinutes: defaultBaseMinutes}, false
	}
	return KnowledgeGraph[i], true
}

// conceptOrder is the declaration position, or len(graph) for unknown names.
func conceptOrder(name string) int {
	if i, ok := conceptIndex[name]; ok {
		return i
	}
	return len(KnowledgeGraph)
}

// Resource is a study resource attached to a concept.
type Resource struct {
	Concept          string     `json:"concept"`
	Title            string     `json:"title"`
	Type             string     `json:"type"`
	URL              string     `json:"url,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	EstimatedMinutes int        `json:"estimated_time"`
}

// Resources maps concepts to study material in preference order.
var Resources = map[string][]Resource{
	"array": {
		{Title: "Array Fundamentals", Type: "article", Difficulty: DifficultyBeginner, EstimatedMinutes: 30},
		{Title: "Two Sum Problem", Type: "practice", URL: "https://leetcode.com/problems/two-sum/", Difficulty: "easy", EstimatedMinutes: 20},
	},
	"linked_list": {
		{Title: "Linked List Implementation", Type: "tutorial", Difficulty: DifficultyBeginner, EstimatedMinutes: 45},
		{Title: "Reverse Linked List", Type: "practice", URL: "https://leetcode.com/problems/reverse-linked-list/", Difficulty: "easy", EstimatedMinutes: 25},
	},
	"dynamic_programming": {
		{Title: "DP Patterns and Techniques", Type: "video", Difficulty: DifficultyAdvanced, EstimatedMinutes: 120},
		{Title: "Climbing Stairs", Type: "practice", URL: "https://leetcode.com/problems/climbing-stairs/", Difficulty: "easy", EstimatedMinutes: 15},
	},
	"binary_search": {
		{Title: "Binary Search Template", Type: "article", Difficulty: DifficultyIntermediate, EstimatedMinutes: 40},
		{Title: "Search Insert Position", Type: "practice", URL: "https://leetcode.com/problems/search-insert-position/", Difficulty: "easy", EstimatedMinutes: 20},
	},
	"hash_table": {
		{Title: "Contains Duplicate", Type: "practice", URL: "https://leetcode.com/problems/contains-duplicate/", Difficulty: "easy", EstimatedMinutes: 15},
		{Title: "Group Anagrams", Type: "practice", URL: "https://leetcode.com/problems/group-anagrams/", Difficulty: "medium", EstimatedMinutes: 30},
	},
	"two_pointers": {
		{Title: "Valid Palindrome", Type: "practice", URL: "https://leetcode.com/problems/valid-palindrome/", Difficulty: "easy", EstimatedMinutes: 20},
		{Title: "3Sum", Type: "practice", URL: "https://leetcode.com/problems/3sum/", Difficulty: "medium", EstimatedMinutes: 40},
	},
	"sliding_window": {
		{Title: "Longest Substring Without Repeating Characters", Type: "practice", URL: "https://leetcode.com/problems/longest-substring-without-repeating-characters/", Difficulty: "medium", EstimatedMinutes: 35},
	},
	"recursion": {
		{Title: "Fibonacci Number", Type: "practice", URL: "https://leetcode.com/problems/fibonacci-number/", Difficulty: "easy", EstimatedMinutes: 15},
	},
	"memoization": {
		{Title: "Fibonacci Number", Type: "practice", URL: "https://leetcode.com/problems/fibonacci-number/", Difficulty: "easy", EstimatedMinutes: 15},
		{Title: "House Robber", Type: "practice", URL: "https://leetcode.com/problems/house-robber/", Difficulty: "medium", EstimatedMinutes: 30},
	},
	"tree_bfs": {
		{Title: "Binary Tree Level Order Traversal", Type: "practice", URL: "https://leetcode.com/problems/binary-tree-level-order-traversal/", Difficulty: "medium", EstimatedMinutes: 30},
	},
	"tree_dfs": {
		{Title: "Maximum Depth of Binary Tree", Type: "practice", URL: "https://leetcode.com/problems/maximum-depth-of-binary-tree/", Difficulty: "easy", EstimatedMinutes: 20},
	},
	"backtracking": {
		{Title: "Subsets", Type: "practice", URL: "https://leetcode.com/problems/subsets/", Difficulty: "medium", EstimatedMinutes: 35},
		{Title: "Permutations", Type: "practice", URL: "https://leetcode.com/problems/permutations/", Difficulty: "medium", EstimatedMinutes: 35},
	},
	"graph_traversal": {
		{Title: "Number of Islands", Type: "practice", URL: "https://leetcode.com/problems/number-of-islands/", Difficulty: "medium", EstimatedMinutes: 40},
	},
	"topological_sort": {
		{Title: "Course Schedule", Type: "practice", URL: "https://leetcode.com/problems/course-schedule/", Difficulty: "medium", EstimatedMinutes: 45},
	},
	"heap": {
		{Title: "Kth Largest Element in an Array", Type: "practice", URL: "https://leetcode.com/problems/kth-largest-element-in-an-array/", Difficulty: "medium", EstimatedMinutes: 30},
	},
	"stack": {
		{Title: "Valid Parentheses", Type: "practice", URL: "https://leetcode.com/problems/valid-parentheses/", Difficulty: "easy", EstimatedMinutes: 20},
	},
	"greedy": {
		{Title: "Jump Game", Type: "practice", URL: "https://leetcode.com/problems/jump-game/", Difficulty: "medium", EstimatedMinutes: 30},
	},
	"prefix_sum": {
		{Title: "Range Sum Query - Immutable", Type: "practice", URL: "https://leetcode.com/problems/range-sum-query-immutable/", Difficulty: "easy", EstimatedMinutes: 20},
	},
	"merge_intervals": {
		{Title: "Merge Intervals", Type: "practice", URL: "https://leetcode.com/problems/merge-intervals/", Difficulty: "medium", EstimatedMinutes: 30},
	},
	"fast_slow_pointers": {
		{Title: "Linked List Cycle", Type: "practice", URL: "https://leetcode.com/problems/linked-list-cycle/", Difficulty: "easy", EstimatedMinutes: 20},
	},
}

// Problem is a practice problem for a gap concept.
type Problem struct {
	Concept          string     `json:"concept"`
	Title            string     `json:"title"`
	Difficulty       Difficulty `json:"difficulty"`
	URL              string     `json:"url"`
	EstimatedMinutes int        `json:"estimated_time"`
}

const problemMinutes = 30

func problem(title, difficulty, slug string) Problem {
	return Problem{
		Title:            title,
		Difficulty:       Difficulty(difficulty),
		URL:              "https://leetcode.com/problems/" + slug + "/",
		EstimatedMinutes: problemMinutes,
	}
}

// Problems maps gap concepts to practice problems.
var Problems = map[string][]Problem{
	"array":                    {problem("Two Sum", "easy", "two-sum"), problem("Best Time to Buy and Sell Stock", "easy", "best-time-to-buy-and-sell-stock")},
	"linked_list":              {problem("Reverse Linked List", "easy", "reverse-linked-list"), problem("Merge Two Sorted Lists", "easy", "merge-two-sorted-lists")},
	"dynamic_programming":      {problem("Climbing Stairs", "easy", "climbing-stairs"), problem("House Robber", "medium", "house-robber")},
	"two_pointers":             {problem("Valid Palindrome", "easy", "valid-palindrome"), problem("Container With Most Water", "medium", "container-with-most-water")},
	"hash_table":               {problem("Contains Duplicate", "easy", "contains-duplicate"), problem("Two Sum", "easy", "two-sum")},
	"recursion":                {problem("Fibonacci Number", "easy", "fibonacci-number"), problem("Pow(x, n)", "medium", "powx-n")},
	"memoization":              {problem("Climbing Stairs", "easy", "climbing-stairs"), problem("Coin Change", "medium", "coin-change")},
	"algorithmic_optimization": {problem("Two Sum", "easy", "two-sum"), problem("Longest Consecutive Sequence", "medium", "longest-consecutive-sequence")},
	"space_optimization":       {problem("House Robber", "medium", "house-robber"), problem("Unique Paths", "medium", "unique-paths")},
	"binary_search":            {problem("Binary Search", "easy", "binary-search"), problem("Search in Rotated Sorted Array", "medium", "search-in-rotated-sorted-array")},
	"sliding_window":           {problem("Maximum Average Subarray I", "easy", "maximum-average-subarray-i"), problem("Minimum Size Subarray Sum", "medium", "minimum-size-subarray-sum")},
}
