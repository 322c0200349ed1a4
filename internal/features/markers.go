package features

import "regexp"

// Marker is a lexical idiom recognised in blanked source.
type Marker struct {
	Name string

	// Container marks names that describe a data structure in use
	Container bool

	Regex       *regexp.Regexp
	Description string
}

// BuiltinMarkers is the marker catalog, scanned in order over every source.
var BuiltinMarkers = []Marker{
	// ============ containers ============
	{
		Name:        "hash_map",
		Container:   true,
		Regex:       regexp.MustCompile(`=\s*\{\s*\}|\bdict\s*\(|\bdefaultdict\b|\bCounter\s*\(|\b(Hash|Tree|LinkedHash)Map\b|\bMap\s*<|\bnew\s+Map\s*\(|\bunordered_map\b|\bmap\s*<|\bmap\[|\bmake\(\s*map`),
		Description: "key/value map",
	},
	{
		Name:        "hash_set",
		Container:   true,
		Regex:       regexp.MustCompile(`\bset\s*\(|\b(Hash|Tree)Set\b|\bSet\s*<|\bnew\s+Set\s*\(|\bunordered_set\b|\bset\s*<|\bmap\[\w+\](bool|struct\{\})`),
		Description: "set",
	},
	{
		Name:        "array",
		Container:   true,
		Regex:       regexp.MustCompile(`\[\s*\]|\blist\s*\(|\bArrayList\b|\bList\s*<|\bvector\s*<|\bnew\s+\w+\s*\[|\[\]\w+|\bnew\s+Array\b|\w\s*\[\s*[\w+\-*/ ]+\s*\]|\bArrays\.`),
		Description: "array or list indexing",
	},
	{
		Name:        "stack",
		Container:   true,
		Regex:       regexp.MustCompile(`\bstack\b|\bStack\b|\bstk\b|\bstd::stack\b`),
		Description: "LIFO stack",
	},
	{
		Name:        "queue",
		Container:   true,
		Regex:       regexp.MustCompile(`\bqueue\b|\bQueue\b|\.offer\s*\(|\.poll\s*\(|\bpopleft\b|\.shift\s*\(\s*\)`),
		Description: "FIFO queue",
	},
	{
		Name:        "deque",
		Container:   true,
		Regex:       regexp.MustCompile(`\bdeque\b|\bArrayDeque\b|\bDeque\b|\bappendleft\b|\bpopleft\b`),
		Description: "double-ended queue",
	},
	{
		Name:        "heap",
		Container:   true,
		Regex:       regexp.MustCompile(`\bheapq\b|\bheappush\b|\bheappop\b|\bheapify\b|\bPriorityQueue\b|\bpriority_queue\b|\bcontainer/heap\b|\bheap\b`),
		Description: "binary heap / priority queue",
	},
	{
		Name:        "matrix",
		Container:   true,
		Regex:       regexp.MustCompile(`\[\s*\[|\]\s*\[|\bvector\s*<\s*vector\b|\[\]\[\]|\bgrid\b|\bmatrix\b|\bboard\b`),
		Description: "two-dimensional table",
	},
	{
		Name:        "linked_list",
		Container:   true,
		Regex:       regexp.MustCompile(`\bListNode\b|\bLinkedList\b|\.next\b|->next\b`),
		Description: "linked nodes",
	},
	{
		Name:        "tree",
		Container:   true,
		Regex:       regexp.MustCompile(`\bTreeNode\b|\.left\b|\.right\b|->left\b|->right\b|\broot\b`),
		Description: "tree nodes",
	},
	{
		Name:        "graph",
		Container:   true,
		Regex:       regexp.MustCompile(`\bgraph\b|\badj\w*|\bneighbou?rs?\b|\bedges?\b|\bvertices\b|(?i)\bin_?degree\b`),
		Description: "graph adjacency",
	},

	// ============ library calls ============
	{
		Name:        "sort",
		Regex:       regexp.MustCompile(`\bsorted\s*\(|\.sort\s*\(|\bsort\s*\(|\bArrays\.sort\b|\bCollections\.sort\b|\bstd::sort\b|\bsort\.(Slice|SliceStable|Ints|Strings|Sort)\b|\bslices\.Sort`),
		Description: "library sort",
	},
	{
		Name:        "heap_op",
		Regex:       regexp.MustCompile(`\bheappush\b|\bheappop\b|\bheapreplace\b|\bpush_heap\b|\bpop_heap\b|\bheap\.(Push|Pop|Fix)\b|\.offer\s*\(|\.poll\s*\(`),
		Description: "heap push/pop",
	},
	{
		Name:        "bisect",
		Regex:       regexp.MustCompile(`\bbisect\w*|\bbinarySearch\b|\blower_bound\b|\bupper_bound\b|\bsort\.Search\w*`),
		Description: "library binary search",
	},
	{
		Name:        "memo",
		Regex:       regexp.MustCompile(`@(functools\.)?(lru_)?cache\b|\bmemo\w*|\bcache\b|\bcached\b`),
		Description: "memoization cache",
	},
	{
		Name:        "counter",
		Regex:       regexp.MustCompile(`\bCounter\s*\(|\bdefaultdict\s*\(\s*int\b|\bgetOrDefault\b|\.get\s*\(\s*\w+\s*,\s*0\s*\)|\bfreq\w*|\bcounts?\s*\[`),
		Description: "frequency counting",
	},

	// ============ idioms ============
	{
		Name:        "lookup",
		Regex:       regexp.MustCompile(`\b(if|elif|while|and|or|return|not)\b[^:\n]*\bin\b|\bcontainsKey\b|\.contains\s*\(|\.has\s*\(|\.count\s*\(|\.find\s*\(|,\s*(ok|found|exists)\s*:?=\s*\w+\[`),
		Description: "membership test",
	},
	{
		Name:        "dp_table",
		Regex:       regexp.MustCompile(`\bdp\b|\btable\s*\[`),
		Description: "tabulation array",
	},
	{
		Name:        "visited",
		Regex:       regexp.MustCompile(`\bvisited\b|\bseen\b|\bused\b`),
		Description: "visited set",
	},
	{
		Name:        "mid",
		Regex:       regexp.MustCompile(`\bmid\b|\bmiddle\b`),
		Description: "midpoint index",
	},
	{
		Name:        "slow_fast",
		Regex:       regexp.MustCompile(`\bslow\b[\s\S]*\bfast\b|\bfast\b[\s\S]*\bslow\b`),
		Description: "tortoise and hare pointers",
	},
	{
		Name:        "prefix",
		Regex:       regexp.MustCompile(`(?i)\bprefix\w*|\bpre_?sums?\b|\bcumsum\b|\brunning_?sum\b`),
		Description: "running prefix aggregate",
	},
	{
		Name:        "interval",
		Regex:       regexp.MustCompile(`(?i)\bintervals?\b|\boverlap\w*|\bmeetings?\b`),
		Description: "interval handling",
	},
	{
		Name:        "window",
		Regex:       regexp.MustCompile(`(?i)\bwindow\w*|\w+\s*-\s*\w+\s*\+\s*1\b`),
		Description: "window bookkeeping",
	},
	{
		Name:        "backtrack",
		Regex:       regexp.MustCompile(`(?i)\bbacktrack\w*|\.pop\s*\(\s*\)|\bpop_back\s*\(|\bremoveLast\s*\(|\.remove\s*\(\s*\w+\.size\s*\(\s*\)\s*-\s*1\s*\)|\bundo\b`),
		Description: "undo after exploring",
	},
	{
		Name:        "minmax",
		Regex:       regexp.MustCompile(`\bmax\s*\(|\bmin\s*\(|\bMath\.(max|min)\b|\bstd::(max|min)\b`),
		Description: "running best choice",
	},
	{
		Name:        "swap",
		Regex:       regexp.MustCompile(`\w+\s*\[\s*\w+\s*\]\s*,\s*\w+\s*\[\s*\w+\s*\]\s*=|\bswap\s*\(|\btemp\s*=|\btmp\s*=`),
		Description: "element swap",
	},
	{
		Name:        "partition",
		Regex:       regexp.MustCompile(`(?i)\bpivot\b|\bpartition\w*`),
		Description: "partition around a pivot",
	},
	{
		Name:        "merge",
		Regex:       regexp.MustCompile(`(?i)\bmerge\w*`),
		Description: "merge step",
	},
	{
		Name:        "sized_alloc",
		Regex:       regexp.MustCompile(`(?:[=(\[,:]|\breturn)\s*\[\s*[\w.]+\s*\]\s*\*\s*\(?\s*[\w(]|\bnew\s+\w+\s*\[\s*\w+|\bmake\(\s*\[\]\w+\s*,\s*\w|\bvector\s*<[^>]*>\s*\w+\s*\(\s*\w|\bnew\s+Array\s*\(\s*\w|\[[^\]\n]*\bfor\b[^\]\n]*\bin\b`),
		Description: "allocation sized by the input",
	},
}

// tokenRe matches the keywords of interest that make up FeatureBag.Tokens.
var tokenRe = regexp.MustCompile(`\b(for|while|do|if|elif|else|switch|case|return|break|continue|yield|def|function|func|class|try|catch|except|lambda)\b`)

// identRe matches identifier candidates; keywords are filtered afterwards.
var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// reserved holds keywords and primitive type names of every supported language.
var reserved = toSet(
	// python
	"False", "None", "True", "and", "as", "assert", "async", "await", "break", "class", "continue",
	"def", "del", "elif", "else", "except", "finally", "for", "from", "global", "if", "import",
	"in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try", "while",
	"with", "yield", "self",
	// java / c++ / javascript
	"abstract", "boolean", "byte", "case", "catch", "char", "const", "default", "do", "double",
	"enum", "extends", "final", "float", "implements", "instanceof", "int", "interface", "long",
	"native", "new", "null", "package", "private", "protected", "public", "short", "static",
	"super", "switch", "synchronized", "this", "throw", "throws", "transient", "void", "volatile",
	"true", "false", "auto", "bool", "delete", "inline", "namespace", "nullptr", "operator",
	"signed", "sizeof", "struct", "template", "typedef", "typename", "union", "unsigned", "using",
	"virtual", "include", "std", "function", "let", "var", "typeof", "undefined", "of", "export",
	// go
	"chan", "defer", "fallthrough", "func", "go", "goto", "map", "range", "select", "type",
	"string", "int64", "int32", "uint", "float64", "rune", "error", "nil", "make", "len",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
