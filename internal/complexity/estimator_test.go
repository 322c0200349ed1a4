package complexity

import (
	"context"
	"encoding/json"
	"testing"

	"codecoach/internal/features"
)

func extract(t *testing.T, src string) features.FeatureBag {
	t.Helper()
	return features.Extract(context.Background(), src, features.LangPython)
}

func TestAnalyzeLoopDepthMonotonic(t *testing.T) {
	sources := []string{
		"def f(a):\n    s = 0\n    for x in a:\n        s += x\n    return s\n",
		"def f(a):\n    s = 0\n    for x in a:\n        for y in a:\n            s += x * y\n    return s\n",
		"def f(a):\n    s = 0\n    for x in a:\n        for y in a:\n            for z in a:\n                s += x * y * z\n    return s\n",
	}
	want := []Bound{ON, ON2, Poly(3)}

	var prev Bound
	for i, src := range sources {
		got := Analyze(extract(t, src)).Time
		if got != want[i] {
			t.Errorf("depth %d: Time = %v, want %v", i+1, got, want[i])
		}
		if i > 0 && !prev.Less(got) {
			t.Errorf("depth %d: %v does not exceed %v", i+1, got, prev)
		}
		prev = got
	}
}

func TestAnalyzeShapes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		time  Bound
		space Bound
	}{
		{
			name:  "two sum",
			src:   "def two_sum(nums, target):\n    m = {}\n    for i, n in enumerate(nums):\n        c = target - n\n        if c in m:\n            return [m[c], i]\n        m[n] = i\n    return []\n",
			time:  ON,
			space: ON,
		},
		{
			name:  "constant",
			src:   "def area(w, h):\n    return w * h\n",
			time:  O1,
			space: O1,
		},
		{
			name:  "binary search",
			src:   "def search(a, t):\n    lo, hi = 0, len(a) - 1\n    while lo <= hi:\n        mid = (lo + hi) // 2\n        if a[mid] == t:\n            return mid\n        if a[mid] < t:\n            lo = mid + 1\n        else:\n            hi = mid - 1\n    return -1\n",
			time:  OLogN,
			space: O1,
		},
		{
			name:  "naive fibonacci",
			src:   "def fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\n",
			time:  O2N,
			space: ON,
		},
		{
			name:  "memoized fibonacci",
			src:   "from functools import lru_cache\n\n@lru_cache(maxsize=None)\ndef fib(n):\n    if n < 2:\n        return n\n    return fib(n - 1) + fib(n - 2)\n",
			time:  ON,
			space: ON,
		},
		{
			name:  "library sort",
			src:   "def smallest_gap(a):\n    b = sorted(a)\n    return b[1] - b[0]\n",
			time:  ONLogN,
			space: O1,
		},
		{
			name:  "merge sort",
			src:   "def merge_sort(a):\n    if len(a) <= 1:\n        return a\n    mid = len(a) // 2\n    left = merge_sort(a[:mid])\n    right = merge_sort(a[mid:])\n    out = []\n    i = j = 0\n    while i < len(left) and j < len(right):\n        if left[i] <= right[j]:\n            out.append(left[i])\n            i += 1\n        else:\n            out.append(right[j])\n            j += 1\n    return out + left[i:] + right[j:]\n",
			time:  ONLogN,
			space: ON,
		},
		{
			name:  "permutations",
			src:   "def permute(nums):\n    res = []\n    used = [False] * len(nums)\n    def backtrack(path):\n        if len(path) == len(nums):\n            res.append(path[:])\n            return\n        for i in range(len(nums)):\n            if used[i]:\n                continue\n            used[i] = True\n            path.append(nums[i])\n            backtrack(path)\n            path.pop()\n            used[i] = False\n    backtrack([])\n    return res\n",
			time:  ONFact,
			space: ON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(extract(t, tt.src))
			if got.Time != tt.time {
				t.Errorf("Time = %v, want %v (reasons %v)", got.Time, tt.time, got.Reasons)
			}
			if got.Space != tt.space {
				t.Errorf("Space = %v, want %v (reasons %v)", got.Space, tt.space, got.Reasons)
			}
		})
	}
}

func TestAnalyzeIndexedProductIsConstantSpace(t *testing.T) {
	tests := []struct {
		lang features.Language
		src  string
	}{
		{features.LangPython, "def dot(a, b):\n    s = 0\n    for i in range(len(a)):\n        s += a[i]*b[i]\n    return s\n"},
		{features.LangJavaScript, "function dot(a, b) {\n  let s = 0;\n  for (let i = 0; i < a.length; i++) {\n    s += a[i]*b[i];\n  }\n  return s;\n}\n"},
		{features.LangGo, "func dot(a, b []int) int {\n\ts := 0\n\tfor i := range a {\n\t\ts += a[i]*b[i]\n\t}\n\treturn s\n}\n"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			bag := features.Extract(context.Background(), tt.src, tt.lang)
			if bag.HasMarker("sized_alloc") {
				t.Errorf("Markers = %v, want no sized_alloc", bag.Markers)
			}
			got := Analyze(bag)
			if got.Time != ON || got.Space != O1 {
				t.Errorf("Analyze = %v/%v, want O(n)/O(1) (reasons %v)", got.Time, got.Space, got.Reasons)
			}
		})
	}
}

func TestSizedAllocMarker(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"dp = [0] * (n + 1)\n", true},
		{"used = [False] * len(nums)\n", true},
		{"return [1]*n\n", true},
		{"grid = [[0]*cols for _ in range(rows)]\n", true},
		{"s += a[i]*b[i]\n", false},
		{"area = w[0] * h[0]\n", false},
	}
	for _, tt := range tests {
		bag := extract(t, tt.src)
		if got := bag.HasMarker("sized_alloc"); got != tt.want {
			t.Errorf("%q: sized_alloc = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestAnalyzeUnparsed(t *testing.T) {
	got := Analyze(extract(t, "   \n"))
	if got.Time.Known() || got.Space.Known() {
		t.Errorf("Analyze(empty) = %v/%v, want Unknown", got.Time, got.Space)
	}
	if got.Time.String() != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got.Time.String())
	}
}

func TestTieBreakPolicy(t *testing.T) {
	// a halving recursion with a linear merge qualifies for both O(n) and O(n log n)
	bag := features.FeatureBag{
		Parsed:         true,
		LoopCount:      1,
		MaxLoopDepth:   1,
		MaxLinearDepth: 1,
		Recursion:      features.Recursion{Present: true, MaxCallsPerBody: 2, Halving: true},
	}

	tests := []struct {
		policy TieBreak
		want   Bound
	}{
		{TieHighest, ONLogN},
		{TieFirst, ON},
	}
	for _, tt := range tests {
		got := NewEstimator(Policy{TieBreak: tt.policy}).Estimate(bag).Time
		if got != tt.want {
			t.Errorf("policy %s: Time = %v, want %v", tt.policy, got, tt.want)
		}
	}
}

func TestParseTieBreak(t *testing.T) {
	if got, err := ParseTieBreak(""); err != nil || got != TieHighest {
		t.Errorf("ParseTieBreak(\"\") = %v, %v", got, err)
	}
	if got, err := ParseTieBreak("first"); err != nil || got != TieFirst {
		t.Errorf("ParseTieBreak(first) = %v, %v", got, err)
	}
	if _, err := ParseTieBreak("lowest"); err == nil {
		t.Error("ParseTieBreak(lowest) succeeded, want error")
	}
}

func TestBoundOrder(t *testing.T) {
	order := []Bound{O1, OLogN, ON, ONLogN, ON2, Poly(3), Poly(4), O2N, ONFact}
	for i := 1; i < len(order); i++ {
		if !order[i-1].Less(order[i]) {
			t.Errorf("%v should be less than %v", order[i-1], order[i])
		}
	}
	if (Bound{}).AtLeast(O1) {
		t.Error("Unknown.AtLeast(O(1)) = true, want false")
	}
}

func TestBoundText(t *testing.T) {
	for _, b := range []Bound{{}, O1, OLogN, ON, ONLogN, ON2, Poly(3), O2N, ONFact} {
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", b, err)
		}
		var got Bound
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}
		if got != b {
			t.Errorf("round trip %s = %v, want %v", data, got, b)
		}
	}
	if _, err := ParseBound("O(n^1.5)"); err == nil {
		t.Error("ParseBound(O(n^1.5)) succeeded, want error")
	}
}
