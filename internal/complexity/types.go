// Package complexity estimates asymptotic time and space bounds from a
// features.FeatureBag. Estimates are heuristic approximations, not proofs.
package complexity

import (
	"fmt"
	"regexp"
	"strconv"
)

// Class is an asymptotic growth class. The zero value is Unknown, which sits
// outside the order.
type Class int

const (
	Unknown Class = iota
	Constant
	Logarithmic
	Linear
	Linearithmic
	Quadratic
	Polynomial // degree 3 and above
	Exponential
	Factorial
)

// Bound is a class plus the degree for Polynomial.
type Bound struct {
	Class  Class
	Degree int
}

var (
	O1     = Bound{Class: Constant}
	OLogN  = Bound{Class: Logarithmic}
	ON     = Bound{Class: Linear}
	ONLogN = Bound{Class: Linearithmic}
	ON2    = Bound{Class: Quadratic, Degree: 2}
	O2N    = Bound{Class: Exponential}
	ONFact = Bound{Class: Factorial}
)

// Poly returns the bound for d nested linear passes.
func Poly(d int) Bound {
	switch {
	case d <= 0:
		return O1
	case d == 1:
		return ON
	case d == 2:
		return ON2
	default:
		return Bound{Class: Polynomial, Degree: d}
	}
}

// Known reports whether the bound is inside the order.
func (b Bound) Known() bool {
	return b.Class != Unknown
}

// Less orders known bounds by growth. Unknown is less than everything.
func (b Bound) Less(o Bound) bool {
	if b.Class != o.Class {
		return b.Class < o.Class
	}
	return b.Degree < o.Degree
}

// AtLeast reports whether b grows at least as fast as o. Unknown never qualifies.
func (b Bound) AtLeast(o Bound) bool {
	return b.Known() && !b.Less(o)
}

func (b Bound) String() string {
	switch b.Class {
	case Constant:
		return "O(1)"
	case Logarithmic:
		return "O(log n)"
	case Linear:
		return "O(n)"
	case Linearithmic:
		return "O(n log n)"
	case Quadratic:
		return "O(n^2)"
	case Polynomial:
		return fmt.Sprintf("O(n^%d)", b.Degree)
	case Exponential:
		return "O(2^n)"
	case Factorial:
		return "O(n!)"
	default:
		return "Unknown"
	}
}

var polyRe = regexp.MustCompile(`^O\(n\^(\d+)\)$`)

// ParseBound parses the wire form produced by String.
func ParseBound(s string) (Bound, error) {
	switch s {
	case "O(1)":
		return O1, nil
	case "O(log n)":
		return OLogN, nil
	case "O(n)":
		return ON, nil
	case "O(n log n)":
		return ONLogN, nil
	case "O(2^n)":
		return O2N, nil
	case "O(n!)":
		return ONFact, nil
	case "Unknown", "":
		return Bound{}, nil
	}
	if m := polyRe.FindStringSubmatch(s); m != nil {
		d, err := strconv.Atoi(m[1])
		if err == nil && d >= 2 {
			return Poly(d), nil
		}
	}
	return Bound{}, fmt.Errorf("unknown complexity class %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Bound) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bound) UnmarshalText(text []byte) error {
	parsed, err := ParseBound(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Estimate is the estimator's result.
type Estimate struct {
	Time  Bound `json:"time"`
	Space Bound `json:"space"`

	// Reasons names the rules that decided each bound
	Reasons []string `json:"reasons,omitempty"`
}
