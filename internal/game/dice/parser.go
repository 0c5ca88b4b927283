package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Expression is a parsed dice expression.
//
// Invariant: Count >= 1, Sides >= 2, 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int
}

// Parse parses "d20", "2d6", "2d6+3", "4d8-2" and "4d6kh3".
//
// Postcondition: returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	m := exprPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expr)))
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	out := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		out.Count, _ = strconv.Atoi(m[1])
	}
	out.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		out.KeepHighest, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		out.Modifier, _ = strconv.Atoi(m[4])
	}

	switch {
	case out.Count < 1:
		return Expression{}, fmt.Errorf("dice: die count must be >= 1 in %q", expr)
	case out.Sides < 2:
		return Expression{}, fmt.Errorf("dice: die sides must be >= 2 in %q", expr)
	case m[3] != "" && (out.KeepHighest < 1 || out.KeepHighest >= out.Count):
		return Expression{}, fmt.Errorf("dice: kh %d must be in [1,%d) in %q", out.KeepHighest, out.Count, expr)
	}
	return out, nil
}

// Min returns the smallest total expr can roll.
func (e Expression) Min() int {
	return e.kept() + e.Modifier
}

// Max returns the largest total expr can roll.
func (e Expression) Max() int {
	return e.kept()*e.Sides + e.Modifier
}

func (e Expression) kept() int {
	if e.KeepHighest > 0 {
		return e.KeepHighest
	}
	return e.Count
}

// MustParse is Parse for package-level expressions; it panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}
