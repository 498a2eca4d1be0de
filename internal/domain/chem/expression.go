package chem

import "strings"

// Expression is a sum of terms. Term order is kept for display and ignored
// by comparisons.
type Expression struct {
	terms []*Term
}

// NewExpression copies terms into a new expression.
func NewExpression(terms ...*Term) *Expression {
	return &Expression{terms: append([]*Term(nil), terms...)}
}

// Terms returns the terms in display order.
func (e *Expression) Terms() []*Term {
	return append([]*Term(nil), e.terms...)
}

// Len returns the number of terms, error terms included.
func (e *Expression) Len() int { return len(e.terms) }

// ContainsError reports whether any term failed to parse.
func (e *Expression) ContainsError() bool {
	for _, t := range e.terms {
		if t.IsError() {
			return true
		}
	}
	return false
}

// AtomCount sums the atom counts of all terms.
func (e *Expression) AtomCount() AtomCount {
	out := AtomCount{}
	for _, t := range e.terms {
		out = out.Add(t.AtomCount())
	}
	return out
}

// Charge sums the charges of all terms.
func (e *Expression) Charge() Fraction {
	sum := Zero
	for _, t := range e.terms {
		sum = sum.Add(t.Charge())
	}
	return sum
}

// MassNumber sums the mass numbers of all terms, failing on the first
// species that is not nuclear.
func (e *Expression) MassNumber() (int, error) {
	total := 0
	for _, t := range e.terms {
		m, err := t.MassNumber()
		if err != nil {
			return 0, err
		}
		total += m
	}
	return total, nil
}

// AtomicNumber sums the atomic numbers of all terms.
func (e *Expression) AtomicNumber() (int, error) {
	total := 0
	for _, t := range e.terms {
		z, err := t.AtomicNumber()
		if err != nil {
			return 0, err
		}
		total += z
	}
	return total, nil
}

// Equal reports whether both expressions hold the same multiset of terms.
func (e *Expression) Equal(o *Expression) bool {
	return o != nil && matchTerms(e.terms, o.terms, (*Term).Equal)
}

// EqualBare compares the multisets of species, ignoring coefficients and
// states.
func (e *Expression) EqualBare(o *Expression) bool {
	return o != nil && matchTerms(e.terms, o.terms, (*Term).EqualBare)
}

// Missing returns the terms of e that have no equal term in ref.
func (e *Expression) Missing(ref *Expression) []*Term {
	var out []*Term
	for _, t := range e.terms {
		found := false
		for _, r := range ref.terms {
			if t.Equal(r) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, t)
		}
	}
	return out
}

func (e *Expression) String() string {
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

// matchTerms pairs every term of a with a distinct term of b under eq.
// eq must be an equivalence on non-error terms, which makes greedy pairing
// exact.
func matchTerms(a, b []*Term, eq func(x, y *Term) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
next:
	for _, x := range a {
		for j, y := range b {
			if !used[j] && eq(x, y) {
				used[j] = true
				continue next
			}
		}
		return false
	}
	return true
}
