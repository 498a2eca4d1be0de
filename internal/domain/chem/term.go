package chem

import (
	"fmt"
	"strconv"
)

// State is the physical state annotation of a term.
type State int

const (
	StateNone State = iota
	StateSolid
	StateLiquid
	StateGas
	StateAqueous
)

var stateSymbols = map[State]string{
	StateSolid:   "s",
	StateLiquid:  "l",
	StateGas:     "g",
	StateAqueous: "aq",
}

// ParseState maps s, l, g and aq to a State.
func ParseState(s string) (State, bool) {
	for st, sym := range stateSymbols {
		if sym == s {
			return st, true
		}
	}
	return StateNone, false
}

func (s State) String() string { return stateSymbols[s] }

// ErrorMarker is how a term that failed to parse is rendered.
const ErrorMarker = "ERROR"

// Term is one coefficient-scaled species of an expression.
type Term struct {
	Coefficient int
	Species     Formula
	State       State

	failed bool
	raw    string
}

// NewTerm returns coefficient × species in the given state. Coefficients
// below one are raised to one.
func NewTerm(coefficient int, species Formula, state State) *Term {
	if coefficient < 1 {
		coefficient = 1
	}
	return &Term{Coefficient: coefficient, Species: species, State: state}
}

// NewErrorTerm marks a position whose text could not be parsed. raw keeps
// the offending text for diagnostics.
func NewErrorTerm(raw string) *Term {
	return &Term{Coefficient: 1, failed: true, raw: raw}
}

// IsError reports whether t stands in for unparseable text.
func (t *Term) IsError() bool { return t == nil || t.failed }

// Raw returns the source text of an error term.
func (t *Term) Raw() string { return t.raw }

// Equal compares coefficient, state and species. An error term is equal
// to nothing, not even itself.
func (t *Term) Equal(o *Term) bool {
	if t.IsError() || o.IsError() {
		return false
	}
	return t.Coefficient == o.Coefficient && t.State == o.State && t.Species.Equal(o.Species)
}

// EqualBare compares species only.
func (t *Term) EqualBare(o *Term) bool {
	if t.IsError() || o.IsError() {
		return false
	}
	return t.Species.Equal(o.Species)
}

// Bare strips coefficient and state.
func (t *Term) Bare() *Term {
	if t.IsError() {
		return t
	}
	return NewTerm(1, t.Species, StateNone)
}

// AtomCount returns the species counts scaled by the coefficient. An error
// term counts nothing.
func (t *Term) AtomCount() AtomCount {
	if t.IsError() {
		return AtomCount{}
	}
	return t.Species.AtomCount().Scale(int64(t.Coefficient))
}

// Charge returns the species charge times the coefficient.
func (t *Term) Charge() Fraction {
	if t.IsError() {
		return Zero
	}
	return t.Species.Charge().MulInt(int64(t.Coefficient))
}

// MassNumber returns coefficient × mass number, failing on non-nuclear
// species.
func (t *Term) MassNumber() (int, error) {
	if t.IsError() {
		return 0, fmt.Errorf("mass number of %s: %w", ErrorMarker, ErrNotNuclear)
	}
	m, err := MassNumber(t.Species)
	return m * t.Coefficient, err
}

// AtomicNumber is the atomic-number counterpart of MassNumber.
func (t *Term) AtomicNumber() (int, error) {
	if t.IsError() {
		return 0, fmt.Errorf("atomic number of %s: %w", ErrorMarker, ErrNotNuclear)
	}
	z, err := AtomicNumber(t.Species)
	return z * t.Coefficient, err
}

// String renders the term in mhchem; error terms render as ErrorMarker.
func (t *Term) String() string {
	if t.IsError() {
		return ErrorMarker
	}
	s := t.Species.String()
	if t.Coefficient > 1 {
		s = strconv.Itoa(t.Coefficient) + s
	}
	if t.State != StateNone {
		s += "(" + t.State.String() + ")"
	}
	return s
}
