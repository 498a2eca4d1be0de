package chem

// Reason classifies the outcome of Check.
type Reason string

const (
	ReasonAccepted               Reason = "accepted"
	ReasonKindMismatch           Reason = "kind_mismatch"
	ReasonContainsError          Reason = "contains_error"
	ReasonUnbalancedAtoms        Reason = "unbalanced_atoms"
	ReasonUnbalancedCharge       Reason = "unbalanced_charge"
	ReasonUnbalancedMass         Reason = "unbalanced_mass"
	ReasonUnbalancedAtomicNumber Reason = "unbalanced_atomic_number"
	ReasonInvalidAtomicNumber    Reason = "invalid_atomic_number"
	ReasonWrongCoefficients      Reason = "wrong_coefficients"
	ReasonUnrelatedTerms         Reason = "unrelated_terms"
)

var reasonMessages = map[Reason]string{
	ReasonAccepted:               "the answer matches the expected statement",
	ReasonKindMismatch:           "the answer is not the same kind of statement as the expected one",
	ReasonContainsError:          "the answer contains a term that could not be read; correct it first",
	ReasonUnbalancedAtoms:        "the equation is not balanced: atom counts differ between the sides",
	ReasonUnbalancedCharge:       "the equation is not balanced: total charge differs between the sides",
	ReasonUnbalancedMass:         "the nuclear equation is not balanced: mass numbers differ between the sides",
	ReasonUnbalancedAtomicNumber: "the nuclear equation is not balanced: atomic numbers differ between the sides",
	ReasonInvalidAtomicNumber:    "the nuclear equation declares invalid atomic numbers",
	ReasonWrongCoefficients:      "the right species appear but the coefficients are wrong",
	ReasonUnrelatedTerms:         "the answer contains terms that do not belong",
}

// Message is a sentence describing the reason to a student.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// Verdict is the result of checking a candidate against a target. The
// balance flags are only meaningful for the matching equation kind.
type Verdict struct {
	Accepted   bool
	Reason     Reason
	WrongTerms []*Term

	BalancedAtoms        bool
	BalancedCharge       bool
	BalancedMass         bool
	BalancedAtomicNumber bool
	Valid                bool

	WeaklyEquivalent bool
	SameCoefficients bool
	SameStates       bool
	SameArrow        bool
}

// Message refines the reason message for weakly equivalent answers whose
// coefficients are in fact right.
func (v Verdict) Message() string {
	if v.Reason == ReasonWrongCoefficients && v.SameCoefficients {
		switch {
		case !v.SameStates:
			return "the right species and coefficients appear but the state symbols are wrong"
		case !v.SameArrow:
			return "the right species and coefficients appear but the arrow is wrong"
		}
	}
	return v.Reason.Message()
}

// Check decides whether input is an acceptable answer for target.
func Check(target, input Statement) Verdict {
	var v Verdict
	if target == nil || input == nil || target.Kind() != input.Kind() {
		v.Reason = ReasonKindMismatch
		return v
	}
	if input.ContainsError() {
		v.Reason = ReasonContainsError
		return v
	}

	switch in := input.(type) {
	case *EquationStatement:
		v.BalancedAtoms = in.IsBalancedAtoms()
		v.BalancedCharge = in.IsBalancedCharge()
		if !v.BalancedAtoms {
			v.Reason = ReasonUnbalancedAtoms
			return v
		}
		if !v.BalancedCharge {
			v.Reason = ReasonUnbalancedCharge
			return v
		}
	case *NuclearEquationStatement:
		v.BalancedMass = in.IsBalancedMass()
		v.BalancedAtomicNumber = in.IsBalancedAtomicNumber()
		if !v.BalancedMass {
			v.Reason = ReasonUnbalancedMass
			return v
		}
		if !v.BalancedAtomicNumber {
			v.Reason = ReasonUnbalancedAtomicNumber
			return v
		}
		v.Valid = in.IsValid()
		if !v.Valid {
			v.Reason = ReasonInvalidAtomicNumber
			return v
		}
	}

	if target.Equal(input) {
		v.Accepted = true
		v.Reason = ReasonAccepted
		v.WeaklyEquivalent = true
		v.SameCoefficients = true
		v.SameStates = true
		v.SameArrow = true
		return v
	}

	v.WeaklyEquivalent = target.WeaklyEquivalent(input)
	if v.WeaklyEquivalent {
		v.Reason = ReasonWrongCoefficients
		v.SameCoefficients = sameSpeciesBy(target, input, func(x, y *Term) bool {
			return x.Coefficient == y.Coefficient && x.EqualBare(y)
		})
		v.SameStates = sameSpeciesBy(target, input, func(x, y *Term) bool {
			return x.State == y.State && x.EqualBare(y)
		})
		v.SameArrow = arrowOf(target) == arrowOf(input)
	} else {
		v.Reason = ReasonUnrelatedTerms
	}
	v.WrongTerms = target.WrongTerms(input)
	return v
}

// sameSpeciesBy matches the sides of two statements of the same kind term
// by term under eq.
func sameSpeciesBy(a, b Statement, eq func(x, y *Term) bool) bool {
	switch as := a.(type) {
	case *ExpressionStatement:
		bs := b.(*ExpressionStatement)
		return matchTerms(as.Expr.terms, bs.Expr.terms, eq)
	case *EquationStatement:
		bs := b.(*EquationStatement)
		return matchSides(as.sides, bs.sides, eq)
	case *NuclearEquationStatement:
		bs := b.(*NuclearEquationStatement)
		return matchSides(as.sides, bs.sides, eq)
	}
	return false
}

func matchSides(a, b sides, eq func(x, y *Term) bool) bool {
	return matchTerms(a.left.terms, b.left.terms, eq) && matchTerms(a.right.terms, b.right.terms, eq)
}

func arrowOf(s Statement) Arrow {
	switch st := s.(type) {
	case *EquationStatement:
		return st.arrow
	case *NuclearEquationStatement:
		return st.arrow
	}
	return 0
}
