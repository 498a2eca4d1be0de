package chem

import (
	"fmt"
	"sort"
	"strings"
)

// Coefficients computes the minimal positive integer coefficients that
// balance eq, one per term, left side first. Existing coefficients are
// ignored. A charge row joins the element rows whenever a species is
// charged.
func Coefficients(eq *EquationStatement) ([]int64, error) {
	const op = "balance"
	if eq.ContainsError() {
		return nil, fmt.Errorf("%s: equation contains an error term: %w", op, ErrUnsolvableSystem)
	}

	terms := append(eq.left.Terms(), eq.right.Terms()...)
	nLeft := eq.left.Len()

	leftSyms := map[string]bool{}
	rightSyms := map[string]bool{}
	charged := false
	for j, t := range terms {
		for sym := range t.Species.AtomCount() {
			if j < nLeft {
				leftSyms[sym] = true
			} else {
				rightSyms[sym] = true
			}
		}
		if !t.Species.Charge().IsZero() {
			charged = true
		}
	}

	var missing []string
	for sym := range rightSyms {
		if !leftSyms[sym] {
			missing = append(missing, sym)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%s: %s only on the right: %w", op, strings.Join(missing, ", "), ErrMismatchedElements)
	}

	symbols := make([]string, 0, len(leftSyms))
	for sym := range leftSyms {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	var rows [][]Fraction
	for _, sym := range symbols {
		rows = append(rows, signedRow(terms, nLeft, func(f Formula) Fraction {
			return f.AtomCount().Get(sym)
		}))
	}
	if charged {
		rows = append(rows, signedRow(terms, nLeft, Formula.Charge))
	}
	return solvePinned(op, rows, len(terms))
}

// Balance returns a copy of eq carrying the coefficients from Coefficients.
// States and the arrow are kept.
func Balance(eq *EquationStatement) (*EquationStatement, error) {
	coefs, err := Coefficients(eq)
	if err != nil {
		return nil, err
	}
	left, right := rescale(eq.sides, coefs)
	return NewEquationStatement(left, right, eq.arrow), nil
}

// NuclearCoefficients balances a nuclear equation by mass and atomic
// number.
func NuclearCoefficients(eq *NuclearEquationStatement) ([]int64, error) {
	const op = "balance nuclear"
	if eq.ContainsError() {
		return nil, fmt.Errorf("%s: equation contains an error term: %w", op, ErrUnsolvableSystem)
	}
	terms := append(eq.left.Terms(), eq.right.Terms()...)
	nLeft := eq.left.Len()

	mass := make([]Fraction, len(terms))
	atomic := make([]Fraction, len(terms))
	for j, t := range terms {
		m, err := MassNumber(t.Species)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		z, err := AtomicNumber(t.Species)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		mass[j], atomic[j] = FromInt(int64(m)), FromInt(int64(z))
		if j >= nLeft {
			mass[j], atomic[j] = mass[j].Neg(), atomic[j].Neg()
		}
	}
	return solvePinned(op, [][]Fraction{mass, atomic}, len(terms))
}

// BalanceNuclear returns a copy of eq carrying the coefficients from
// NuclearCoefficients.
func BalanceNuclear(eq *NuclearEquationStatement) (*NuclearEquationStatement, error) {
	coefs, err := NuclearCoefficients(eq)
	if err != nil {
		return nil, err
	}
	left, right := rescale(eq.sides, coefs)
	return NewNuclearEquationStatement(left, right, eq.arrow), nil
}

func signedRow(terms []*Term, nLeft int, value func(Formula) Fraction) []Fraction {
	row := make([]Fraction, len(terms))
	for j, t := range terms {
		v := value(t.Species)
		if j >= nLeft {
			v = v.Neg()
		}
		row[j] = v
	}
	return row
}

// solvePinned appends the row fixing the first coefficient to one, solves,
// and scales the rational solution to the smallest positive integers.
func solvePinned(op string, rows [][]Fraction, n int) ([]int64, error) {
	pin := make([]Fraction, n)
	pin[0] = One
	rows = append(rows, pin)

	z := make([]Fraction, len(rows))
	z[len(z)-1] = One

	x, err := solve(rows, z)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUnsolvableSystem, err)
	}

	den := int64(1)
	for _, v := range x {
		if v.Sign() <= 0 {
			return nil, fmt.Errorf("%s: coefficient %s is not positive: %w", op, v, ErrUnsolvableSystem)
		}
		g := gcd(den, v.Den())
		var ok bool
		if den, ok = mul64(den/g, v.Den()); !ok {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrUnsolvableSystem, ErrOverflow)
		}
	}
	out := make([]int64, n)
	g := int64(0)
	for i, v := range x {
		scaled, err := v.MulChecked(FromInt(den))
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrUnsolvableSystem, err)
		}
		out[i] = scaled.Num()
		g = gcd(g, out[i])
	}
	for i := range out {
		out[i] /= g
	}
	return out, nil
}

func rescale(s sides, coefs []int64) (*Expression, *Expression) {
	n := s.left.Len()
	scaled := func(terms []*Term, offset int) *Expression {
		out := make([]*Term, len(terms))
		for i, t := range terms {
			out[i] = NewTerm(int(coefs[offset+i]), t.Species, t.State)
		}
		return NewExpression(out...)
	}
	return scaled(s.left.terms, 0), scaled(s.right.terms, n)
}
