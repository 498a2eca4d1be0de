package chem

import "fmt"

// Kind tags the three statement shapes.
type Kind int

const (
	KindExpression Kind = iota + 1
	KindEquation
	KindNuclearEquation
)

func (k Kind) String() string {
	switch k {
	case KindExpression:
		return "expression"
	case KindEquation:
		return "equation"
	case KindNuclearEquation:
		return "nuclear_equation"
	default:
		return "unknown"
	}
}

// Arrow separates the sides of an equation.
type Arrow int

const (
	ArrowForward Arrow = iota + 1
	ArrowEquilibrium
)

// ParseArrow accepts ->, <=> and <->.
func ParseArrow(s string) (Arrow, bool) {
	switch s {
	case "->":
		return ArrowForward, true
	case "<=>", "<->":
		return ArrowEquilibrium, true
	}
	return 0, false
}

func (a Arrow) String() string {
	if a == ArrowEquilibrium {
		return "<=>"
	}
	return "->"
}

// Statement is a parsed input: a bare expression, a chemical equation or a
// nuclear equation. Statements are never mutated after construction.
type Statement interface {
	fmt.Stringer

	Kind() Kind
	ContainsError() bool
	// Equal is strict structural equality.
	Equal(other Statement) bool
	// WeaklyEquivalent compares species only, ignoring coefficients, states
	// and the arrow.
	WeaklyEquivalent(other Statement) bool
	// WrongTerms lists the candidate's terms that have no equal term on the
	// matching side of the receiver, left side first.
	WrongTerms(candidate Statement) []*Term

	statement()
}

// ExpressionStatement is a lone expression such as "2H2O + CO2".
type ExpressionStatement struct {
	Expr *Expression
}

func NewExpressionStatement(e *Expression) *ExpressionStatement {
	return &ExpressionStatement{Expr: e}
}

func (*ExpressionStatement) statement() {}

func (s *ExpressionStatement) Kind() Kind { return KindExpression }

func (s *ExpressionStatement) ContainsError() bool { return s.Expr.ContainsError() }

func (s *ExpressionStatement) AtomCount() AtomCount { return s.Expr.AtomCount() }

func (s *ExpressionStatement) Charge() Fraction { return s.Expr.Charge() }

func (s *ExpressionStatement) Equal(other Statement) bool {
	o, ok := other.(*ExpressionStatement)
	return ok && o != nil && s.Expr.Equal(o.Expr)
}

func (s *ExpressionStatement) WeaklyEquivalent(other Statement) bool {
	o, ok := other.(*ExpressionStatement)
	return ok && o != nil && s.Expr.EqualBare(o.Expr)
}

func (s *ExpressionStatement) WrongTerms(candidate Statement) []*Term {
	o, ok := candidate.(*ExpressionStatement)
	if !ok || o == nil {
		return allTerms(candidate)
	}
	return o.Expr.Missing(s.Expr)
}

func (s *ExpressionStatement) String() string { return s.Expr.String() }

// sides holds what chemical and nuclear equations share.
type sides struct {
	left  *Expression
	right *Expression
	arrow Arrow
}

func (e sides) Left() *Expression  { return e.left }
func (e sides) Right() *Expression { return e.right }
func (e sides) Arrow() Arrow       { return e.arrow }

func (e sides) ContainsError() bool {
	return e.left.ContainsError() || e.right.ContainsError()
}

func (e sides) String() string {
	return e.left.String() + " " + e.arrow.String() + " " + e.right.String()
}

func (e sides) equal(o sides) bool {
	return e.arrow == o.arrow && e.left.Equal(o.left) && e.right.Equal(o.right)
}

func (e sides) equalBare(o sides) bool {
	return e.left.EqualBare(o.left) && e.right.EqualBare(o.right)
}

func (e sides) wrongTerms(candidate sides) []*Term {
	out := candidate.left.Missing(e.left)
	return append(out, candidate.right.Missing(e.right)...)
}

// EquationStatement is a chemical equation balanced by atoms and charge.
type EquationStatement struct {
	sides
}

func NewEquationStatement(left, right *Expression, arrow Arrow) *EquationStatement {
	return &EquationStatement{sides{left: left, right: right, arrow: arrow}}
}

func (*EquationStatement) statement() {}

func (s *EquationStatement) Kind() Kind { return KindEquation }

// IsBalancedAtoms compares the atom counts of both sides. An equation with
// an error term is never balanced.
func (s *EquationStatement) IsBalancedAtoms() bool {
	if s.ContainsError() {
		return false
	}
	return s.left.AtomCount().Equal(s.right.AtomCount())
}

func (s *EquationStatement) IsBalancedCharge() bool {
	if s.ContainsError() {
		return false
	}
	return s.left.Charge().Equal(s.right.Charge())
}

func (s *EquationStatement) IsBalanced() bool {
	return s.IsBalancedAtoms() && s.IsBalancedCharge()
}

func (s *EquationStatement) Equal(other Statement) bool {
	o, ok := other.(*EquationStatement)
	return ok && o != nil && s.equal(o.sides)
}

func (s *EquationStatement) WeaklyEquivalent(other Statement) bool {
	o, ok := other.(*EquationStatement)
	return ok && o != nil && s.equalBare(o.sides)
}

func (s *EquationStatement) WrongTerms(candidate Statement) []*Term {
	o, ok := candidate.(*EquationStatement)
	if !ok || o == nil {
		return allTerms(candidate)
	}
	return s.wrongTerms(o.sides)
}

// NuclearEquationStatement is an equation over isotopes and particles,
// balanced by mass and atomic number.
type NuclearEquationStatement struct {
	sides
}

func NewNuclearEquationStatement(left, right *Expression, arrow Arrow) *NuclearEquationStatement {
	return &NuclearEquationStatement{sides{left: left, right: right, arrow: arrow}}
}

func (*NuclearEquationStatement) statement() {}

func (s *NuclearEquationStatement) Kind() Kind { return KindNuclearEquation }

// IsBalancedMass compares the summed mass numbers of both sides. It is
// false when a side holds an error term or a species that is not nuclear.
func (s *NuclearEquationStatement) IsBalancedMass() bool {
	return s.balanced((*Expression).MassNumber)
}

func (s *NuclearEquationStatement) IsBalancedAtomicNumber() bool {
	return s.balanced((*Expression).AtomicNumber)
}

func (s *NuclearEquationStatement) IsBalanced() bool {
	return s.IsBalancedMass() && s.IsBalancedAtomicNumber()
}

func (s *NuclearEquationStatement) balanced(sum func(*Expression) (int, error)) bool {
	if s.ContainsError() {
		return false
	}
	l, err := sum(s.left)
	if err != nil {
		return false
	}
	r, err := sum(s.right)
	if err != nil {
		return false
	}
	return l == r
}

// IsValid reports whether every isotope and particle on both sides declares
// its true atomic number.
func (s *NuclearEquationStatement) IsValid() bool {
	for _, e := range []*Expression{s.left, s.right} {
		for _, t := range e.terms {
			if t.IsError() || !IsValidAtomicNumber(t.Species) {
				return false
			}
		}
	}
	return true
}

func (s *NuclearEquationStatement) Equal(other Statement) bool {
	o, ok := other.(*NuclearEquationStatement)
	return ok && o != nil && s.equal(o.sides)
}

func (s *NuclearEquationStatement) WeaklyEquivalent(other Statement) bool {
	o, ok := other.(*NuclearEquationStatement)
	return ok && o != nil && s.equalBare(o.sides)
}

func (s *NuclearEquationStatement) WrongTerms(candidate Statement) []*Term {
	o, ok := candidate.(*NuclearEquationStatement)
	if !ok || o == nil {
		return allTerms(candidate)
	}
	return s.wrongTerms(o.sides)
}

// allTerms flattens any statement into its terms, left side first.
func allTerms(s Statement) []*Term {
	switch st := s.(type) {
	case *ExpressionStatement:
		return st.Expr.Terms()
	case *EquationStatement:
		return append(st.left.Terms(), st.right.Terms()...)
	case *NuclearEquationStatement:
		return append(st.left.Terms(), st.right.Terms()...)
	}
	return nil
}
