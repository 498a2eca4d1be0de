// Package mhchem reads chemistry written in mhchem notation into the
// statement trees of package chem.
//
// A term that cannot be read does not abort the parse: it is replaced by an
// error term and reported as an Issue, so the rest of the statement stays
// inspectable. Only input that cannot form a statement at all (empty text,
// more than one arrow, oversized input) is returned as an error.
package mhchem

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/turtacn/ChemCheck/internal/domain/chem"
)

// ErrParse is the parent of every statement-level parse failure.
var ErrParse = errors.New("mhchem: parse error")

var (
	ErrEmptyInput    = fmt.Errorf("%w: empty input", ErrParse)
	ErrTooManyArrows = fmt.Errorf("%w: more than one arrow", ErrParse)
	ErrInputTooLong  = fmt.Errorf("%w: input too long", ErrParse)
)

// DefaultMaxLength bounds the input accepted by a Parser built without
// WithMaxLength.
const DefaultMaxLength = 4096

const (
	// MaxNumber bounds every written coefficient, subscript, multiplier,
	// charge and nuclear number.
	MaxNumber = 999999

	// MaxTermMagnitude bounds the atom counts and charge of a single term
	// once coefficient and nested multipliers are applied.
	MaxTermMagnitude int64 = 1_000_000_000_000
)

// Issue describes one term that failed to parse.
type Issue struct {
	// Side is "left" or "right" for equations and empty for expressions.
	Side    string `json:"side,omitempty"`
	Index   int    `json:"index"`
	Offset  int    `json:"offset"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// Result is a parsed statement together with the normalized text it was
// read from and any term-level issues.
type Result struct {
	Statement  chem.Statement
	Normalized string
	Issues     []Issue
}

// Parser turns mhchem text into statements. It holds no per-call state and
// is safe for concurrent use.
type Parser struct {
	maxLength int
}

type Option func(*Parser)

// WithMaxLength overrides DefaultMaxLength. Non-positive values are
// ignored.
func WithMaxLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxLength = n
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse reads input with the default parser.
func Parse(input string) (chem.Statement, error) {
	res, err := defaultParser.Parse(input)
	if err != nil {
		return nil, err
	}
	return res.Statement, nil
}

// Parse reads input into an expression, equation or nuclear equation. An
// equation becomes nuclear when either side holds an isotope or a nuclear
// particle.
func (p *Parser) Parse(input string) (*Result, error) {
	if len(input) > p.maxLength {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLong, len(input), p.maxLength)
	}
	text := strings.TrimSpace(normalize(input))
	if text == "" {
		return nil, ErrEmptyInput
	}

	sides, arrows := splitArrow(text)
	if len(arrows) > 1 {
		return nil, fmt.Errorf("%w: found %d", ErrTooManyArrows, len(arrows))
	}

	res := &Result{Normalized: text}
	if len(arrows) == 0 {
		res.Statement = chem.NewExpressionStatement(expression(sides[0], "", res))
		return res, nil
	}

	arrow, _ := chem.ParseArrow(arrows[0])
	left := expression(sides[0], "left", res)
	right := expression(sides[1], "right", res)
	if nuclear(left) || nuclear(right) {
		res.Statement = chem.NewNuclearEquationStatement(left, right, arrow)
	} else {
		res.Statement = chem.NewEquationStatement(left, right, arrow)
	}
	return res, nil
}

func expression(side span, name string, res *Result) *chem.Expression {
	var terms []*chem.Term
	for i, sp := range splitTerms(side) {
		t, err := parseTerm(sp.text)
		if err != nil {
			res.Issues = append(res.Issues, Issue{
				Side:    name,
				Index:   i,
				Offset:  sp.offset,
				Text:    sp.text,
				Message: err.Error(),
			})
			t = chem.NewErrorTerm(sp.text)
		}
		terms = append(terms, t)
	}
	return chem.NewExpression(terms...)
}

func nuclear(e *chem.Expression) bool {
	for _, t := range e.Terms() {
		if t.IsError() {
			continue
		}
		if p, ok := t.Species.(*chem.Particle); ok && p.Kind == chem.ChemicalElectron {
			continue
		}
		if chem.IsNuclear(t.Species) {
			return true
		}
	}
	return false
}

var stateSuffixes = []chem.State{chem.StateAqueous, chem.StateSolid, chem.StateLiquid, chem.StateGas}

func parseTerm(text string) (*chem.Term, error) {
	if text == "" {
		return nil, errors.New("empty term")
	}

	state := chem.StateNone
	for _, st := range stateSuffixes {
		suffix := "(" + st.String() + ")"
		if strings.HasSuffix(text, suffix) {
			state = st
			text = strings.TrimRightFunc(strings.TrimSuffix(text, suffix), unicode.IsSpace)
			break
		}
	}

	s := newScanner(text)
	coefficient := 1
	n, ok, err := s.digits()
	if err != nil {
		return nil, err
	}
	if ok {
		if n < 1 {
			return nil, s.errorf("coefficient must be positive")
		}
		coefficient = n
		for unicode.IsSpace(s.peek()) {
			s.next()
		}
	}

	f, err := parseFormula(s)
	if err != nil {
		return nil, err
	}
	if !s.eof() {
		return nil, s.errorf("unexpected %q", s.peek())
	}
	if chem.Magnitude(f, MaxTermMagnitude)*int64(coefficient) > MaxTermMagnitude {
		return nil, fmt.Errorf("term exceeds %d atoms or charges", MaxTermMagnitude)
	}
	return chem.NewTerm(coefficient, f, state), nil
}

func parseFormula(s *scanner) (chem.Formula, error) {
	switch r := s.peek(); {
	case r == '^':
		return parseNuclear(s)
	case r == '\\':
		kind, err := particleCommand(s)
		if err != nil {
			return nil, err
		}
		return chem.NewParticle(kind), nil
	case r == 'e' && !unicode.IsLower(s.peekAt(1)):
		return parseElectron(s)
	}
	return parseChain(s)
}

// parseElectron reads e^{-} or e-, the electron of half-equations.
func parseElectron(s *scanner) (chem.Formula, error) {
	s.next()
	q, ok, err := parseCharge(s)
	if err != nil {
		return nil, err
	}
	if !ok || !q.Equal(chem.FromInt(-1)) {
		return nil, s.errorf("an electron must carry a single negative charge")
	}
	return chem.NewParticle(chem.ChemicalElectron), nil
}

// parseNuclear reads ^{A}_{Z} followed by an element, a particle command or
// one of the shorthands e, n and p.
func parseNuclear(s *scanner) (chem.Formula, error) {
	s.next()
	massText, err := s.braced()
	if err != nil {
		return nil, err
	}
	mass, err := boundedInt(massText)
	if err != nil {
		return nil, s.errorf("invalid mass number: %v", err)
	}

	atomic, hasAtomic := 0, false
	if s.accept('_') {
		zText, err := s.braced()
		if err != nil {
			return nil, err
		}
		if atomic, err = boundedInt(zText); err != nil {
			return nil, s.errorf("invalid atomic number: %v", err)
		}
		hasAtomic = true
	}

	switch s.peek() {
	case '\\':
		kind, err := particleCommand(s)
		if err != nil {
			return nil, err
		}
		if !hasAtomic {
			atomic = kind.AtomicNumber()
		}
		return chem.NewDeclaredParticle(kind, mass, atomic), nil
	case 'e':
		s.next()
		switch {
		case hasAtomic && atomic < 0:
			return chem.NewDeclaredParticle(chem.PhysicalElectron, mass, atomic), nil
		case hasAtomic && atomic > 0:
			return chem.NewDeclaredParticle(chem.Positron, mass, atomic), nil
		}
		return nil, s.errorf("electron needs a signed atomic number")
	case 'n':
		s.next()
		if !hasAtomic {
			atomic = chem.Neutron.AtomicNumber()
		}
		return chem.NewDeclaredParticle(chem.Neutron, mass, atomic), nil
	case 'p':
		s.next()
		if !hasAtomic {
			atomic = chem.Proton.AtomicNumber()
		}
		return chem.NewDeclaredParticle(chem.Proton, mass, atomic), nil
	}

	symbol, err := elementSymbol(s)
	if err != nil {
		return nil, err
	}
	count, ok, err := s.digits()
	if err != nil {
		return nil, err
	}
	if !ok {
		count = 1
	}
	var species chem.Formula = chem.NewElement(symbol, count)
	q, charged, err := parseCharge(s)
	if err != nil {
		return nil, err
	}
	if charged {
		species = chem.NewIon(chem.NewElement(symbol, count), q)
	}
	if !hasAtomic {
		atomic, _ = chem.AtomicNumberOf(symbol)
	}
	return chem.NewIsotope(species, mass, atomic), nil
}

func particleCommand(s *scanner) (chem.ParticleKind, error) {
	if err := s.expect('\\'); err != nil {
		return 0, err
	}
	var b strings.Builder
	for unicode.IsLetter(s.peek()) {
		b.WriteRune(s.next())
	}
	kind, ok := chem.ParticleByCommand(b.String())
	if !ok {
		return 0, s.errorf("unknown particle \\%s", b.String())
	}
	return kind, nil
}

func elementSymbol(s *scanner) (string, error) {
	first := s.peek()
	if first < 'A' || first > 'Z' {
		return "", s.errorf("expected an element symbol, found %q", first)
	}
	if second := s.peekAt(1); second >= 'a' && second <= 'z' {
		if two := string([]rune{first, second}); chem.IsElement(two) {
			s.pos += 2
			return two, nil
		}
	}
	if one := string(first); chem.IsElement(one) {
		s.pos++
		return one, nil
	}
	return "", s.errorf("unknown element %q", string(first))
}

// segment is a run of units optionally closed by a charge.
type segment struct {
	units   []chem.Molecule
	charge  chem.Fraction
	charged bool
}

func (g segment) molecule() chem.Molecule {
	if len(g.units) == 1 {
		return g.units[0]
	}
	return chem.NewCompound(g.units...)
}

func (g segment) formula() chem.Formula {
	if g.charged {
		return chem.NewIon(g.molecule(), g.charge)
	}
	return g.molecule()
}

func parseSegments(s *scanner) ([]segment, error) {
	var (
		segs []segment
		cur  segment
	)
	for {
		r := s.peek()
		switch {
		case r >= 'A' && r <= 'Z':
			symbol, err := elementSymbol(s)
			if err != nil {
				return nil, err
			}
			count, ok, err := s.digits()
			if err != nil {
				return nil, err
			}
			if !ok {
				count = 1
			}
			cur.units = append(cur.units, chem.NewElement(symbol, count))
			continue
		case r == '(' || r == '[':
			g, err := parseGroup(s)
			if err != nil {
				return nil, err
			}
			cur.units = append(cur.units, g)
			continue
		}

		q, charged, err := parseCharge(s)
		if err != nil {
			return nil, err
		}
		if charged {
			if len(cur.units) == 0 {
				return nil, s.errorf("charge without a formula")
			}
			cur.charge, cur.charged = q, true
			segs = append(segs, cur)
			cur = segment{}
			continue
		}
		if len(cur.units) > 0 {
			segs = append(segs, cur)
		}
		if len(segs) == 0 {
			return nil, s.errorf("expected a formula")
		}
		return segs, nil
	}
}

func parseGroup(s *scanner) (*chem.Group, error) {
	open := s.next()
	closing := ')'
	if open == '[' {
		closing = ']'
	}
	segs, err := parseSegments(s)
	if err != nil {
		return nil, err
	}
	if len(segs) != 1 {
		return nil, s.errorf("brackets must hold a single ion")
	}
	if err := s.expect(closing); err != nil {
		return nil, err
	}
	count, ok, err := s.digits()
	if err != nil {
		return nil, err
	}
	if !ok {
		count = 1
	}
	g := chem.NewGroup(segs[0].molecule(), count, segs[0].charge)
	g.Square = open == '['
	return g, nil
}

// parseChain reads a compound, an ion, an ion chain or a hydrate.
func parseChain(s *scanner) (chem.Formula, error) {
	segs, err := parseSegments(s)
	if err != nil {
		return nil, err
	}

	if s.accept('.') {
		if len(segs) != 1 || segs[0].charged {
			return nil, s.errorf("only a neutral compound can form a hydrate")
		}
		water, ok, err := s.digits()
		if err != nil {
			return nil, err
		}
		if !ok {
			water = 1
		}
		for _, want := range "H2O" {
			if !s.accept(want) {
				return nil, s.errorf("hydrate water must be written H2O")
			}
		}
		return chem.NewHydrate(chem.NewCompound(segs[0].units...), water), nil
	}

	if len(segs) == 1 {
		return segs[0].formula(), nil
	}
	parts := make([]chem.Formula, len(segs))
	for i, g := range segs {
		parts[i] = g.formula()
	}
	return chem.NewIonChain(parts...), nil
}

// parseCharge reads ^{2+}, ^{-}, ^3-, ^+ or a bare trailing + or -. It
// reports false when no charge starts at the current position.
func parseCharge(s *scanner) (chem.Fraction, bool, error) {
	switch s.peek() {
	case '^':
		s.next()
		text, err := s.braced()
		if err != nil {
			return chem.Zero, false, err
		}
		q, err := chargeValue(text)
		if err != nil {
			return chem.Zero, false, s.errorf("%v", err)
		}
		return q, true, nil
	case '+':
		s.next()
		return chem.One, true, nil
	case '-':
		s.next()
		return chem.FromInt(-1), true, nil
	}
	return chem.Zero, false, nil
}

// chargeValue accepts 2+, 2-, +, -, +2 and -2.
func chargeValue(text string) (chem.Fraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chem.Zero, errors.New("empty charge")
	}
	var sign byte
	var magnitude string
	switch {
	case text[len(text)-1] == '+' || text[len(text)-1] == '-':
		sign, magnitude = text[len(text)-1], text[:len(text)-1]
	case text[0] == '+' || text[0] == '-':
		sign, magnitude = text[0], text[1:]
	default:
		return chem.Zero, fmt.Errorf("charge %q has no sign", text)
	}
	n := 1
	if magnitude != "" {
		var err error
		if n, err = boundedInt(magnitude); err != nil || n < 1 {
			return chem.Zero, fmt.Errorf("invalid charge %q", text)
		}
	}
	if sign == '-' {
		n = -n
	}
	return chem.FromInt(int64(n)), nil
}
