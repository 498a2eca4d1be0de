package mhchem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemCheck/internal/domain/chem"
)

func el(symbol string, count int) *chem.Element { return chem.NewElement(symbol, count) }

func q(n int64) chem.Fraction { return chem.FromInt(n) }

func mustParse(t *testing.T, input string) chem.Statement {
	t.Helper()
	stmt, err := Parse(input)
	require.NoError(t, err, input)
	return stmt
}

func singleSpecies(t *testing.T, input string) chem.Formula {
	t.Helper()
	stmt := mustParse(t, input)
	es, ok := stmt.(*chem.ExpressionStatement)
	require.True(t, ok, "expected an expression, got %T", stmt)
	require.Equal(t, 1, es.Expr.Len())
	term := es.Expr.Terms()[0]
	require.False(t, term.IsError(), "term failed to parse: %s", input)
	return term.Species
}

func TestParse_Formulas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  chem.Formula
	}{
		{"H2", el("H", 2)},
		{"Na", el("Na", 1)},
		{"H2O", chem.NewCompound(el("H", 2), el("O", 1))},
		{"Ca(OH)2", chem.NewCompound(el("Ca", 1), chem.NewGroup(chem.NewCompound(el("O", 1), el("H", 1)), 2, chem.Zero))},
		{"OH-", chem.NewIon(chem.NewCompound(el("O", 1), el("H", 1)), q(-1))},
		{"H+", chem.NewIon(el("H", 1), q(1))},
		{"Fe^{3+}", chem.NewIon(el("Fe", 1), q(3))},
		{"Fe^3+", chem.NewIon(el("Fe", 1), q(3))},
		{"NH4^+", chem.NewIon(chem.NewCompound(el("N", 1), el("H", 4)), q(1))},
		{"SO4^{2-}", chem.NewIon(chem.NewCompound(el("S", 1), el("O", 4)), q(-2))},
		{"Cr2O7^{-2}", chem.NewIon(chem.NewCompound(el("Cr", 2), el("O", 7)), q(-2))},
		{"Na^{+}Cl^{-}", chem.NewIonChain(chem.NewIon(el("Na", 1), q(1)), chem.NewIon(el("Cl", 1), q(-1)))},
		{"CuSO4.5H2O", chem.NewHydrate(chem.NewCompound(el("Cu", 1), el("S", 1), el("O", 4)), 5)},
		{
			"[Cu(NH3)4]^{2+}",
			chem.NewIon(chem.NewGroup(chem.NewCompound(el("Cu", 1), chem.NewGroup(chem.NewCompound(el("N", 1), el("H", 3)), 4, chem.Zero)), 1, chem.Zero), q(2)),
		},
		{"(NH4^{+})2SO4", chem.NewCompound(chem.NewGroup(chem.NewCompound(el("N", 1), el("H", 4)), 2, q(1)), el("S", 1), el("O", 4))},
		{"e^{-}", chem.NewParticle(chem.ChemicalElectron)},
		{"e-", chem.NewParticle(chem.ChemicalElectron)},
		{"\\alphaparticle", chem.NewParticle(chem.AlphaParticle)},
		{"^{14}_{6}C", chem.NewIsotope(el("C", 1), 14, 6)},
		{"^{14}C", chem.NewIsotope(el("C", 1), 14, 6)},
		{"^14_6C", chem.NewIsotope(el("C", 1), 14, 6)},
		{"^{0}_{-1}e", chem.NewDeclaredParticle(chem.PhysicalElectron, 0, -1)},
		{"^{0}_{1}e", chem.NewDeclaredParticle(chem.Positron, 0, 1)},
		{"^{1}_{0}n", chem.NewDeclaredParticle(chem.Neutron, 1, 0)},
		{"^{4}_{2}\\alphaparticle", chem.NewDeclaredParticle(chem.AlphaParticle, 4, 2)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got := singleSpecies(t, tc.input)
			assert.True(t, tc.want.Equal(got), "want %s, got %s (%T)", tc.want, got, got)
		})
	}
}

func TestParse_SquareBracketsKeepStyle(t *testing.T) {
	g := singleSpecies(t, "[Fe(CN)6]^{3-}")
	ion, ok := g.(*chem.Ion)
	require.True(t, ok)
	group, ok := ion.Molecule.(*chem.Group)
	require.True(t, ok)
	assert.True(t, group.Square)
	assert.Equal(t, "[Fe(CN)6]^{3-}", g.String())
}

func TestParse_TermCoefficientAndState(t *testing.T) {
	stmt := mustParse(t, "2H2O(l) + 3 CO2(g) + NaCl(aq) + 4Fe(s)")
	es := stmt.(*chem.ExpressionStatement)
	terms := es.Expr.Terms()
	require.Len(t, terms, 4)

	assert.Equal(t, 2, terms[0].Coefficient)
	assert.Equal(t, chem.StateLiquid, terms[0].State)
	assert.Equal(t, 3, terms[1].Coefficient)
	assert.Equal(t, chem.StateGas, terms[1].State)
	assert.Equal(t, chem.StateAqueous, terms[2].State)
	assert.Equal(t, 4, terms[3].Coefficient)
	assert.Equal(t, chem.StateSolid, terms[3].State)
}

func TestParse_DichromateOxidation(t *testing.T) {
	stmt := mustParse(t, "8H+ + Cr2O7^{2-} + 3CH3CH2CH2OH -> 2Cr^{3+} + 3CH3CH2CHO + 7H2O")

	eq, ok := stmt.(*chem.EquationStatement)
	require.True(t, ok, "got %T", stmt)
	assert.Equal(t, chem.ArrowForward, eq.Arrow())
	assert.Equal(t, 3, eq.Left().Len())
	assert.Equal(t, 3, eq.Right().Len())
	assert.False(t, eq.ContainsError())
	assert.True(t, eq.IsBalancedAtoms())
	assert.True(t, eq.IsBalancedCharge())
	assert.True(t, eq.Left().Charge().Equal(q(6)))
}

func TestParse_StatementKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		kind  chem.Kind
	}{
		{"NaCl", chem.KindExpression},
		{"H2 + O2", chem.KindExpression},
		{"2H2 + O2 -> 2H2O", chem.KindEquation},
		{"N2 + 3H2 <=> 2NH3", chem.KindEquation},
		{"Fe^{3+} + e^{-} -> Fe^{2+}", chem.KindEquation},
		{"^{14}_{6}C -> ^{14}_{7}N + ^{0}_{-1}e", chem.KindNuclearEquation},
		{"^{238}_{92}U -> ^{234}_{90}Th + \\alphaparticle", chem.KindNuclearEquation},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.kind, mustParse(t, tc.input).Kind())
		})
	}
}

func TestParse_EquilibriumArrows(t *testing.T) {
	for _, input := range []string{"N2O4 <=> 2NO2", "N2O4 <-> 2NO2", "N2O4 ⇌ 2NO2"} {
		eq, ok := mustParse(t, input).(*chem.EquationStatement)
		require.True(t, ok, input)
		assert.Equal(t, chem.ArrowEquilibrium, eq.Arrow(), input)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"8H+ + Cr2O7^{2-} + 3CH3CH2CH2OH -> 2Cr^{3+} + 3CH3CH2CHO + 7H2O",
		"2H2(g) + O2(g) -> 2H2O(l)",
		"N2 + 3H2 <=> 2NH3",
		"CuSO4.5H2O -> CuSO4 + 5H2O",
		"Ca(OH)2 + 2HCl -> CaCl2 + 2H2O",
		"[Cu(NH3)4]^{2+} + 4H+ -> Cu^{2+} + 4NH4^{+}",
		"Na^{+}Cl^{-}",
		"MnO4^{-} + 8H+ + 5e^{-} -> Mn^{2+} + 4H2O",
		"^{235}_{92}U + \\neutron -> ^{236}_{92}U",
		"^{14}_{6}C -> ^{14}_{7}N + ^{0}_{-1}e",
		"^{226}_{88}Ra -> ^{222}_{86}Rn + ^{4}_{2}\\alphaparticle",
	}

	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			first := mustParse(t, input)
			require.False(t, first.ContainsError())
			second := mustParse(t, first.String())
			assert.True(t, first.Equal(second), "%q reparsed as %q", first.String(), second.String())
		})
	}
}

func TestParse_RoundTripConstructedCompound(t *testing.T) {
	repeated := &chem.Compound{Parts: []chem.Molecule{el("H", 2), el("O", 1)}, Multiplier: 2}
	built := chem.NewCompound(el("Ba", 1), repeated)

	species := singleSpecies(t, built.String())
	assert.Equal(t, "Ba(H2O)2", built.String())
	assert.True(t, built.Equal(species), "reparsed as %s", species)
	assert.True(t, species.Equal(built))
}

func TestParse_UnicodeInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  string
	}{
		{"2H₂ + O₂ → 2H₂O", "2H2 + O2 -> 2H2O"},
		{"SO₄²⁻ + Ba²⁺ ⟶ BaSO₄", "SO4^{2-} + Ba^{2+} -> BaSO4"},
		{"CuSO₄·5H₂O", "CuSO4.5H2O"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got := mustParse(t, tc.input)
			require.False(t, got.ContainsError(), got.String())
			want := mustParse(t, tc.want)
			assert.True(t, want.WeaklyEquivalent(got), "want %s, got %s", want, got)
		})
	}
}

func TestParser_ReportsIssuesAndKeepsErrorTerms(t *testing.T) {
	res, err := NewParser().Parse("H2 + Xy2 -> H2O + (OH")
	require.NoError(t, err)

	eq, ok := res.Statement.(*chem.EquationStatement)
	require.True(t, ok)
	assert.True(t, eq.ContainsError())
	assert.False(t, eq.IsBalanced())
	assert.Equal(t, "H2 + ERROR -> H2O + ERROR", eq.String())

	require.Len(t, res.Issues, 2)
	assert.Equal(t, Issue{Side: "left", Index: 1, Offset: 5, Text: "Xy2", Message: res.Issues[0].Message}, res.Issues[0])
	assert.Contains(t, res.Issues[0].Message, "unknown element")
	assert.Equal(t, "right", res.Issues[1].Side)
	assert.Equal(t, "(OH", res.Issues[1].Text)
	assert.Equal(t, "Xy2", eq.Left().Terms()[1].Raw())
}

func TestParse_MalformedTerms(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"0H2O",
		"H2O)",
		"Fe^{3}",
		"e",
		"e^{2-}",
		"^{14}_{6}",
		"\\photon",
		"^{0}e",
		"CuSO4.5H2S",
		"Na^{+}Cl^{-}.H2O",
		"H 2",
		"h2o",
	} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			res, err := NewParser().Parse(input)
			require.NoError(t, err)
			assert.True(t, res.Statement.ContainsError())
			assert.Len(t, res.Issues, 1)
		})
	}
}

func TestParse_StatementErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse("   ")
	assert.True(t, errors.Is(err, ErrEmptyInput))
	assert.True(t, errors.Is(err, ErrParse))

	_, err = Parse("A -> B -> C")
	assert.True(t, errors.Is(err, ErrTooManyArrows))

	_, err = NewParser(WithMaxLength(5)).Parse("2H2 + O2 -> 2H2O")
	assert.True(t, errors.Is(err, ErrInputTooLong))

	_, err = NewParser(WithMaxLength(0)).Parse("2H2 + O2 -> 2H2O")
	assert.NoError(t, err)
}

func TestParse_NuclearValidity(t *testing.T) {
	stmt := mustParse(t, "^{14}_{6}C -> ^{14}_{7}N + ^{0}_{-1}e")
	nuc, ok := stmt.(*chem.NuclearEquationStatement)
	require.True(t, ok)
	assert.True(t, nuc.IsValid())
	assert.True(t, nuc.IsBalanced())

	bad := mustParse(t, "^{14}_{5}C -> ^{14}_{7}N + ^{0}_{-1}e").(*chem.NuclearEquationStatement)
	assert.False(t, bad.IsValid())
}

func TestParse_OutOfRangeNumbersBecomeErrorTerms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
	}{
		{"coefficient past int", "99999999999999999999H2"},
		{"coefficient past limit", "1000000H2O"},
		{"subscript past int", "H99999999999999999999"},
		{"subscript past limit", "H1000000"},
		{"group multiplier", "Ca(OH)99999999999999999999"},
		{"hydrate water", "CuSO4.99999999999999999999H2O"},
		{"charge", "Fe^{99999999999999999999+}"},
		{"mass number", "^{99999999999999999999}_{6}C"},
		{"atomic number", "^{14}_{99999999999999999999}C"},
		{"nested multipliers", "((H999999)999999)999999"},
		{"coefficient times subscripts", "999999H999999O999999"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res, err := NewParser().Parse(tc.input)
			require.NoError(t, err)
			assert.True(t, res.Statement.ContainsError())
			require.Len(t, res.Issues, 1)
			assert.Equal(t, tc.input, res.Issues[0].Text)
		})
	}
}

func TestParse_LargestNumbersStillParse(t *testing.T) {
	species := singleSpecies(t, "H999999")
	assert.Equal(t, el("H", MaxNumber), species)

	stmt := mustParse(t, "999999H2")
	assert.False(t, stmt.ContainsError())
	counts := stmt.(*chem.ExpressionStatement).AtomCount()
	assert.Equal(t, "1999998", counts.Get("H").String())
}

func TestParse_OversizedCoefficientIsNotAccepted(t *testing.T) {
	target := mustParse(t, "H2O")
	answer := mustParse(t, "99999999999999999999H2O")

	v := chem.Check(target, answer)
	assert.False(t, v.Accepted)
	assert.Equal(t, chem.ReasonContainsError, v.Reason)
}

func TestParse_AtomCountsNeverNegative(t *testing.T) {
	for _, input := range []string{"9000000000000000000H2", "999999H999999", "((CH3)999)999"} {
		stmt := mustParse(t, input)
		for sym, n := range stmt.(*chem.ExpressionStatement).AtomCount() {
			assert.GreaterOrEqual(t, n.Sign(), 0, "%s: %s", input, sym)
		}
	}
}
