package chem

// Builders shared by the package tests.

func el(symbol string, count int) *Element { return NewElement(symbol, count) }

func cmpd(parts ...Molecule) *Compound { return NewCompound(parts...) }

func ion(m Molecule, charge int64) *Ion { return NewIon(m, FromInt(charge)) }

func term(coef int, f Formula) *Term { return NewTerm(coef, f, StateNone) }

func termIn(coef int, f Formula, st State) *Term { return NewTerm(coef, f, st) }

func expr(terms ...*Term) *Expression { return NewExpression(terms...) }

func water() *Compound { return cmpd(el("H", 2), el("O", 1)) }

func propanol() *Compound {
	return cmpd(el("C", 1), el("H", 3), el("C", 1), el("H", 2), el("C", 1), el("H", 2), el("O", 1), el("H", 1))
}

func propanal() *Compound {
	return cmpd(el("C", 1), el("H", 3), el("C", 1), el("H", 2), el("C", 1), el("H", 1), el("O", 1))
}

func dichromate() *Ion { return ion(cmpd(el("Cr", 2), el("O", 7)), -2) }

// dichromateOxidation is 8H+ + Cr2O7^{2-} + 3CH3CH2CH2OH -> 2Cr^{3+} + 3CH3CH2CHO + 7H2O.
func dichromateOxidation() *EquationStatement {
	return NewEquationStatement(
		expr(term(8, ion(el("H", 1), 1)), term(1, dichromate()), term(3, propanol())),
		expr(term(2, ion(el("Cr", 1), 3)), term(3, propanal()), term(7, water())),
		ArrowForward,
	)
}

func carbon14(atomic int) *Isotope { return NewIsotope(el("C", 1), 14, atomic) }
