package chem

import (
	"fmt"
	"strconv"
	"strings"
)

// Formula is a node of a chemical species tree. The set of implementations
// is closed: Element, Group, Compound, Hydrate, Ion, IonChain, Isotope and
// Particle.
type Formula interface {
	fmt.Stringer

	// Equal reports structural equality with another node.
	Equal(other Formula) bool
	Charge() Fraction
	AtomCount() AtomCount

	formula()
}

// Molecule is a Formula that may appear inside a Compound or a Group.
type Molecule interface {
	Formula
	molecule()
}

// Element is a single element symbol with a subscript count.
type Element struct {
	Symbol string
	Count  int
}

// NewElement returns symbol with count atoms. Counts below one are raised
// to one.
func NewElement(symbol string, count int) *Element {
	if count < 1 {
		count = 1
	}
	return &Element{Symbol: symbol, Count: count}
}

func (*Element) formula()  {}
func (*Element) molecule() {}

func (e *Element) Equal(other Formula) bool {
	o, ok := other.(*Element)
	return ok && o != nil && e.Symbol == o.Symbol && e.Count == o.Count
}

func (e *Element) Charge() Fraction { return Zero }

func (e *Element) AtomCount() AtomCount {
	out := AtomCount{}
	if e.Symbol == ElectronSymbol {
		return out
	}
	out.add(e.Symbol, FromInt(int64(e.Count)))
	return out
}

func (e *Element) String() string {
	return e.Symbol + countText(e.Count)
}

// Group is a bracketed sub-unit such as (OH)2 or [NH4^{+}] with its own
// multiplier and explicit charge.
type Group struct {
	Inner      Molecule
	Multiplier int
	// Ionic is the charge written inside the brackets.
	Ionic Fraction
	// Square selects [] over () when rendering. It does not take part in
	// equality.
	Square bool
}

// NewGroup returns (inner)multiplier with the charge written inside the
// brackets. Multipliers below one are raised to one.
func NewGroup(inner Molecule, multiplier int, charge Fraction) *Group {
	if multiplier < 1 {
		multiplier = 1
	}
	return &Group{Inner: inner, Multiplier: multiplier, Ionic: charge}
}

func (*Group) formula()  {}
func (*Group) molecule() {}

// Equal compares multiplier, charge and inner molecule. A Compound with a
// multiplier compares as the neutral group it renders as.
func (g *Group) Equal(other Formula) bool {
	o, ok := other.(*Group)
	if c, isCompound := other.(*Compound); isCompound && c != nil {
		o, ok = c.asGroup()
	}
	return ok && o != nil &&
		g.Multiplier == o.Multiplier &&
		g.Ionic.Equal(o.Ionic) &&
		g.Inner.Equal(o.Inner)
}

func (g *Group) Charge() Fraction {
	return g.Inner.Charge().Add(g.Ionic).MulInt(int64(g.Multiplier))
}

func (g *Group) AtomCount() AtomCount {
	return g.Inner.AtomCount().Scale(int64(g.Multiplier))
}

func (g *Group) String() string {
	open, closing := "(", ")"
	if g.Square {
		open, closing = "[", "]"
	}
	return open + g.Inner.String() + chargeSuffix(g.Ionic) + closing + countText(g.Multiplier)
}

// Compound is an ordered run of molecules, e.g. CH3CH2OH. A Multiplier
// above one renders as (parts)n, which mhchem reads back as a Group, so
// such a compound is equal to that neutral Group.
type Compound struct {
	Parts      []Molecule
	Multiplier int
}

// NewCompound returns parts with multiplier one.
func NewCompound(parts ...Molecule) *Compound {
	return &Compound{Parts: parts, Multiplier: 1}
}

func (*Compound) formula()  {}
func (*Compound) molecule() {}

func (c *Compound) Equal(other Formula) bool {
	if g, isGroup := other.(*Group); isGroup {
		if cg, ok := c.asGroup(); ok {
			return cg.Equal(g)
		}
		return false
	}
	o, ok := other.(*Compound)
	if !ok || o == nil || c.Multiplier != o.Multiplier || len(c.Parts) != len(o.Parts) {
		return false
	}
	for i := range c.Parts {
		if !c.Parts[i].Equal(o.Parts[i]) {
			return false
		}
	}
	return true
}

func (c *Compound) Charge() Fraction {
	sum := Zero
	for _, p := range c.Parts {
		sum = sum.Add(p.Charge())
	}
	return sum.MulInt(int64(c.multiplier()))
}

func (c *Compound) AtomCount() AtomCount {
	out := AtomCount{}
	for _, p := range c.Parts {
		out = out.Add(p.AtomCount())
	}
	return out.Scale(int64(c.multiplier()))
}

func (c *Compound) String() string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.String())
	}
	if c.multiplier() > 1 {
		return "(" + b.String() + ")" + strconv.Itoa(c.Multiplier)
	}
	return b.String()
}

// asGroup returns the neutral round-bracket group c renders as when its
// multiplier is above one. A single part is not wrapped, as in parsing.
func (c *Compound) asGroup() (*Group, bool) {
	if c.multiplier() <= 1 {
		return nil, false
	}
	var inner Molecule = NewCompound(c.Parts...)
	if len(c.Parts) == 1 {
		inner = c.Parts[0]
	}
	return NewGroup(inner, c.Multiplier, Zero), true
}

func (c *Compound) multiplier() int {
	if c.Multiplier < 1 {
		return 1
	}
	return c.Multiplier
}

// Hydrate is a compound with attached water of crystallisation, written
// CuSO4.5H2O. Its atom count is fixed at construction.
type Hydrate struct {
	Compound *Compound
	Water    int
	atoms    AtomCount
}

// NewHydrate attaches water molecules of crystallisation to c.
func NewHydrate(c *Compound, water int) *Hydrate {
	if water < 1 {
		water = 1
	}
	atoms := c.AtomCount()
	atoms.add("H", FromInt(int64(2*water)))
	atoms.add("O", FromInt(int64(water)))
	return &Hydrate{Compound: c, Water: water, atoms: atoms}
}

func (*Hydrate) formula() {}

func (h *Hydrate) Equal(other Formula) bool {
	o, ok := other.(*Hydrate)
	return ok && o != nil && h.Water == o.Water && h.Compound.Equal(o.Compound)
}

func (h *Hydrate) Charge() Fraction { return Zero }

func (h *Hydrate) AtomCount() AtomCount { return h.atoms.clone() }

func (h *Hydrate) String() string {
	return h.Compound.String() + "." + countText(h.Water) + "H2O"
}

// Ion is a molecule carrying an explicit charge, e.g. Cr2O7^{2-}.
type Ion struct {
	Molecule Molecule
	Ionic    Fraction
}

// NewIon returns m carrying charge.
func NewIon(m Molecule, charge Fraction) *Ion {
	return &Ion{Molecule: m, Ionic: charge}
}

func (*Ion) formula() {}

func (i *Ion) Equal(other Formula) bool {
	o, ok := other.(*Ion)
	return ok && o != nil && i.Ionic.Equal(o.Ionic) && i.Molecule.Equal(o.Molecule)
}

func (i *Ion) Charge() Fraction { return i.Ionic }

func (i *Ion) AtomCount() AtomCount { return i.Molecule.AtomCount() }

func (i *Ion) String() string {
	return i.Molecule.String() + chargeSuffix(i.Ionic)
}

// IonChain is a salt written as consecutive ions, e.g. Na^{+}Cl^{-}.
type IonChain struct {
	Parts []Formula
}

// NewIonChain returns the ions in written order.
func NewIonChain(parts ...Formula) *IonChain {
	return &IonChain{Parts: parts}
}

func (*IonChain) formula() {}

func (c *IonChain) Equal(other Formula) bool {
	o, ok := other.(*IonChain)
	if !ok || o == nil || len(c.Parts) != len(o.Parts) {
		return false
	}
	for i := range c.Parts {
		if !c.Parts[i].Equal(o.Parts[i]) {
			return false
		}
	}
	return true
}

func (c *IonChain) Charge() Fraction {
	sum := Zero
	for _, p := range c.Parts {
		sum = sum.Add(p.Charge())
	}
	return sum
}

func (c *IonChain) AtomCount() AtomCount {
	out := AtomCount{}
	for _, p := range c.Parts {
		out = out.Add(p.AtomCount())
	}
	return out
}

func (c *IonChain) String() string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.String())
	}
	return b.String()
}

// Isotope is a species written with explicit mass and atomic numbers, e.g.
// ^{14}_{6}C.
type Isotope struct {
	Species      Formula
	Mass         int
	AtomicNumber int
}

func NewIsotope(species Formula, mass, atomic int) *Isotope {
	return &Isotope{Species: species, Mass: mass, AtomicNumber: atomic}
}

func (*Isotope) formula() {}

func (i *Isotope) Equal(other Formula) bool {
	o, ok := other.(*Isotope)
	return ok && o != nil &&
		i.Mass == o.Mass &&
		i.AtomicNumber == o.AtomicNumber &&
		i.Species.Equal(o.Species)
}

func (i *Isotope) Charge() Fraction { return i.Species.Charge() }

func (i *Isotope) AtomCount() AtomCount { return i.Species.AtomCount() }

func (i *Isotope) String() string {
	return nuclearPrefix(i.Mass, i.AtomicNumber) + i.Species.String()
}

// element returns the element the isotope is written for, looking through
// an ionic charge.
func (i *Isotope) element() (*Element, bool) {
	switch s := i.Species.(type) {
	case *Element:
		return s, true
	case *Ion:
		e, ok := s.Molecule.(*Element)
		return e, ok
	}
	return nil, false
}

// countText renders a subscript or coefficient; one is implicit.
func countText(n int) string {
	if n <= 1 {
		return ""
	}
	return strconv.Itoa(n)
}

// chargeSuffix renders a charge as ^{+}, ^{2-} and so on; zero renders as
// nothing.
func chargeSuffix(q Fraction) string {
	if q.IsZero() {
		return ""
	}
	sign := "+"
	if q.Sign() < 0 {
		sign = "-"
		q = q.Neg()
	}
	if q.Equal(One) {
		return "^{" + sign + "}"
	}
	return "^{" + q.String() + sign + "}"
}

func nuclearPrefix(mass, atomic int) string {
	return "^{" + strconv.Itoa(mass) + "}_{" + strconv.Itoa(atomic) + "}"
}
