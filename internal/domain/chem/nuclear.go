package chem

import "fmt"

// MassNumber returns the mass number of an isotope or nuclear particle.
// Declared numbers win over true ones for particles written with them.
func MassNumber(f Formula) (int, error) {
	switch n := f.(type) {
	case *Isotope:
		return n.Mass, nil
	case *Particle:
		if mass, _, ok := n.Declared(); ok {
			return mass, nil
		}
		return n.Kind.MassNumber(), nil
	default:
		return 0, fmt.Errorf("mass number of %v: %w", f, ErrNotNuclear)
	}
}

// AtomicNumber returns the atomic number of an isotope or nuclear particle.
func AtomicNumber(f Formula) (int, error) {
	switch n := f.(type) {
	case *Isotope:
		return n.AtomicNumber, nil
	case *Particle:
		if _, atomic, ok := n.Declared(); ok {
			return atomic, nil
		}
		return n.Kind.AtomicNumber(), nil
	default:
		return 0, fmt.Errorf("atomic number of %v: %w", f, ErrNotNuclear)
	}
}

// IsNuclear reports whether mass and atomic number queries succeed on f.
func IsNuclear(f Formula) bool {
	switch f.(type) {
	case *Isotope, *Particle:
		return true
	}
	return false
}

// IsValidAtomicNumber checks declared numbers against physical ones. An
// isotope must declare the periodic-table atomic number of its element; a
// particle written with numbers must match its true numbers. Other species
// are always valid.
func IsValidAtomicNumber(f Formula) bool {
	switch n := f.(type) {
	case *Isotope:
		el, ok := n.element()
		if !ok {
			return false
		}
		z, known := AtomicNumberOf(el.Symbol)
		return known && z == n.AtomicNumber
	case *Particle:
		return n.valid()
	case *Element, *Group, *Compound, *Hydrate, *Ion, *IonChain:
		return true
	default:
		return false
	}
}
