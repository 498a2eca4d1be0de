package chem

import "sort"

// AtomCount maps element symbols to how many atoms of that element a node
// holds. Zero entries are never stored and values are never negative.
type AtomCount map[string]Fraction

func (a AtomCount) add(symbol string, n Fraction) {
	sum := a.Get(symbol).Add(n)
	if sum.IsZero() {
		delete(a, symbol)
		return
	}
	a[symbol] = sum
}

// Get returns the count for symbol, zero when absent.
func (a AtomCount) Get(symbol string) Fraction {
	if v, ok := a[symbol]; ok {
		return v
	}
	return Zero
}

// Add returns a new count holding the sum of a and b.
func (a AtomCount) Add(b AtomCount) AtomCount {
	out := a.clone()
	for sym, n := range b {
		out.add(sym, n)
	}
	return out
}

// Scale returns a new count with every value multiplied by k.
func (a AtomCount) Scale(k int64) AtomCount {
	out := make(AtomCount, len(a))
	if k == 0 {
		return out
	}
	for sym, n := range a {
		out[sym] = n.MulInt(k)
	}
	return out
}

// Equal reports whether both counts hold the same symbols with the same
// values.
func (a AtomCount) Equal(b AtomCount) bool {
	for sym, n := range a {
		if !b.Get(sym).Equal(n) {
			return false
		}
	}
	for sym, n := range b {
		if !a.Get(sym).Equal(n) {
			return false
		}
	}
	return true
}

// Symbols returns the element symbols in alphabetical order.
func (a AtomCount) Symbols() []string {
	syms := make([]string, 0, len(a))
	for sym := range a {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

func (a AtomCount) clone() AtomCount {
	out := make(AtomCount, len(a))
	for sym, n := range a {
		out[sym] = n
	}
	return out
}
