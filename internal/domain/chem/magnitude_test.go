package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMagnitude(t *testing.T) {
	t.Parallel()

	const limit = 1000
	cases := []struct {
		name    string
		formula Formula
		want    int64
	}{
		{"element", el("O", 7), 7},
		{"compound", water(), 3},
		{"ion adds charge", dichromate(), 11},
		{"group scales", NewGroup(cmpd(el("O", 1), el("H", 1)), 2, Zero), 4},
		{"hydrate adds water", NewHydrate(cmpd(el("Cu", 1), el("S", 1), el("O", 4)), 5), 16},
		{"particle", NewParticle(AlphaParticle), 1},
		{"saturates", NewGroup(NewGroup(el("H", 999), 999, Zero), 999, Zero), limit + 1},
		{"repeated compound", &Compound{Parts: []Molecule{el("H", 600)}, Multiplier: 2}, limit + 1},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Magnitude(tc.formula, limit))
		})
	}
}

func TestMagnitude_BoundsAtomCount(t *testing.T) {
	f := NewIonChain(ion(cmpd(el("Na", 3), NewGroup(el("O", 2), 4, FromInt(-1))), 2), ion(el("Cl", 5), -1))
	m := Magnitude(f, 1<<40)
	for _, n := range f.AtomCount() {
		assert.LessOrEqual(t, n.Num(), m)
	}
	assert.LessOrEqual(t, abs(f.Charge().Num()), m)
}
