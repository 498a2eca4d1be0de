package chem

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFraction_ReducesToLowestTerms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		num, den int64
		wantNum  int64
		wantDen  int64
	}{
		{"already reduced", 3, 4, 3, 4},
		{"common factor", 6, 8, 3, 4},
		{"negative denominator", 1, -2, -1, 2},
		{"both negative", -4, -6, 2, 3},
		{"zero numerator", 0, 7, 0, 1},
		{"integer", 10, 5, 2, 1},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := NewFraction(tc.num, tc.den)
			assert.Equal(t, tc.wantNum, f.Num())
			assert.Equal(t, tc.wantDen, f.Den())
			assert.Equal(t, int64(1), gcd(abs(f.Num()), f.Den()))
		})
	}
}

func TestFraction_ScaledPairsAreEqual(t *testing.T) {
	t.Parallel()

	for _, base := range [][2]int64{{1, 2}, {-3, 7}, {5, 1}, {0, 3}} {
		for _, k := range []int64{1, 2, -3, 11} {
			a := NewFraction(base[0], base[1])
			b := NewFraction(k*base[0], k*base[1])
			assert.True(t, a.Equal(b), "%v vs %v", a, b)
		}
	}
}

func TestNewFraction_ZeroDenominatorPanics(t *testing.T) {
	assert.Panics(t, func() { NewFraction(1, 0) })
}

func TestFraction_Arithmetic(t *testing.T) {
	half := NewFraction(1, 2)
	third := NewFraction(1, 3)

	assert.True(t, half.Add(third).Equal(NewFraction(5, 6)))
	assert.True(t, half.Sub(third).Equal(NewFraction(1, 6)))
	assert.True(t, half.Mul(third).Equal(NewFraction(1, 6)))
	assert.True(t, half.AddInt(2).Equal(NewFraction(5, 2)))
	assert.True(t, third.MulInt(6).Equal(FromInt(2)))
	assert.True(t, half.Neg().Equal(NewFraction(-1, 2)))

	q, err := half.Div(third)
	require.NoError(t, err)
	assert.True(t, q.Equal(NewFraction(3, 2)))

	_, err = half.Div(Zero)
	assert.Error(t, err)
}

func TestFraction_ZeroValueIsZero(t *testing.T) {
	var f Fraction
	assert.True(t, f.IsZero())
	assert.True(t, f.Equal(Zero))
	assert.Equal(t, "0", f.String())
	assert.True(t, f.AddInt(3).Equal(FromInt(3)))
}

func TestFraction_String(t *testing.T) {
	assert.Equal(t, "3", FromInt(3).String())
	assert.Equal(t, "-1/2", NewFraction(2, -4).String())

	text, err := NewFraction(3, 9).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1/3", string(text))
}

func TestFraction_SignAndInteger(t *testing.T) {
	assert.Equal(t, -1, NewFraction(-1, 3).Sign())
	assert.Equal(t, 0, Zero.Sign())
	assert.Equal(t, 1, One.Sign())
	assert.True(t, NewFraction(4, 2).IsInteger())
	assert.False(t, NewFraction(1, 2).IsInteger())
}

func TestLCM(t *testing.T) {
	assert.Equal(t, int64(12), lcm(4, 6))
	assert.Equal(t, int64(7), lcm(1, 7))
}

func TestFraction_OverflowIsReported(t *testing.T) {
	t.Parallel()

	huge := FromInt(math.MaxInt64)
	cases := []struct {
		name string
		op   func() (Fraction, error)
	}{
		{"add", func() (Fraction, error) { return huge.AddChecked(One) }},
		{"sub", func() (Fraction, error) { return huge.Neg().SubChecked(FromInt(2)) }},
		{"mul", func() (Fraction, error) { return huge.MulChecked(FromInt(2)) }},
		{"denominators", func() (Fraction, error) {
			return NewFraction(1, math.MaxInt64).AddChecked(NewFraction(1, math.MaxInt64-1))
		}},
		{"div", func() (Fraction, error) { return huge.Div(NewFraction(1, 2)) }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.op()
			assert.True(t, errors.Is(err, ErrOverflow), "got %v", err)
		})
	}
}

func TestFraction_UncheckedOverflowPanics(t *testing.T) {
	huge := FromInt(math.MaxInt64)
	assert.Panics(t, func() { huge.Add(One) })
	assert.Panics(t, func() { huge.MulInt(3) })
	assert.Panics(t, func() { AtomCount{"H": huge}.Scale(2) })
}

func TestFraction_MulCrossReduces(t *testing.T) {
	big := NewFraction(1<<40, 3)
	got, err := big.MulChecked(NewFraction(3, 1<<40))
	require.NoError(t, err)
	assert.True(t, got.Equal(One))

	sum, err := NewFraction(1, 1<<40).AddChecked(NewFraction(1, 1<<40))
	require.NoError(t, err)
	assert.True(t, sum.Equal(NewFraction(1, 1<<39)))
}
