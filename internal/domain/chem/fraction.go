package chem

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrOverflow is returned when an exact result does not fit in int64.
var ErrOverflow = errors.New("chem: fraction overflow")

// Fraction is an exact rational number kept in lowest terms with a positive
// denominator. The zero value is 0.
type Fraction struct {
	num int64
	den int64
}

var (
	Zero = Fraction{num: 0, den: 1}
	One  = Fraction{num: 1, den: 1}
)

// NewFraction builds n/d reduced to lowest terms. It panics when d is zero.
func NewFraction(n, d int64) Fraction {
	if d == 0 {
		panic("chem: fraction with zero denominator")
	}
	return normalize(n, d)
}

// FromInt returns n/1.
func FromInt(n int64) Fraction {
	return Fraction{num: n, den: 1}
}

func normalize(n, d int64) Fraction {
	if n == 0 {
		return Zero
	}
	if d < 0 {
		n, d = -n, -d
	}
	g := gcd(abs(n), d)
	return Fraction{num: n / g, den: d / g}
}

// Num returns the reduced numerator.
func (f Fraction) Num() int64 { return f.num }

// Den returns the reduced denominator, always positive.
func (f Fraction) Den() int64 {
	if f.den == 0 {
		return 1
	}
	return f.den
}

// Add returns f+o. It panics with ErrOverflow when the result does not
// fit in int64; use AddChecked on untrusted magnitudes.
func (f Fraction) Add(o Fraction) Fraction {
	return must(f.AddChecked(o))
}

// AddChecked returns f+o or ErrOverflow.
func (f Fraction) AddChecked(o Fraction) (Fraction, error) {
	g := gcd(f.Den(), o.Den())
	fd, od := f.Den()/g, o.Den()/g
	a, ok1 := mul64(f.num, od)
	b, ok2 := mul64(o.num, fd)
	n, ok3 := add64(a, b)
	d, ok4 := mul64(fd, o.Den())
	if !(ok1 && ok2 && ok3 && ok4) {
		return Zero, fmt.Errorf("%s + %s: %w", f, o, ErrOverflow)
	}
	return normalize(n, d), nil
}

// AddInt returns f+n.
func (f Fraction) AddInt(n int64) Fraction {
	return f.Add(FromInt(n))
}

// Sub returns f-o.
func (f Fraction) Sub(o Fraction) Fraction {
	return f.Add(o.Neg())
}

// SubChecked returns f-o or ErrOverflow.
func (f Fraction) SubChecked(o Fraction) (Fraction, error) {
	return f.AddChecked(o.Neg())
}

// Mul returns f*o. Like Add it panics with ErrOverflow.
func (f Fraction) Mul(o Fraction) Fraction {
	return must(f.MulChecked(o))
}

// MulChecked returns f*o or ErrOverflow. Factors are cross-reduced first
// so intermediate products stay as small as the result allows.
func (f Fraction) MulChecked(o Fraction) (Fraction, error) {
	if f.num == 0 || o.num == 0 {
		return Zero, nil
	}
	g1 := gcd(abs(f.num), o.Den())
	g2 := gcd(abs(o.num), f.Den())
	n, ok1 := mul64(f.num/g1, o.num/g2)
	d, ok2 := mul64(f.Den()/g2, o.Den()/g1)
	if !ok1 || !ok2 {
		return Zero, fmt.Errorf("%s * %s: %w", f, o, ErrOverflow)
	}
	return normalize(n, d), nil
}

// MulInt returns f*n.
func (f Fraction) MulInt(n int64) Fraction {
	return f.Mul(FromInt(n))
}

// Neg returns -f.
func (f Fraction) Neg() Fraction {
	return Fraction{num: -f.num, den: f.Den()}
}

// Div returns f/o, failing when o is zero or the quotient overflows.
func (f Fraction) Div(o Fraction) (Fraction, error) {
	if o.num == 0 {
		return Zero, fmt.Errorf("chem: division of %s by zero", f)
	}
	return f.MulChecked(Fraction{num: o.Den(), den: o.num}.normalized())
}

// Equal compares the reduced pairs.
func (f Fraction) Equal(o Fraction) bool {
	return f.num == o.num && f.Den() == o.Den()
}

// IsZero reports whether f is 0.
func (f Fraction) IsZero() bool { return f.num == 0 }

// IsInteger reports whether the reduced denominator is one.
func (f Fraction) IsInteger() bool { return f.Den() == 1 }

// Sign returns -1, 0 or +1.
func (f Fraction) Sign() int {
	switch {
	case f.num < 0:
		return -1
	case f.num > 0:
		return 1
	default:
		return 0
	}
}

// String renders n, or n/d when the denominator is not one.
func (f Fraction) String() string {
	if f.Den() == 1 {
		return strconv.FormatInt(f.num, 10)
	}
	return strconv.FormatInt(f.num, 10) + "/" + strconv.FormatInt(f.Den(), 10)
}

// MarshalText renders the fraction the same way String does, so atom counts
// serialize as {"H":"2"}.
func (f Fraction) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f Fraction) normalized() Fraction {
	return normalize(f.num, f.den)
}

func must(f Fraction, err error) Fraction {
	if err != nil {
		panic(err)
	}
	return f
}

// mul64 and add64 report false instead of wrapping. MinInt64 is treated as
// out of range so that Neg and abs stay exact.
func mul64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || c == math.MinInt64 || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func add64(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) || c == math.MinInt64 {
		return 0, false
	}
	return c, true
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
