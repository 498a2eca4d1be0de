package chem

// Magnitude returns an upper bound on every atom count and charge that f
// can produce, saturating at limit+1. A caller that keeps
// Magnitude(f, limit)*coefficient within limit can run AtomCount and
// Charge on the term without overflow.
func Magnitude(f Formula, limit int64) int64 {
	m := magnitude{limit: limit}
	return m.of(f)
}

type magnitude struct {
	limit int64
}

func (m magnitude) of(f Formula) int64 {
	switch n := f.(type) {
	case *Element:
		return m.clamp(int64(n.Count))
	case *Group:
		return m.mul(m.add(m.of(n.Inner), m.clamp(abs(n.Ionic.Num()))), int64(n.Multiplier))
	case *Compound:
		sum := int64(0)
		for _, p := range n.Parts {
			sum = m.add(sum, m.of(p))
		}
		return m.mul(sum, int64(n.multiplier()))
	case *Hydrate:
		return m.add(m.of(n.Compound), m.mul(2, int64(n.Water)))
	case *Ion:
		return m.add(m.of(n.Molecule), m.clamp(abs(n.Ionic.Num())))
	case *IonChain:
		sum := int64(0)
		for _, p := range n.Parts {
			sum = m.add(sum, m.of(p))
		}
		return sum
	case *Isotope:
		return m.of(n.Species)
	case *Particle:
		return 1
	}
	return m.limit + 1
}

func (m magnitude) clamp(n int64) int64 {
	if n < 0 || n > m.limit {
		return m.limit + 1
	}
	return n
}

func (m magnitude) add(a, b int64) int64 {
	return m.clamp(a + b)
}

func (m magnitude) mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if b < 0 || a > m.limit/b {
		return m.limit + 1
	}
	return a * b
}
