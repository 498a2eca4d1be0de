package chem

import "errors"

var (
	// ErrNotNuclear is returned by mass and atomic number queries on
	// species that are neither isotopes nor nuclear particles.
	ErrNotNuclear = errors.New("chem: not a nuclear species")

	// ErrMismatchedElements is returned by the balancer when the right side
	// uses elements the left side lacks.
	ErrMismatchedElements = errors.New("chem: mismatched elements")

	// ErrUnsolvableSystem is returned by the balancer when no unique positive
	// set of coefficients exists.
	ErrUnsolvableSystem = errors.New("chem: unsolvable system")
)
