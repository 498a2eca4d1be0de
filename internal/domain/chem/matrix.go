package chem

import (
	"errors"
	"fmt"
)

var (
	errDimensionMismatch = errors.New("matrix: dimension mismatch")
	errNoUniqueSolution  = errors.New("matrix: system has free variables")
	errInconsistent      = errors.New("matrix: inconsistent system")
)

// solve returns the unique x with a·x = b over exact rationals, using
// Gauss-Jordan elimination on the augmented matrix [a | b].
func solve(a [][]Fraction, b []Fraction) ([]Fraction, error) {
	const op = "solve"
	rows := len(a)
	if rows == 0 || rows != len(b) {
		return nil, fmt.Errorf("%s: %w", op, errDimensionMismatch)
	}
	cols := len(a[0])

	aug := make([][]Fraction, rows)
	for i := range a {
		if len(a[i]) != cols {
			return nil, fmt.Errorf("%s: row %d: %w", op, i, errDimensionMismatch)
		}
		aug[i] = make([]Fraction, cols+1)
		copy(aug[i], a[i])
		aug[i][cols] = b[i]
	}

	pivotRow := 0
	for col := 0; col < cols; col++ {
		p := -1
		for r := pivotRow; r < rows; r++ {
			if !aug[r][col].IsZero() {
				p = r
				break
			}
		}
		if p < 0 {
			return nil, fmt.Errorf("%s: column %d: %w", op, col, errNoUniqueSolution)
		}
		aug[pivotRow], aug[p] = aug[p], aug[pivotRow]

		pivot := aug[pivotRow][col]
		for c := col; c <= cols; c++ {
			v, err := aug[pivotRow][c].Div(pivot)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			aug[pivotRow][c] = v
		}
		for r := 0; r < rows; r++ {
			if r == pivotRow || aug[r][col].IsZero() {
				continue
			}
			factor := aug[r][col]
			for c := col; c <= cols; c++ {
				prod, err := factor.MulChecked(aug[pivotRow][c])
				if err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
				if aug[r][c], err = aug[r][c].SubChecked(prod); err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
			}
		}
		pivotRow++
	}

	// Rows past the last pivot are all-zero on the left; a non-zero right
	// hand side there means no solution.
	for r := pivotRow; r < rows; r++ {
		if !aug[r][cols].IsZero() {
			return nil, fmt.Errorf("%s: row %d: %w", op, r, errInconsistent)
		}
	}

	x := make([]Fraction, cols)
	for i := 0; i < cols; i++ {
		x[i] = aug[i][cols]
	}
	return x, nil
}
