package matrix

import (
	gomatrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// ScaledIdentitySym returns an n x n identity matrix scaled by v.
// It panics if n is not a positive integer.
func ScaledIdentitySym(n int, v float64) *mat.SymDense {
	eye, err := gomatrix.NewDenseValIdentity(n, v)
	if err != nil {
		panic(err)
	}

	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, eye.At(i, i))
	}

	return s
}

// Symmetrize returns (m + m') / 2 as a symmetric matrix.
// It panics if m is not square.
func Symmetrize(m mat.Matrix) *mat.SymDense {
	rows, cols := m.Dims()
	if rows != cols {
		panic("matrix: symmetrize of a non-square matrix")
	}

	s := mat.NewSymDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			s.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}

	return s
}

// IsSymmetric reports whether m equals its transpose within tol.
func IsSymmetric(m mat.Matrix, tol float64) bool {
	rows, cols := m.Dims()
	if rows != cols {
		return false
	}

	for i := 0; i < rows; i++ {
		for j := i + 1; j < rows; j++ {
			if !scalar.EqualWithinAbs(m.At(i, j), m.At(j, i), tol) {
				return false
			}
		}
	}

	return true
}
