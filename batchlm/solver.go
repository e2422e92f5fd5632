package batchlm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// solveKernel is the linear solver (component F, spec §4.6): for each
// live fit, solve hessian * delta = gradient by batched Gauss-Jordan
// elimination with partial pivoting. A fit whose pivot search finds only
// (near-)zero entries is flagged singular, its delta left at zero (spec:
// "Singular fits keep their parameters unchanged this iteration"), and its
// state is set to SingularHessian (spec §4.4 step 7, folded into this
// kernel rather than a separate fan-out pass since both read the same
// singular_flag this kernel already computes).
//
// The augmented-matrix shape and the row-swap helper below follow the
// structure of gonum's own Levenberg-Marquardt reference implementation
// (optimize/nlls), which represents the same per-iteration normal-equation
// solve with gonum/mat.Dense.
func solveKernel(b *chunkBuffers) {
	n := b.nParametersToFit
	if n == 0 {
		return
	}
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished {
			return
		}
		sc := &b.scratch[i]

		augmented := mat.NewDense(n, n+1, nil)
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				augmented.Set(r, c, sc.hessian[r*n+c])
			}
			augmented.Set(r, n, sc.gradient[r])
		}

		singular := gaussJordan(augmented, n)
		sc.singularFlag = singular
		if singular {
			fs.state = SingularHessian
			for p := range sc.delta {
				sc.delta[p] = 0
			}
			return
		}
		for r := 0; r < n; r++ {
			sc.delta[r] = augmented.At(r, n)
		}
	})
}

// gaussJordan reduces the n x (n+1) augmented matrix in place via
// Gauss-Jordan elimination with partial pivoting (spec §4.6). Returns
// true if a zero pivot is found after the search, in which case the
// matrix is left in a partially reduced, unused state.
func gaussJordan(augmented *mat.Dense, n int) bool {
	const pivotTolerance = 1e-12
	for c := 0; c < n; c++ {
		pivotRow := c
		pivotVal := math.Abs(augmented.At(c, c))
		for r := c + 1; r < n; r++ {
			if v := math.Abs(augmented.At(r, c)); v > pivotVal {
				pivotVal = v
				pivotRow = r
			}
		}
		if pivotVal <= pivotTolerance {
			return true
		}
		if pivotRow != c {
			swapRows(augmented, c, pivotRow, n)
		}
		scale := 1.0 / augmented.At(c, c)
		for col := 0; col <= n; col++ {
			augmented.Set(c, col, augmented.At(c, col)*scale)
		}
		for r := 0; r < n; r++ {
			if r == c {
				continue
			}
			factor := augmented.At(r, c)
			if factor == 0 {
				continue
			}
			for col := 0; col <= n; col++ {
				augmented.Set(r, col, augmented.At(r, col)-factor*augmented.At(c, col))
			}
		}
	}
	return false
}

func swapRows(m *mat.Dense, a, b, cols int) {
	for col := 0; col <= cols; col++ {
		va, vb := m.At(a, col), m.At(b, col)
		m.Set(a, col, vb)
		m.Set(b, col, va)
	}
}
