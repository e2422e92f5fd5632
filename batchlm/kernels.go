package batchlm

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// This file implements the per-iteration numeric kernels of spec §4.5.
// Each kernel is dispatched with parallelFor over the fits in one chunk;
// within a fit the math runs serially, matching the spec's statement that
// "implementation is free to choose thread geometry provided the
// contracts hold". There is no zero-padding to powerOfTwoNPoints (spec
// §4.3/§9): floats.Sum adds exactly the nPoints real contributions, in its
// own summation order rather than a pairwise tree, and padding would only
// have added zeros.

// evaluateValues is kernel (a): one model evaluation per live fit.
func evaluateValues(b *chunkBuffers, fitOffset int) {
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished {
			return
		}
		sc := &b.scratch[i]
		b.model.Evaluate(fs.parameters, b.nPoints, fitOffset+i, b.userInfo, sc.values, sc.derivatives)
	})
}

// chiSquareKernel is kernel (b): per-fit chi-square plus the
// iteration_failed flag (spec §4.4 step 2).
func chiSquareKernel(b *chunkBuffers) {
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished {
			return
		}
		sc := &b.scratch[i]
		contributions := make([]float64, b.nPoints)
		negCurvature := false
		for p := 0; p < b.nPoints; p++ {
			weight := 1.0
			if b.useWeights {
				weight = b.weights[i*b.nPoints+p]
			}
			c, neg := b.estimator.ChiSquareSummand(b.data[i*b.nPoints+p], sc.values[p], weight, b.useWeights)
			contributions[p] = c
			if neg {
				negCurvature = true
			}
		}
		if negCurvature {
			fs.state = NegCurvatureMLE
		}
		chiSquare := floats.Sum(contributions)
		fs.iterationFailed = fs.prevChiSquare != 0 && chiSquare >= fs.prevChiSquare
		fs.chiSquare = chiSquare
	})
}

// gradientKernel is kernel (c): the gradient over free parameters only,
// skipped for finished or iteration_failed fits (spec §4.4 step 3).
func gradientKernel(b *chunkBuffers) {
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished || fs.iterationFailed {
			return
		}
		sc := &b.scratch[i]
		contributions := make([]float64, b.nPoints)
		for pIdx, paramIdx := range b.freeIndex {
			for p := 0; p < b.nPoints; p++ {
				weight := 1.0
				if b.useWeights {
					weight = b.weights[i*b.nPoints+p]
				}
				dVdP := sc.derivatives[paramIdx*b.nPoints+p]
				contributions[p] = b.estimator.GradientSummand(b.data[i*b.nPoints+p], sc.values[p], weight, dVdP, b.useWeights)
			}
			sc.gradient[pIdx] = floats.Sum(contributions)
		}
	})
}

// hessianKernel is kernel (d): the Gauss-Newton Hessian approximation over
// free parameters, accumulated in double precision (spec §4.4 step 4,
// §9 "Hessian accumulation in double").
func hessianKernel(b *chunkBuffers) {
	n := b.nParametersToFit
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished || fs.iterationFailed {
			return
		}
		sc := &b.scratch[i]
		for ii, pi := range b.freeIndex {
			for jj, pj := range b.freeIndex {
				var acc float64 // accumulated in double (float64) precision
				for p := 0; p < b.nPoints; p++ {
					weight := 1.0
					if b.useWeights {
						weight = b.weights[i*b.nPoints+p]
					}
					dVdPi := sc.derivatives[pi*b.nPoints+p]
					dVdPj := sc.derivatives[pj*b.nPoints+p]
					acc += b.estimator.HessianSummand(b.data[i*b.nPoints+p], sc.values[p], weight, dVdPi, dVdPj, b.useWeights)
				}
				sc.hessian[ii*n+jj] = acc
			}
		}
	})
}

// dampingKernel is kernel (e): undo-then-reapply LM damping on the
// Hessian diagonal (spec §4.4 step 5, §9 "Rollback placement" note (ii)).
func dampingKernel(b *chunkBuffers) {
	n := b.nParametersToFit
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished {
			return
		}
		sc := &b.scratch[i]
		if fs.iterationFailed {
			for d := 0; d < n; d++ {
				sc.hessian[d*n+d] /= 1 + fs.lambda/10
			}
		}
		for d := 0; d < n; d++ {
			sc.hessian[d*n+d] *= 1 + fs.lambda
		}
	})
}

// updateParametersKernel is kernel (f): unconditional prev_parameters
// snapshot, conditional additive update (spec §4.4 step 8, §9 "Rollback
// placement").
func updateParametersKernel(b *chunkBuffers) {
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		copy(fs.prevParameters, fs.parameters)
		if fs.finished {
			return
		}
		sc := &b.scratch[i]
		// delta solves hessian*delta = gradient, where gradient is the
		// gradient of chi-square, so the descent step subtracts it.
		for pIdx, paramIdx := range b.freeIndex {
			fs.parameters[paramIdx] -= sc.delta[pIdx]
		}
	})
}

// convergenceCheckKernel is kernel (g): spec §4.4 step 9. isLastIteration
// tells a not-yet-converged live fit to surface MaxIteration. A fit with no
// free parameters can never change chi_square between iterations, so it
// converges trivially on the first iteration regardless of prevChiSquare's
// bootstrap value (spec §8, "trivially: no free parameters").
func convergenceCheckKernel(b *chunkBuffers, req FitRequest, isLastIteration bool) {
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished {
			return
		}
		if b.nParametersToFit == 0 {
			fs.finished = true
			return
		}
		threshold := req.Tolerance * max(1, fs.chiSquare)
		converged := math.Abs(fs.chiSquare-fs.prevChiSquare) < threshold
		if converged {
			fs.finished = true
			return
		}
		if isLastIteration {
			fs.state = MaxIteration
		}
	})
}

// nextIterationPrepKernel is kernel (h): spec §4.4 step 11, run only for
// fits still live after bookkeeping (step 10) has resolved this
// iteration's terminal states.
func nextIterationPrepKernel(b *chunkBuffers) {
	parallelFor(b.nFits, func(i int) {
		fs := &b.fits[i]
		if fs.finished {
			return
		}
		if fs.chiSquare < fs.prevChiSquare {
			fs.lambda *= 0.1
			fs.prevChiSquare = fs.chiSquare
		} else {
			fs.lambda *= 10
			fs.chiSquare = fs.prevChiSquare
			copy(fs.parameters, fs.prevParameters)
		}
	})
}
