// Package estimators provides the built-in estimators (spec §4.2): LSE
// (weighted least squares) and MLE (Poisson deviance maximum likelihood).
// Importing this package for its side effect registers both with the
// batchlm package's registry, mirroring sim/policy's factory-by-name
// registration for scheduling/admission policies.
package estimators

// LSE implements the weighted least-squares estimator:
// chi-square contribution w*(d-v)^2 (or (d-v)^2 when weights are unused).
type LSE struct{}

func (LSE) ChiSquareSummand(data, value, weight float64, useWeights bool) (float64, bool) {
	w := weightOrOne(weight, useWeights)
	diff := data - value
	return w * diff * diff, false
}

func (LSE) GradientSummand(data, value, weight, dVdP float64, useWeights bool) float64 {
	w := weightOrOne(weight, useWeights)
	return -2 * w * (data - value) * dVdP
}

func (LSE) HessianSummand(_, _, weight, dVdPi, dVdPj float64, useWeights bool) float64 {
	w := weightOrOne(weight, useWeights)
	return 2 * w * dVdPi * dVdPj
}

func weightOrOne(weight float64, useWeights bool) float64 {
	if useWeights {
		return weight
	}
	return 1
}
