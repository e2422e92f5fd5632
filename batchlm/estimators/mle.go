package estimators

import "math"

// MLE implements the Poisson-deviance maximum-likelihood estimator (spec
// §4.2). It ignores weights entirely, matching the spec's MLE formulas,
// which carry no weight factor. A non-positive model value triggers the
// NegCurvatureMLE guard: the chi-square term is skipped and, for the
// gradient/Hessian summands, contributes zero for that point.
type MLE struct{}

func (MLE) ChiSquareSummand(data, value, _ float64, _ bool) (float64, bool) {
	if value <= 0 {
		return 0, true
	}
	term := 0.0
	if data != 0 {
		term = data * math.Log(value/data)
	}
	return 2 * (value - data - term), false
}

func (MLE) GradientSummand(data, value, _, dVdP float64, _ bool) float64 {
	if value <= 0 {
		return 0
	}
	return 2 * (1 - data/value) * dVdP
}

func (MLE) HessianSummand(data, value, _, dVdPi, dVdPj float64, _ bool) float64 {
	if value <= 0 {
		return 0
	}
	return 2 * (data / (value * value)) * dVdPi * dVdPj
}
