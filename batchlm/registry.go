package batchlm

import "fmt"

// Model is the plug-in contract for a curve model (spec §4.1). Evaluate is
// pure: it must not read chi-square or iteration state, and is called
// exactly once per accepted-or-trial iteration per fit.
//
// The engine dispatches one Evaluate call per fit (the Go rendering of the
// spec's whole-chunk "evaluate(parameters, n_fits, n_points, ...)" kernel
// contract, fanned out across goroutines instead of SIMT lanes — see
// kernels.go). The implementation writes values[point] for point in
// [0,nPoints) and, for every parameter p, the partial derivative into
// derivatives[p*nPoints+point] (parameter-major). globalFitIndex is this
// fit's absolute index within the full batch (chunk-base offset plus
// in-chunk index), so evaluators that read userInfo as a shared grid or
// per-fit grid table can address the correct slice.
type Model interface {
	ParameterCount() int
	Evaluate(parameters []float64, nPoints, globalFitIndex int, userInfo []byte, values, derivatives []float64)
}

// Estimator is the plug-in contract for a chi-square objective (spec §4.2).
// Each summand contributes one term per data point; ChiSquareSummand may
// set negCurvature to request NegCurvatureMLE for that fit (MLE only).
type Estimator interface {
	// ChiSquareSummand returns the per-point contribution to chi-square.
	// negCurvature is true if the term must be skipped due to a
	// non-positive model value (MLE only).
	ChiSquareSummand(data, value, weight float64, useWeights bool) (contribution float64, negCurvature bool)
	// GradientSummand returns the per-point contribution to the gradient
	// entry for one free parameter, given ∂v/∂p at that point.
	GradientSummand(data, value, weight, dVdP float64, useWeights bool) float64
	// HessianSummand returns the per-point contribution (accumulated in
	// double precision by the caller) to one Hessian entry, given the
	// derivatives of two (possibly equal) free parameters at that point.
	HessianSummand(data, value, weight, dVdPi, dVdPj float64, useWeights bool) float64
}

// ModelFactory constructs a fresh Model instance.
type ModelFactory func() Model

// EstimatorFactory constructs a fresh Estimator instance.
type EstimatorFactory func() Estimator

// modelRegistry and estimatorRegistry are populated by sub-package init()
// functions (batchlm/models, batchlm/estimators) the same way
// sim/latency/register.go and sim/kv/register.go populate factory
// variables on the teacher's root sim package: this breaks the import
// cycle between batchlm (contract owner) and its implementation
// sub-packages, since batchlm itself never imports them.
var (
	modelRegistry     = map[ModelID]ModelFactory{}
	estimatorRegistry = map[EstimatorID]EstimatorFactory{}
)

// RegisterModel adds a model factory under id. Called from sub-package
// init() functions; panics on duplicate registration since that can only
// happen from a programming error, never from user input.
func RegisterModel(id ModelID, factory ModelFactory) {
	if _, exists := modelRegistry[id]; exists {
		panic(fmt.Sprintf("batchlm: model %q already registered", id))
	}
	modelRegistry[id] = factory
}

// RegisterEstimator adds an estimator factory under id.
func RegisterEstimator(id EstimatorID, factory EstimatorFactory) {
	if _, exists := estimatorRegistry[id]; exists {
		panic(fmt.Sprintf("batchlm: estimator %q already registered", id))
	}
	estimatorRegistry[id] = factory
}

// lookupModel resolves a registered model by id.
func lookupModel(id ModelID) (Model, error) {
	factory, ok := modelRegistry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModelID, id)
	}
	return factory(), nil
}

// lookupEstimator resolves a registered estimator by id.
func lookupEstimator(id EstimatorID) (Estimator, error) {
	factory, ok := estimatorRegistry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEstimatorID, id)
	}
	return factory(), nil
}

// IsRegisteredModel reports whether id has a registered factory. Useful for
// request validation (validateModelID in config.go, mirroring sim/bundle.go's
// IsValidAdmissionPolicy-style helpers) before a Fit call is attempted.
func IsRegisteredModel(id ModelID) bool {
	_, ok := modelRegistry[id]
	return ok
}

// IsRegisteredEstimator reports whether id has a registered factory.
func IsRegisteredEstimator(id EstimatorID) bool {
	_, ok := estimatorRegistry[id]
	return ok
}
