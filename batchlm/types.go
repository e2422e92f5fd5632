package batchlm

import "github.com/batchlm/batchlm/trace"

// ModelID identifies a registered model evaluator.
type ModelID string

// Built-in model ids (spec §4.1).
const (
	Gauss1D          ModelID = "GAUSS_1D"
	Gauss2D          ModelID = "GAUSS_2D"
	Gauss2DElliptic  ModelID = "GAUSS_2D_ELLIPTIC"
	Gauss2DRotated   ModelID = "GAUSS_2D_ROTATED"
	Cauchy2DElliptic ModelID = "CAUCHY_2D_ELLIPTIC"
	Linear1D         ModelID = "LINEAR_1D"
)

// EstimatorID identifies a registered estimator.
type EstimatorID string

// Built-in estimator ids (spec §4.2).
const (
	LSE EstimatorID = "LSE"
	MLE EstimatorID = "MLE"
)

// ConvergenceState is the terminal state recorded for a fit (spec §3).
type ConvergenceState int

const (
	// Converged means the fit exited via the tolerance test.
	Converged ConvergenceState = iota
	// MaxIteration means the iteration budget was exhausted without convergence.
	MaxIteration
	// SingularHessian means Gauss-Jordan elimination hit a zero pivot.
	SingularHessian
	// NegCurvatureMLE means an MLE fit observed a non-positive model value.
	NegCurvatureMLE
	// GPUNotReady means the compute substrate could not be initialized.
	GPUNotReady
)

// isAutoFinishing reports whether state alone, with no separate tolerance
// or iteration-budget signal, must end a fit. NegCurvatureMLE is
// deliberately excluded: spec §4.4/§9 (Open Question (i)) says a fit that
// saw a non-positive model value may still be finishable via convergence
// on a later, positive iteration, so it stays live until the solver or the
// iteration budget says otherwise.
func (s ConvergenceState) isAutoFinishing() bool {
	return s == SingularHessian || s == MaxIteration
}

func (s ConvergenceState) String() string {
	switch s {
	case Converged:
		return "CONVERGED"
	case MaxIteration:
		return "MAX_ITERATION"
	case SingularHessian:
		return "SINGULAR_HESSIAN"
	case NegCurvatureMLE:
		return "NEG_CURVATURE_MLE"
	case GPUNotReady:
		return "GPU_NOT_READY"
	default:
		return "UNKNOWN"
	}
}

// FitRequest groups the parameters shared by every fit in one call
// (spec §3, "Fit problem (per-batch, uniform across all fits)").
type FitRequest struct {
	ModelID         ModelID
	EstimatorID     EstimatorID
	NPoints         int
	ParametersToFit []bool // length == model's parameter count
	Tolerance       float64
	MaxIterations   int
	UserInfo        []byte
	UseWeights      bool
}

// freeParameterIndices returns the indices where ParametersToFit is true,
// i.e. the free-parameter index table described in spec §4.1/§9.
func (r FitRequest) freeParameterIndices() []int {
	idx := make([]int, 0, len(r.ParametersToFit))
	for i, free := range r.ParametersToFit {
		if free {
			idx = append(idx, i)
		}
	}
	return idx
}

// NParametersToFit returns the count of free parameters.
func (r FitRequest) NParametersToFit() int {
	n := 0
	for _, free := range r.ParametersToFit {
		if free {
			n++
		}
	}
	return n
}

// FitBatch holds the per-fit input arrays, all fit-major flat slices
// (spec §6, "Array shapes").
type FitBatch struct {
	NFits             int
	Data              []float64 // NFits * NPoints
	Weights           []float64 // NFits * NPoints, nil if !UseWeights
	InitialParameters []float64 // NFits * NParameters
}

// FitResult holds the per-fit outputs of one Fit call.
type FitResult struct {
	Parameters  []float64 // NFits * NParameters, final in-place parameters
	States      []ConvergenceState
	ChiSquares  []float64
	NIterations []int
	// Trace holds per-iteration diagnostics when EngineConfig.TraceLevel
	// requested them, nil otherwise.
	Trace *trace.EngineTrace
}

// fitState is the mutable per-fit state the driver threads through
// iterations (spec §3, "Per-fit state").
type fitState struct {
	parameters      []float64 // NParameters
	prevParameters  []float64 // NParameters
	chiSquare       float64
	prevChiSquare   float64
	lambda          float64
	finished        bool
	iterationFailed bool
	nIterations     int
	state           ConvergenceState
}

// iterationScratch is the per-chunk-per-iteration working memory
// (spec §3, "Per-iteration scratch").
type iterationScratch struct {
	values       []float64 // NPoints
	derivatives  []float64 // NParameters * NPoints, parameter-major
	gradient     []float64 // NParametersToFit
	hessian      []float64 // NParametersToFit^2
	delta        []float64 // NParametersToFit
	singularFlag bool
}
