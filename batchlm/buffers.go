package batchlm

import "math"

// chunkBuffers owns every working array for one chunk's worth of fits.
// On a real accelerator these would be device-resident allocations made
// at chunk start and freed at chunk end; on this CPU substrate they are
// plain Go slices with the same lifetime discipline — allocated by
// newChunkBuffers and left to the garbage collector once the chunk's
// driver call returns.
type chunkBuffers struct {
	nFits            int
	nPoints          int
	nParameters      int
	nParametersToFit int
	useWeights       bool

	model     Model
	estimator Estimator
	userInfo  []byte

	freeIndex []int // free-parameter index table, length nParametersToFit

	data    []float64 // nFits * nPoints
	weights []float64 // nFits * nPoints, nil if !useWeights

	fits    []fitState
	scratch []iterationScratch
}

// newChunkBuffers allocates all per-chunk state and copies the chunk's
// slice of the input batch into it (spec §4, "H copies inputs to D").
func newChunkBuffers(req FitRequest, model Model, estimator Estimator, batch FitBatch, fitOffset, chunkSize int) *chunkBuffers {
	nParameters := model.ParameterCount()
	nParametersToFit := req.NParametersToFit()
	freeIdx := req.freeParameterIndices()

	nPoints := req.NPoints
	b := &chunkBuffers{
		nFits:            chunkSize,
		nPoints:          nPoints,
		nParameters:      nParameters,
		nParametersToFit: nParametersToFit,
		useWeights:       req.UseWeights,
		model:            model,
		estimator:        estimator,
		userInfo:         req.UserInfo,
		freeIndex:        freeIdx,
		data:             make([]float64, chunkSize*nPoints),
		fits:             make([]fitState, chunkSize),
		scratch:          make([]iterationScratch, chunkSize),
	}

	copy(b.data, batch.Data[fitOffset*nPoints:(fitOffset+chunkSize)*nPoints])
	if req.UseWeights {
		b.weights = make([]float64, chunkSize*nPoints)
		copy(b.weights, batch.Weights[fitOffset*nPoints:(fitOffset+chunkSize)*nPoints])
	}

	for i := 0; i < chunkSize; i++ {
		params := make([]float64, nParameters)
		copy(params, batch.InitialParameters[(fitOffset+i)*nParameters:(fitOffset+i+1)*nParameters])
		prev := make([]float64, nParameters)
		copy(prev, params)
		b.fits[i] = fitState{
			parameters:     params,
			prevParameters: prev,
			// prevChiSquare starts at +Inf, not the zero value: the first
			// trial step has no real predecessor to be judged against, and
			// a 0 sentinel makes that trial permanently unacceptable (any
			// non-negative cost fails "chiSquare < prevChiSquare" forever,
			// see nextIterationPrepKernel).
			prevChiSquare: math.Inf(1),
			lambda:        0.001, // spec §3, initial LM damping
		}
		b.scratch[i] = iterationScratch{
			values:      make([]float64, nPoints),
			derivatives: make([]float64, nParameters*nPoints),
			gradient:    make([]float64, nParametersToFit),
			hessian:     make([]float64, nParametersToFit*nParametersToFit),
			delta:       make([]float64, nParametersToFit),
		}
	}

	return b
}

// writeResults copies this chunk's final state into the shared FitResult
// at the chunk's fit offset (spec §4, "H copies outputs back from D").
func (b *chunkBuffers) writeResults(result *FitResult, fitOffset int) {
	for i := 0; i < b.nFits; i++ {
		fs := &b.fits[i]
		copy(result.Parameters[(fitOffset+i)*b.nParameters:(fitOffset+i+1)*b.nParameters], fs.parameters)
		result.States[fitOffset+i] = fs.state
		result.ChiSquares[fitOffset+i] = fs.chiSquare
		result.NIterations[fitOffset+i] = fs.nIterations
	}
}
