package batchlm

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/batchlm/batchlm/trace"
)

// Fit is the public entry point (component H, spec §6). It validates the
// request, asks the planner for a chunk size, then streams chunks through
// the driver, copying each chunk's inputs in and its outputs back out
// (spec §2, "Data flow").
//
// Fit never returns a partial FitResult on error: call-level failures
// (spec §7) abort the whole call before any chunk is processed. Per-fit
// failures (singular Hessian, MLE negative curvature, iteration budget
// exhaustion) are never errors — they are encoded in FitResult.States,
// and are strictly confined to the fit that produced them (spec §7,
// "Per-fit errors never poison sibling fits").
func Fit(req FitRequest, batch FitBatch, cfg EngineConfig) (FitResult, error) {
	if err := validateRequest(req, batch); err != nil {
		return FitResult{}, err
	}
	if err := cfg.Planner.Validate(); err != nil {
		return FitResult{}, err
	}
	if err := validateTraceLevel(cfg.TraceLevel); err != nil {
		return FitResult{}, err
	}

	model, err := lookupModel(req.ModelID)
	if err != nil {
		return FitResult{}, err
	}
	estimator, err := lookupEstimator(req.EstimatorID)
	if err != nil {
		return FitResult{}, err
	}
	if len(req.ParametersToFit) != model.ParameterCount() {
		return FitResult{}, fmt.Errorf("parameters_to_fit has %d entries, model %q has %d parameters",
			len(req.ParametersToFit), req.ModelID, model.ParameterCount())
	}

	plan, err := planChunk(req, batch.NFits, cfg.Planner)
	if err != nil {
		return FitResult{}, err
	}

	nParameters := model.ParameterCount()
	engineTrace := trace.New(trace.Level(cfg.TraceLevel))
	result := FitResult{
		Parameters:  make([]float64, batch.NFits*nParameters),
		States:      make([]ConvergenceState, batch.NFits),
		ChiSquares:  make([]float64, batch.NFits),
		NIterations: make([]int, batch.NFits),
	}
	if engineTrace.Level == trace.LevelIterations {
		result.Trace = engineTrace
	}

	chunkSizes := planChunks(batch.NFits, plan.chunkSize)
	logrus.Infof("batchlm: fitting %d fit(s) of model %q/estimator %q in %d chunk(s) of up to %d",
		batch.NFits, req.ModelID, req.EstimatorID, len(chunkSizes), plan.chunkSize)

	fitOffset := 0
	for _, size := range chunkSizes {
		buffers := newChunkBuffers(req, model, estimator, batch, fitOffset, size)
		runDriver(buffers, req, fitOffset, engineTrace)
		buffers.writeResults(&result, fitOffset)
		fitOffset += size
	}

	return result, nil
}
