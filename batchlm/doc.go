// Package batchlm provides a batched Levenberg–Marquardt curve-fitting
// engine: given n independent fits sharing one model shape and point
// count, it advances all of them through synchronized LM iterations and
// returns per-fit parameters, states, chi-squares and iteration counts.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - types.go: the per-call request/batch/result data model
//   - registry.go: the Model and Estimator plug-in contracts
//   - planner.go: chunk sizing (planChunk/planChunks)
//   - driver.go: the per-iteration kernel sequence
//   - fit.go: Fit, the public entry point
//
// # Architecture
//
// This package defines the engine and its two plug-in interfaces; built-in
// implementations live in sub-packages that register themselves on import:
//   - batchlm/models/: model evaluators (GAUSS_1D, GAUSS_2D, LINEAR_1D, ...)
//   - batchlm/estimators/: LSE and MLE chi-square/gradient/Hessian summands
//
// Sub-packages register via init() functions that populate the registry
// maps in registry.go, breaking the import cycle between batchlm (contract
// owner) and batchlm/models, batchlm/estimators (implementations).
//
// # Kernels
//
// Numeric kernels (kernels.go) and the linear solver (solver.go) are not
// plug-ins — they are fixed engine machinery run once per iteration over
// every live fit in a chunk, fanned out across goroutines and joined at a
// barrier before the next kernel starts (see parallelFor in parallel.go).
package batchlm
