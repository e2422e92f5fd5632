package batchlm

import (
	"github.com/sirupsen/logrus"

	"github.com/batchlm/batchlm/trace"
)

// runDriver advances every fit in one chunk through LM iterations until
// all are finished or max_iterations is reached (spec §4.4, component G).
// The structure — a host-side for loop driving a fixed sequence of bulk
// kernel phases, logged at phase boundaries — mirrors sim/simulator.go's
// Run() event loop, adapted from "one event at a time" to "one
// bulk-synchronous iteration across every live fit at once" (spec §5).
// t may be nil; tracing is opt-in (see batchlm/trace).
func runDriver(b *chunkBuffers, req FitRequest, fitOffset int, t *trace.EngineTrace) {
	for k := 0; k < req.MaxIterations; k++ {
		wasFinished := make([]bool, b.nFits)
		for i := range b.fits {
			wasFinished[i] = b.fits[i].finished
		}

		// 1. Model evaluation.
		evaluateValues(b, fitOffset)
		// 2. Chi-square (+ iteration_failed).
		chiSquareKernel(b)
		// 3. Gradient (skipped for finished/iteration_failed).
		gradientKernel(b)
		// 4. Hessian (skipped for finished/iteration_failed).
		hessianKernel(b)
		// 5. Damping: undo-then-reapply on the diagonal.
		dampingKernel(b)
		// 6-7. Linear solve + singularity fan-out (folded together; see solver.go).
		solveKernel(b)
		// 8. Parameter update: unconditional snapshot, conditional add.
		updateParametersKernel(b)
		// 9. Convergence check.
		isLastIteration := k == req.MaxIterations-1
		convergenceCheckKernel(b, req, isLastIteration)

		// 10. Iteration bookkeeping.
		allFinished := true
		newlyFinished := 0
		stillLive := 0
		for i := range b.fits {
			fs := &b.fits[i]
			if wasFinished[i] {
				continue
			}
			if !fs.finished && fs.state.isAutoFinishing() {
				fs.finished = true
			}
			if fs.finished {
				fs.nIterations = k + 1
				newlyFinished++
			} else {
				allFinished = false
				stillLive++
			}
		}

		// 11. Next-iteration prep: accept/reject + damping/prevChiSquare update.
		nextIterationPrepKernel(b)

		logrus.Debugf("chunk[base=%d] iteration %d: %d fit(s) newly finished", fitOffset, k, newlyFinished)

		t.RecordIteration(trace.IterationRecord{
			ChunkBase:     fitOffset,
			Iteration:     k,
			NewlyFinished: newlyFinished,
			StillLive:     stillLive,
		})

		// 12. Stop once every fit in the chunk has exited.
		if allFinished {
			break
		}
	}
}
