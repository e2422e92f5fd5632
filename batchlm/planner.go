package batchlm

import "math"

// chunkPlan is the result of sizing one chunk (spec §4.3, component C).
// Grouped the way sim/config.go groups tunables for a single subsystem,
// and computed the way sim/batch_formation.go sizes a running batch
// against a token budget before any work is dispatched.
type chunkPlan struct {
	chunkSize         int // number of fits in this chunk
	powerOfTwoNPoints int
	nFitsPerBlock     int
}

// planChunks splits nFits into a sequence of chunk sizes no larger than
// maxChunkSize, all but possibly the last equal to maxChunkSize (spec §4.3,
// "the engine processes chunks sequentially").
func planChunks(nFits, maxChunkSize int) []int {
	if maxChunkSize <= 0 {
		return nil
	}
	sizes := make([]int, 0, (nFits+maxChunkSize-1)/maxChunkSize)
	for remaining := nFits; remaining > 0; {
		n := maxChunkSize
		if n > remaining {
			n = remaining
		}
		sizes = append(sizes, n)
		remaining -= n
	}
	return sizes
}

// nextPowerOfTwo returns the smallest power of two >= n (spec §4.3,
// power_of_two_n_points — the zero-padded reduction width).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// largestPowerOfTenAtMost returns the largest power of ten <= n (n > 0),
// used to round max_chunk_size down to a reproducible chunk boundary
// (spec §4.3, e.g. 37421 -> 30000 means "round down to nearest 10000").
func largestPowerOfTenAtMost(n int) int {
	if n <= 0 {
		return 0
	}
	p := 1
	for p*10 <= n {
		p *= 10
	}
	return p
}

// roundDownToPowerOfTen rounds n down to a multiple of the largest power
// of ten <= n.
func roundDownToPowerOfTen(n int) int {
	p := largestPowerOfTenAtMost(n)
	if p == 0 {
		return 0
	}
	return (n / p) * p
}

// oneFitFootprintBytes computes the device memory footprint of a single
// fit's working set, exactly as spec §4.3 defines it.
func oneFitFootprintBytes(nPoints, nParameters, nParametersToFit int, useWeights bool) int64 {
	base := int64(4) * int64(2*nPoints+2*nParameters+2*nParametersToFit+nParametersToFit*nParametersToFit+nPoints*nParameters+4)
	base += 4 * 3
	if useWeights {
		base += 4 * int64(nPoints)
	}
	return base
}

// planChunk computes the chunk-sizing decision for a batch call (spec
// §4.3). Returns ErrNotEnoughMemory if even a single fit does not fit in
// available device memory.
func planChunk(req FitRequest, nFits int, cfg PlannerConfig) (chunkPlan, error) {
	model, err := lookupModel(req.ModelID)
	if err != nil {
		return chunkPlan{}, err
	}
	nParameters := model.ParameterCount()
	nParametersToFit := req.NParametersToFit()

	footprint := oneFitFootprintBytes(req.NPoints, nParameters, nParametersToFit, req.UseWeights)
	if footprint <= 0 || cfg.AvailableDeviceMemory < footprint {
		return chunkPlan{}, ErrNotEnoughMemory
	}

	byMemory := int64(cfg.AvailableDeviceMemory / footprint)

	scalingFactor := int64(req.NPoints * nParameters)
	if nParametersToFit > 0 {
		scalingFactor = int64(req.NPoints) * int64(nParametersToFit) * int64(nParametersToFit)
	}
	byScaling := int64(math.MaxInt64)
	if scalingFactor > 0 {
		byScaling = int64(math.MaxInt64) / scalingFactor
	}

	maxChunkSize := min64(byMemory, cfg.MaxConcurrentBlocks, byScaling, int64(nFits))
	if maxChunkSize <= 0 {
		return chunkPlan{}, ErrNotEnoughMemory
	}
	chunkSize := roundDownToPowerOfTen(int(maxChunkSize))
	if chunkSize == 0 {
		// Guard only: maxChunkSize >= 1 here and roundDownToPowerOfTen
		// returns at least 1 for any n >= 1 (a ceiling below ten rounds
		// to itself, since 1 is the largest power of ten <= it).
		chunkSize = int(maxChunkSize)
	}

	nFitsPerBlock := nFitsPerBlockFor(chunkSize, req.NPoints, cfg.MaxThreads)

	return chunkPlan{
		chunkSize:         chunkSize,
		powerOfTwoNPoints: nextPowerOfTwo(req.NPoints),
		nFitsPerBlock:     nFitsPerBlock,
	}, nil
}

// nFitsPerBlockFor implements the halving search of spec §4.3: start at 8,
// halve until it divides chunkSize evenly and n_fits_per_block*n_points <
// max_threads/4, floor of 1.
func nFitsPerBlockFor(chunkSize, nPoints int, maxThreads int64) int {
	n := 8
	for n > 1 {
		fitsOk := chunkSize%n == 0
		widthOk := int64(n*nPoints) < maxThreads/4
		if fitsOk && widthOk {
			break
		}
		n /= 2
	}
	return n
}

func min64(vs ...int64) int64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
