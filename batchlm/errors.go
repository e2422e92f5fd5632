package batchlm

import "errors"

// Call-level errors (spec §7): these abort the whole Fit call and leave
// output arrays undefined. They are returned as Go errors rather than
// through a get_last_error()-style global — see DESIGN.md's Open Question
// decision on the spec's get_last_error() interface.
var (
	ErrInvalidModelID     = errors.New("invalid model id")
	ErrInvalidEstimatorID = errors.New("invalid estimator id")
	ErrInvalidTolerance   = errors.New("tolerance must be positive")
	ErrInvalidMaxIter     = errors.New("max_iterations must be at least 1")
	ErrInvalidNPoints     = errors.New("n_points must be at least 1")
	ErrInvalidNFits       = errors.New("n_fits must be at least 1")
	ErrNoDevice           = errors.New("no compute device present")
	ErrNotEnoughMemory    = errors.New("not enough free device memory")
)
