// Package testutil provides shared test fixtures for batchlm's package
// tests: synthetic datasets and a tolerance-based float comparison,
// mirroring sim/internal/testutil's role in the teacher (there golden
// simulation datasets, here synthetic curve-fit datasets).
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// LinearGrid returns n evenly spaced x values in [start, stop].
func LinearGrid(start, stop float64, n int) []float64 {
	grid := make([]float64, n)
	if n == 1 {
		grid[0] = start
		return grid
	}
	step := (stop - start) / float64(n-1)
	for i := range grid {
		grid[i] = start + float64(i)*step
	}
	return grid
}

// Mesh2D returns the two nPoints-long coordinate grids obtained by
// pairing every value in xs with every value in ys, row-major (x varies
// fastest), matching the layout models.decodeXY expects.
func Mesh2D(xs, ys []float64) (x, y []float64) {
	n := len(xs) * len(ys)
	x = make([]float64, 0, n)
	y = make([]float64, 0, n)
	for _, yv := range ys {
		for _, xv := range xs {
			x = append(x, xv)
			y = append(y, yv)
		}
	}
	return x, y
}

// Lcg is a tiny deterministic linear congruential generator, used in
// place of math/rand so test noise is reproducible without pulling in
// a seeded *rand.Rand across package boundaries.
type Lcg struct {
	state uint64
}

// NewLcg returns a generator seeded with seed.
func NewLcg(seed uint64) *Lcg {
	return &Lcg{state: seed ^ 0x9e3779b97f4a7c15}
}

// Float64 returns a value in [-1, 1).
func (g *Lcg) Float64() float64 {
	g.state = g.state*6364136223846793005 + 1442695040888963407
	return float64(g.state>>11)/float64(1<<53)*2 - 1
}

// Gauss1DValue evaluates a 1D Gaussian with baseline at x, the same
// parameterization as models.Gauss1D: [amplitude, center, width, baseline].
func Gauss1DValue(params []float64, x float64) float64 {
	amplitude, center, width, baseline := params[0], params[1], params[2], params[3]
	dx := x - center
	return amplitude*math.Exp(-(dx*dx)/(2*width*width)) + baseline
}

// LinearValue evaluates a 1D line a + b*x, the same parameterization as
// models.Linear1D: [a (intercept), b (slope)].
func LinearValue(params []float64, x float64) float64 {
	return params[0] + params[1]*x
}
