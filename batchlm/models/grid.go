// Package models provides the built-in curve models (spec §4.1):
// GAUSS_1D, GAUSS_2D, GAUSS_2D_ELLIPTIC, GAUSS_2D_ROTATED,
// CAUCHY_2D_ELLIPTIC and LINEAR_1D. Importing this package for its side
// effect registers every model with the batchlm package's registry,
// mirroring how sim/latency and sim/kv register their implementations
// into the teacher's root sim package.
package models

import (
	"encoding/binary"
	"math"
)

// decodeGrid interprets userInfo as a little-endian float64 grid. Models
// that need one coordinate axis read the first nPoints entries; models
// that need two axes (x, y) read two consecutive nPoints-length blocks.
// The engine passes the whole userInfo to every fit and the built-in
// models ignore globalFitIndex, so they always read from the start of
// userInfo: every fit shares one grid, and per-fit grids are not read.
func decodeGrid(userInfo []byte, nPoints int) []float64 {
	grid := make([]float64, nPoints)
	for i := 0; i < nPoints; i++ {
		bits := binary.LittleEndian.Uint64(userInfo[i*8 : i*8+8])
		grid[i] = math.Float64frombits(bits)
	}
	return grid
}

// decodeXY splits userInfo into x and y coordinate grids, each nPoints
// long, laid out as two consecutive little-endian float64 blocks.
func decodeXY(userInfo []byte, nPoints int) (x, y []float64) {
	x = decodeGrid(userInfo, nPoints)
	y = decodeGrid(userInfo[nPoints*8:], nPoints)
	return x, y
}

// EncodeGrid packs x into the little-endian byte layout GAUSS_1D and
// LINEAR_1D read back out of FitRequest.UserInfo.
func EncodeGrid(x []float64) []byte {
	buf := make([]byte, len(x)*8)
	for i, v := range x {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], math.Float64bits(v))
	}
	return buf
}

// EncodeXY packs x and y into the little-endian byte layout the 2D models
// read back out of FitRequest.UserInfo (x block followed by y block).
func EncodeXY(x, y []float64) []byte {
	return append(EncodeGrid(x), EncodeGrid(y)...)
}
