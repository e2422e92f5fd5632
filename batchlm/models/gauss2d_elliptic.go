package models

import "math"

// Gauss2DElliptic implements GAUSS_2D_ELLIPTIC: an axis-aligned elliptic
// Gaussian with independent x/y widths.
// v(x,y) = amplitude*exp(-((x-cx)^2/(2*wx^2) + (y-cy)^2/(2*wy^2))) + offset.
// Parameters: [amplitude, centerX, centerY, widthX, widthY, offset].
// userInfo holds two consecutive nPoints-length grids: x then y.
type Gauss2DElliptic struct{}

func (Gauss2DElliptic) ParameterCount() int { return 6 }

func (Gauss2DElliptic) Evaluate(parameters []float64, nPoints, _ int, userInfo []byte, values, derivatives []float64) {
	amplitude, cx, cy, wx, wy, offset := parameters[0], parameters[1], parameters[2], parameters[3], parameters[4], parameters[5]
	x, y := decodeXY(userInfo, nPoints)
	for p := 0; p < nPoints; p++ {
		dx, dy := x[p]-cx, y[p]-cy
		termX := (dx * dx) / (2 * wx * wx)
		termY := (dy * dy) / (2 * wy * wy)
		exponent := math.Exp(-(termX + termY))
		values[p] = amplitude*exponent + offset

		derivatives[0*nPoints+p] = exponent
		derivatives[1*nPoints+p] = amplitude * exponent * dx / (wx * wx)
		derivatives[2*nPoints+p] = amplitude * exponent * dy / (wy * wy)
		derivatives[3*nPoints+p] = amplitude * exponent * (dx * dx) / (wx * wx * wx)
		derivatives[4*nPoints+p] = amplitude * exponent * (dy * dy) / (wy * wy * wy)
		derivatives[5*nPoints+p] = 1
	}
}
