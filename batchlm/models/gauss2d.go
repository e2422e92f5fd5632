package models

import "math"

// Gauss2D implements GAUSS_2D: a symmetric (single-width) 2D Gaussian.
// v(x,y) = amplitude*exp(-((x-cx)^2+(y-cy)^2)/(2*width^2)) + offset.
// Parameters: [amplitude, centerX, centerY, width, offset]. userInfo holds
// two consecutive nPoints-length grids: x then y.
type Gauss2D struct{}

func (Gauss2D) ParameterCount() int { return 5 }

func (Gauss2D) Evaluate(parameters []float64, nPoints, _ int, userInfo []byte, values, derivatives []float64) {
	amplitude, cx, cy, width, offset := parameters[0], parameters[1], parameters[2], parameters[3], parameters[4]
	x, y := decodeXY(userInfo, nPoints)
	for p := 0; p < nPoints; p++ {
		dx, dy := x[p]-cx, y[p]-cy
		r2 := dx*dx + dy*dy
		exponent := math.Exp(-r2 / (2 * width * width))
		values[p] = amplitude*exponent + offset

		derivatives[0*nPoints+p] = exponent
		derivatives[1*nPoints+p] = amplitude * exponent * dx / (width * width)
		derivatives[2*nPoints+p] = amplitude * exponent * dy / (width * width)
		derivatives[3*nPoints+p] = amplitude * exponent * r2 / (width * width * width)
		derivatives[4*nPoints+p] = 1
	}
}
