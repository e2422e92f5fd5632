package models

import "math"

// Gauss1D implements GAUSS_1D:
// v(x) = amplitude*exp(-(x-center)^2/(2*width^2)) + offset.
// Parameters: [amplitude, center, width, offset]. userInfo holds the
// nPoints-length x grid.
type Gauss1D struct{}

func (Gauss1D) ParameterCount() int { return 4 }

func (Gauss1D) Evaluate(parameters []float64, nPoints, _ int, userInfo []byte, values, derivatives []float64) {
	amplitude, center, width, offset := parameters[0], parameters[1], parameters[2], parameters[3]
	x := decodeGrid(userInfo, nPoints)
	for p := 0; p < nPoints; p++ {
		dx := x[p] - center
		exponent := math.Exp(-(dx * dx) / (2 * width * width))
		values[p] = amplitude*exponent + offset

		derivatives[0*nPoints+p] = exponent
		derivatives[1*nPoints+p] = amplitude * exponent * dx / (width * width)
		derivatives[2*nPoints+p] = amplitude * exponent * (dx * dx) / (width * width * width)
		derivatives[3*nPoints+p] = 1
	}
}
