package models

// Cauchy2DElliptic implements CAUCHY_2D_ELLIPTIC:
// v(x,y) = amplitude / (1 + (dx/widthX)^2 + (dy/widthY)^2) + offset.
// Parameters: [amplitude, centerX, centerY, widthX, widthY, offset].
// userInfo holds two consecutive nPoints-length grids: x then y.
type Cauchy2DElliptic struct{}

func (Cauchy2DElliptic) ParameterCount() int { return 6 }

func (Cauchy2DElliptic) Evaluate(parameters []float64, nPoints, _ int, userInfo []byte, values, derivatives []float64) {
	amplitude, cx, cy, wx, wy, offset := parameters[0], parameters[1], parameters[2], parameters[3], parameters[4], parameters[5]
	x, y := decodeXY(userInfo, nPoints)

	for p := 0; p < nPoints; p++ {
		dx, dy := x[p]-cx, y[p]-cy
		u := 1 + (dx*dx)/(wx*wx) + (dy*dy)/(wy*wy)
		values[p] = amplitude/u + offset

		uSq := u * u
		derivatives[0*nPoints+p] = 1 / u
		derivatives[1*nPoints+p] = 2 * amplitude * dx / (wx * wx * uSq)
		derivatives[2*nPoints+p] = 2 * amplitude * dy / (wy * wy * uSq)
		derivatives[3*nPoints+p] = 2 * amplitude * dx * dx / (wx * wx * wx * uSq)
		derivatives[4*nPoints+p] = 2 * amplitude * dy * dy / (wy * wy * wy * uSq)
		derivatives[5*nPoints+p] = 1
	}
}
