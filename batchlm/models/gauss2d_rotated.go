package models

import "math"

// Gauss2DRotated implements GAUSS_2D_ROTATED: an elliptic Gaussian whose
// major/minor axes are rotated by rotationAngle (radians) about the
// center. Parameters: [amplitude, centerX, centerY, widthX, widthY,
// offset, rotationAngle]. userInfo holds two consecutive nPoints-length
// grids: x then y.
type Gauss2DRotated struct{}

func (Gauss2DRotated) ParameterCount() int { return 7 }

func (Gauss2DRotated) Evaluate(parameters []float64, nPoints, _ int, userInfo []byte, values, derivatives []float64) {
	amplitude, cx, cy, wx, wy, offset, theta := parameters[0], parameters[1], parameters[2], parameters[3], parameters[4], parameters[5], parameters[6]
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	x, y := decodeXY(userInfo, nPoints)

	for p := 0; p < nPoints; p++ {
		dx, dy := x[p]-cx, y[p]-cy
		dxr := dx*cosT + dy*sinT
		dyr := -dx*sinT + dy*cosT

		arg := (dxr*dxr)/(2*wx*wx) + (dyr*dyr)/(2*wy*wy)
		exponent := math.Exp(-arg)
		values[p] = amplitude*exponent + offset

		derivatives[0*nPoints+p] = exponent
		derivatives[1*nPoints+p] = amplitude * exponent * (dxr*cosT/(wx*wx) - dyr*sinT/(wy*wy))
		derivatives[2*nPoints+p] = amplitude * exponent * (dxr*sinT/(wx*wx) + dyr*cosT/(wy*wy))
		derivatives[3*nPoints+p] = amplitude * exponent * (dxr * dxr) / (wx * wx * wx)
		derivatives[4*nPoints+p] = amplitude * exponent * (dyr * dyr) / (wy * wy * wy)
		derivatives[5*nPoints+p] = 1
		derivatives[6*nPoints+p] = -amplitude * exponent * dxr * dyr * (1/(wx*wx) - 1/(wy*wy))
	}
}
