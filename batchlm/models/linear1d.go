package models

// Linear1D implements LINEAR_1D: v(x) = a + b*x. Parameters: [a, b].
// userInfo holds the nPoints-length x grid.
type Linear1D struct{}

func (Linear1D) ParameterCount() int { return 2 }

func (Linear1D) Evaluate(parameters []float64, nPoints, _ int, userInfo []byte, values, derivatives []float64) {
	a, b := parameters[0], parameters[1]
	x := decodeGrid(userInfo, nPoints)
	for p := 0; p < nPoints; p++ {
		values[p] = a + b*x[p]
		derivatives[0*nPoints+p] = 1
		derivatives[1*nPoints+p] = x[p]
	}
}
