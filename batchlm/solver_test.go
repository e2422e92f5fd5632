package batchlm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGaussJordanSolvesWellConditionedSystem(t *testing.T) {
	// [2 1 | 5]   solves to x=2, y=1
	// [1 3 | 5]
	augmented := mat.NewDense(2, 3, []float64{2, 1, 5, 1, 3, 5})
	if singular := gaussJordan(augmented, 2); singular {
		t.Fatal("gaussJordan reported singular for a well-conditioned system")
	}
	testutilFloat64Equal(t, "x", 2, augmented.At(0, 2), 1e-9)
	testutilFloat64Equal(t, "y", 1, augmented.At(1, 2), 1e-9)
}

func TestGaussJordanDetectsSingularMatrix(t *testing.T) {
	// second row is a multiple of the first: no unique solution.
	augmented := mat.NewDense(2, 3, []float64{1, 2, 3, 2, 4, 6})
	if singular := gaussJordan(augmented, 2); !singular {
		t.Fatal("gaussJordan did not detect a singular matrix")
	}
}

func TestGaussJordanRequiresPartialPivoting(t *testing.T) {
	// a zero in the pivot position with a non-zero entry below it must not
	// be reported as singular: partial pivoting should swap rows first.
	augmented := mat.NewDense(2, 3, []float64{0, 1, 3, 1, 1, 4})
	if singular := gaussJordan(augmented, 2); singular {
		t.Fatal("gaussJordan reported singular when a row swap would have resolved a zero pivot")
	}
	testutilFloat64Equal(t, "x", 1, augmented.At(0, 2), 1e-9)
	testutilFloat64Equal(t, "y", 3, augmented.At(1, 2), 1e-9)
}

func testutilFloat64Equal(t *testing.T, name string, want, got, tol float64) {
	t.Helper()
	if math.Abs(want-got) > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
