package similarity

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"gonum.org/v1/gonum/stat"
)

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
func LinearRegression(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, errors.E(errors.Invalid, fmt.Sprintf("similarity.LinearRegression: %d x values, %d y values", len(x), len(y)))
	}
	if len(x) < 2 {
		return 0, 0, errors.E(errors.Invalid, fmt.Sprintf("similarity.LinearRegression: %d point(s)", len(x)))
	}
	if stat.Variance(x, nil) == 0 {
		return 0, 0, errors.E(errors.Invalid, "similarity.LinearRegression: x is constant")
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	return slope, intercept, nil
}

// RegressJaccard regresses the off-diagonal Jaccard indices jm[i][j], i < j,
// on the index expected between two cells sampled independently at coverages
// coverage[i] and coverage[j], 1 / (1/c_i + 1/c_j - 1).  The residuals of the
// fit separate cell similarity from sequencing depth.
func RegressJaccard(jm *Matrix, coverage []float64) (slope, intercept float64, err error) {
	if jm.NRow != jm.NCol || jm.NRow != len(coverage) {
		return 0, 0, errors.E(errors.Invalid,
			fmt.Sprintf("similarity.RegressJaccard: %d x %d matrix, %d coverages", jm.NRow, jm.NCol, len(coverage)))
	}
	n := len(coverage)
	for i, c := range coverage {
		if !(c > 0) {
			return 0, 0, errors.E(errors.Invalid, fmt.Sprintf("similarity.RegressJaccard: non-positive coverage %v of row %d", c, i))
		}
	}
	x := make([]float64, 0, n*(n-1)/2)
	y := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			x = append(x, 1/(1/coverage[i]+1/coverage[j]-1))
			y = append(y, jm.At(i, j))
		}
	}
	return LinearRegression(x, y)
}
