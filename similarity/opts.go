package similarity

import (
	"fmt"
	"math"
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/traverse"
)

// Opts controls a similarity computation.  The zero value is usable.
type Opts struct {
	// Weights optionally weights columns (Jaccard and cosine only).  When
	// non-nil it must have one entry per column.
	Weights []float64
	// Parallelism bounds the number of concurrent workers.  0 =
	// runtime.NumCPU().
	Parallelism int
}

func (o *Opts) parallelism() int {
	if o.Parallelism <= 0 {
		return runtime.NumCPU()
	}
	return o.Parallelism
}

func (o *Opts) checkWeights(nCols int) error {
	if o.Weights == nil {
		return nil
	}
	if len(o.Weights) != nCols {
		return errors.E(errors.Invalid, fmt.Sprintf("similarity: %d weights for %d columns", len(o.Weights), nCols))
	}
	for c, w := range o.Weights {
		if !(w >= 0) || math.IsInf(w, 1) {
			return errors.E(errors.Invalid, fmt.Sprintf("similarity: weight %v for column %d", w, c))
		}
	}
	return nil
}

func (o *Opts) rejectWeights(op string) error {
	if o.Weights != nil {
		return errors.E(errors.Invalid, fmt.Sprintf("similarity.%s: column weights are not supported", op))
	}
	return nil
}

func checkShape(aCols, bCols int) error {
	if aCols != bCols {
		return errors.E(errors.Invalid, fmt.Sprintf("similarity: shape mismatch: %d columns vs %d columns", aCols, bCols))
	}
	return nil
}

func weightOf(weights []float64, c int) float64 {
	if weights == nil {
		return 1
	}
	return weights[c]
}

// jobsPerWorker oversubscribes the pool so that the triangular self forms,
// whose early rows carry more work, still balance.
const jobsPerWorker = 8

// forEachRowRange splits [0, n) into contiguous ranges and runs fn on them
// with at most parallelism concurrent calls.
func forEachRowRange(n, parallelism int, fn func(start, end int)) error {
	nJob := parallelism * jobsPerWorker
	if nJob > n {
		nJob = n
	}
	if nJob == 0 {
		return nil
	}
	return traverse.Limit(parallelism).Each(nJob, func(jobIdx int) error {
		startIdx := (jobIdx * n) / nJob
		endIdx := ((jobIdx + 1) * n) / nJob
		fn(startIdx, endIdx)
		return nil
	})
}
