package peak

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/biogo/store/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// MergeOpts controls Merge.  The zero value is usable.
type MergeOpts struct {
	// NaN orders NaN p-values.
	NaN NaNPolicy
	// Parallelism bounds the number of chromosome groups processed at once.
	// 0 = runtime.NumCPU().
	Parallelism int
	// NaiveLimit is the largest group handled by the quadratic scan; larger
	// groups use the sort-and-sweep path, which returns the same result.
	// 0 = DefaultNaiveLimit; negative values force the sweep.
	NaiveLimit int
}

// DefaultNaiveLimit is the default MergeOpts.NaiveLimit.
const DefaultNaiveLimit = 256

// DefaultMergeOpts is the default set of options.
var DefaultMergeOpts = MergeOpts{
	NaN:         NaNLowest,
	Parallelism: 0,
	NaiveLimit:  DefaultNaiveLimit,
}

// recenter rewrites p as the window [summit - halfWidth, summit + halfWidth]
// around its summit, truncated at 0.
func recenter(p Peak, halfWidth int64) Peak {
	summit := p.AbsSummit()
	p.Start = summit - halfWidth
	if p.Start < 0 {
		p.Start = 0
	}
	p.End = summit + halfWidth + 1
	p.Summit = summit - p.Start
	return p
}

// Merge consolidates candidate peaks into non-overlapping sets, one per
// chromosome.
//
// Every peak is first recentered on its summit with a window of
// 2*halfWidth+1 bases.  Then, within each chromosome, the remaining peak with
// the highest PValue is kept and every remaining peak overlapping it is
// discarded, until no peaks are left.  Among equal p-values the peak that
// came first in the input wins.  Each group lists its peaks in the order they
// were kept.
//
// Groups currently come back in order of first appearance of their
// chromosome, but callers should not depend on the group order.  The input
// slice is not modified.
func Merge(peaks []Peak, halfWidth int64, opts MergeOpts) ([][]Peak, error) {
	if halfWidth < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("peak.Merge: negative half width %d", halfWidth))
	}
	var (
		groupIdx = make(map[string]int)
		groups   [][]Peak
	)
	for i := range peaks {
		p := &peaks[i]
		if err := p.Validate(); err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("peak.Merge: input peak %d", i))
		}
		if opts.NaN == NaNReject && math.IsNaN(p.PValue) {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peak.Merge: input peak %d (%v) has a NaN p-value", i, p))
		}
		if p.AbsSummit() > math.MaxInt64-halfWidth-1 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peak.Merge: input peak %d (%v) window overflows", i, p))
		}
		g, ok := groupIdx[p.Chrom]
		if !ok {
			g = len(groups)
			groupIdx[p.Chrom] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], recenter(*p, halfWidth))
	}

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	naiveLimit := opts.NaiveLimit
	if naiveLimit == 0 {
		naiveLimit = DefaultNaiveLimit
	}
	result := make([][]Peak, len(groups))
	err := traverse.Limit(parallelism).Each(len(groups), func(i int) error {
		if len(groups[i]) <= naiveLimit {
			result[i] = iterativeMerge(groups[i], opts.NaN)
		} else {
			result[i] = sweepMerge(groups[i], opts.NaN)
		}
		if log.At(log.Debug) {
			log.Debug.Printf("peak.Merge: %s: %d candidates, %d kept", groups[i][0].Chrom, len(groups[i]), len(result[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	nKept := 0
	for _, g := range result {
		nKept += len(g)
	}
	log.Printf("peak.Merge: %d peaks in %d chromosome(s) merged into %d", len(peaks), len(groups), nKept)
	return result, nil
}

// iterativeMerge is the direct O(n^2) form of the greedy selection.  It
// consumes peaks.
func iterativeMerge(peaks []Peak, nan NaNPolicy) []Peak {
	var result []Peak
	for len(peaks) > 0 {
		best := 0
		for i := 1; i < len(peaks); i++ {
			if nan.less(peaks[best].PValue, peaks[i].PValue) {
				best = i
			}
		}
		winner := peaks[best]
		remaining := peaks[:0]
		for i := range peaks {
			if i != best && !peaks[i].Overlaps(&winner) {
				remaining = append(remaining, peaks[i])
			}
		}
		peaks = remaining
		result = append(result, winner)
	}
	return result
}

// pick is a kept peak in the sweep's interval tree.
type pick struct {
	start, end int
	id         uintptr
}

func (p pick) Overlap(b interval.IntRange) bool { return p.end > b.Start && p.start < b.End }
func (p pick) ID() uintptr                      { return p.id }
func (p pick) Range() interval.IntRange         { return interval.IntRange{Start: p.start, End: p.end} }

type window struct {
	start, end int
}

func (w window) Overlap(b interval.IntRange) bool { return w.end > b.Start && w.start < b.End }

// sweepMerge visits peaks from best to worst and keeps each one that does not
// overlap an earlier keeper.  A peak is discarded by iterativeMerge exactly
// when it overlaps a keeper ranked above it, so both functions agree,
// including on ties.  Runs in O(n log n).
func sweepMerge(peaks []Peak, nan NaNPolicy) []Peak {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return nan.less(peaks[order[j]].PValue, peaks[order[i]].PValue)
	})
	var (
		kept   interval.IntTree
		result []Peak
	)
	for _, i := range order {
		p := &peaks[i]
		w := window{start: int(p.Start), end: int(p.End)}
		if kept.DoMatching(func(interval.IntInterface) bool { return true }, w) {
			continue
		}
		if err := kept.Insert(pick{start: w.start, end: w.end, id: uintptr(i)}, false); err != nil {
			// Recentered windows are never inverted.
			panic(err)
		}
		result = append(result, *p)
	}
	return result
}
