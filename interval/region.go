package interval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// PosMax is the end coordinate used for a region string with no positional
// restriction.
const PosMax = math.MaxInt64

// Region is a 0-based half-open interval [Start, End) on a named chromosome.
type Region struct {
	Chrom string
	Start int64
	End   int64
}

// Len returns the number of bases covered by the region.
func (r Region) Len() int64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Overlaps returns whether r and o share at least one coordinate.  Touching
// regions ([0, 5) and [5, 10)) do not overlap, and an empty region overlaps
// nothing.
func (r Region) Overlaps(o Region) bool {
	return r.Chrom == o.Chrom && r.Start < r.End && o.Start < o.End &&
		r.Start < o.End && o.Start < r.End
}

// String renders the region as "chrom:start-end", the format accepted by
// ParseRegion.
func (r Region) String() string {
	return r.Chrom + ":" + strconv.FormatInt(r.Start, 10) + "-" + strconv.FormatInt(r.End, 10)
}

// ParseRegion parses a region string of one of the forms
//   [chrom]:[0-based start]-[end]
//   [chrom]:[0-based pos]
//   [chrom]
// The second form denotes the single base [pos, pos+1), and the last form
// the interval [0, PosMax).
func ParseRegion(region string) (result Region, err error) {
	if len(region) == 0 {
		err = errors.E(errors.Invalid, "interval.ParseRegion: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.Chrom = region
		result.End = PosMax
		return
	}
	if colonPos == 0 {
		err = errors.E(errors.Invalid, fmt.Sprintf("interval.ParseRegion: empty chromosome in %q", region))
		return
	}
	result.Chrom = region[:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos int64
		if pos, err = strconv.ParseInt(rangeStr, 10, 64); err != nil {
			err = errors.E(errors.Invalid, err, fmt.Sprintf("interval.ParseRegion: bad position in %q", region))
			return
		}
		if pos < 0 || pos == PosMax {
			err = errors.E(errors.Invalid, fmt.Sprintf("interval.ParseRegion: position %v out of range", rangeStr))
			return
		}
		result.Start = pos
		result.End = pos + 1
		return
	}
	if result.Start, err = strconv.ParseInt(rangeStr[:dashPos], 10, 64); err != nil {
		err = errors.E(errors.Invalid, err, fmt.Sprintf("interval.ParseRegion: bad start in %q", region))
		return
	}
	if result.End, err = strconv.ParseInt(rangeStr[dashPos+1:], 10, 64); err != nil {
		err = errors.E(errors.Invalid, err, fmt.Sprintf("interval.ParseRegion: bad end in %q", region))
		return
	}
	if result.Start < 0 || result.End <= result.Start {
		err = errors.E(errors.Invalid, fmt.Sprintf("interval.ParseRegion: invalid range string %v", rangeStr))
	}
	return
}
