package peak

import (
	"fmt"
	"math"

	"github.com/grailbio/atac/interval"
	"github.com/grailbio/base/errors"
)

// MaxScore is the upper bound of the display score.
const MaxScore = 1000

// NoScore marks an absent display score.
const NoScore = -1

// Peak is a scored genomic interval in narrowPeak terms.  Coordinates are
// 0-based half-open; Summit is the offset of the point of maximal signal from
// Start.
//
// Peaks are plain values.  Merge and Clip return new values instead of
// modifying the ones they were given.
type Peak struct {
	Chrom      string
	Start, End int64
	// Summit is in [0, End-Start].
	Summit int64
	// Name is empty when absent.
	Name string
	// Score is the display score in [0, MaxScore], or NoScore.  It plays no
	// part in ranking.
	Score int32
	// Strand is '+', '-' or '.'; the zero value is read as '.'.
	Strand      byte
	SignalValue float64
	// PValue is the ranking key used by Merge; larger is more confident.
	PValue float64
	QValue float64
}

// Len returns End - Start.
func (p *Peak) Len() int64 { return p.End - p.Start }

// AbsSummit returns the chromosome coordinate of the summit.
func (p *Peak) AbsSummit() int64 { return p.Start + p.Summit }

// Region returns the peak's coordinates.
func (p *Peak) Region() interval.Region {
	return interval.Region{Chrom: p.Chrom, Start: p.Start, End: p.End}
}

// Overlaps returns whether p and o share at least one coordinate.  An empty
// peak, such as one clipped past the chromosome end, overlaps nothing.
func (p *Peak) Overlaps(o *Peak) bool {
	return p.Region().Overlaps(o.Region())
}

// StrandOrDot returns the strand, mapping the zero value to '.'.
func (p *Peak) StrandOrDot() byte {
	if p.Strand == 0 {
		return '.'
	}
	return p.Strand
}

// String renders the peak as "chrom:start-end".
func (p Peak) String() string {
	return p.Region().String()
}

// Validate checks the record-level invariants.  It returns an
// errors.Invalid error describing the first violation.
func (p *Peak) Validate() error {
	switch {
	case p.Chrom == "":
		return errors.E(errors.Invalid, "peak: empty chromosome")
	case p.Start < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("peak %v: negative start", p))
	case p.End <= p.Start:
		return errors.E(errors.Invalid, fmt.Sprintf("peak %v: end must be greater than start", p))
	case p.Summit < 0 || p.Summit > p.End-p.Start:
		return errors.E(errors.Invalid, fmt.Sprintf("peak %v: summit offset %d outside [0, %d]", p, p.Summit, p.End-p.Start))
	case p.Score < NoScore || p.Score > MaxScore:
		return errors.E(errors.Invalid, fmt.Sprintf("peak %v: score %d outside [0, %d]", p, p.Score, MaxScore))
	}
	switch p.Strand {
	case 0, '.', '+', '-':
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("peak %v: invalid strand %q", p, p.Strand))
	}
	return nil
}

// Call is the record produced by an external peak caller: absolute
// coordinates plus the caller's statistics.
type Call struct {
	Start, End int64
	// AbsSummit is the chromosome coordinate of the summit.
	AbsSummit  int64
	FoldChange float64
	Score      float64
	PScore     float64
	QScore     float64
}

// FromCall converts a peak-caller record on chrom into a Peak.  The display
// score is ten times the caller's score, capped at MaxScore.
func FromCall(chrom string, c Call) (Peak, error) {
	score := math.Min(MaxScore, math.Max(0, c.Score*10))
	if math.IsNaN(c.Score) {
		score = 0
	}
	p := Peak{
		Chrom:       chrom,
		Start:       c.Start,
		End:         c.End,
		Summit:      c.AbsSummit - c.Start,
		Score:       int32(score),
		Strand:      '.',
		SignalValue: c.FoldChange,
		PValue:      c.PScore,
		QValue:      c.QScore,
	}
	if err := p.Validate(); err != nil {
		return Peak{}, err
	}
	return p, nil
}
