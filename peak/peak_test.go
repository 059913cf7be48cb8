package peak

import (
	"math"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
)

func TestValidate(t *testing.T) {
	good := Peak{Chrom: "chr1", Start: 10, End: 20, Summit: 10, Score: NoScore}
	expect.NoError(t, good.Validate())

	tests := []func(p *Peak){
		func(p *Peak) { p.Chrom = "" },
		func(p *Peak) { p.Start = -1 },
		func(p *Peak) { p.End = p.Start },
		func(p *Peak) { p.Summit = 11 },
		func(p *Peak) { p.Summit = -1 },
		func(p *Peak) { p.Score = 1001 },
		func(p *Peak) { p.Strand = 'x' },
	}
	for i, mutate := range tests {
		p := good
		mutate(&p)
		err := p.Validate()
		expect.True(t, errors.Is(errors.Invalid, err), "case %d", i)
	}
}

func TestFromCall(t *testing.T) {
	p, err := FromCall("chr7", Call{
		Start:      1000,
		End:        1500,
		AbsSummit:  1234,
		FoldChange: 3.5,
		Score:      42.7,
		PScore:     12.5,
		QScore:     9.25,
	})
	expect.NoError(t, err)
	expect.EQ(t, p, Peak{
		Chrom:       "chr7",
		Start:       1000,
		End:         1500,
		Summit:      234,
		Score:       427,
		Strand:      '.',
		SignalValue: 3.5,
		PValue:      12.5,
		QValue:      9.25,
	})

	p, err = FromCall("chr7", Call{Start: 0, End: 10, AbsSummit: 5, Score: 500})
	expect.NoError(t, err)
	expect.EQ(t, p.Score, int32(MaxScore))

	p, err = FromCall("chr7", Call{Start: 0, End: 10, AbsSummit: 5, Score: math.NaN()})
	expect.NoError(t, err)
	expect.EQ(t, p.Score, int32(0))

	_, err = FromCall("chr7", Call{Start: 10, End: 20, AbsSummit: 5})
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestPeakOverlaps(t *testing.T) {
	a := Peak{Chrom: "chr1", Start: 10, End: 20}
	b := Peak{Chrom: "chr1", Start: 20, End: 30}
	c := Peak{Chrom: "chr1", Start: 19, End: 30}
	expect.False(t, a.Overlaps(&b))
	expect.True(t, a.Overlaps(&c))

	sizes := ChromSizes{"chr1": 1000}
	clipped, err := sizes.Clip(Peak{Chrom: "chr1", Start: 1200, End: 1300})
	expect.NoError(t, err)
	wide := Peak{Chrom: "chr1", Start: 1100, End: 1300}
	expect.False(t, clipped.Overlaps(&wide))
	expect.False(t, wide.Overlaps(&clipped))
	empty := Peak{Chrom: "chr1", Start: 15, End: 15}
	expect.False(t, a.Overlaps(&empty))
	expect.False(t, empty.Overlaps(&a))
	expect.EQ(t, a.String(), "chr1:10-20")
	expect.EQ(t, a.StrandOrDot(), byte('.'))
}
