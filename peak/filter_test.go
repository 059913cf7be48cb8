package peak

import (
	"testing"

	"github.com/grailbio/atac/interval"
	"github.com/grailbio/testutil/expect"
)

func TestFilterBlacklist(t *testing.T) {
	black, err := interval.NewIndex([]interval.Entry{
		{Region: interval.Region{Chrom: "chr1", Start: 100, End: 200}},
	})
	expect.NoError(t, err)
	peaks := []Peak{
		{Chrom: "chr1", Start: 0, End: 100, Name: "before"},
		{Chrom: "chr1", Start: 150, End: 160, Name: "inside"},
		{Chrom: "chr1", Start: 199, End: 300, Name: "straddle"},
		{Chrom: "chr2", Start: 150, End: 160, Name: "elsewhere"},
	}
	expect.EQ(t, peakNames(FilterBlacklist(peaks, black)), []string{"before", "elsewhere"})
	expect.EQ(t, len(FilterBlacklist(peaks, nil)), len(peaks))
}

func TestFindReproducible(t *testing.T) {
	peaks := []Peak{
		{Chrom: "chr1", Start: 0, End: 100, Name: "both"},
		{Chrom: "chr1", Start: 500, End: 600, Name: "one"},
		{Chrom: "chr1", Start: 1000, End: 1100, Name: "black"},
	}
	replicates := [][]Peak{
		{{Chrom: "chr1", Start: 50, End: 60}, {Chrom: "chr1", Start: 550, End: 560}, {Chrom: "chr1", Start: 1000, End: 1001}},
		{{Chrom: "chr1", Start: 99, End: 150}, {Chrom: "chr1", Start: 1050, End: 1060}},
	}
	black, err := interval.NewIndex([]interval.Entry{
		{Region: interval.Region{Chrom: "chr1", Start: 1090, End: 1200}},
	})
	expect.NoError(t, err)
	got, err := FindReproducible(peaks, replicates, black)
	expect.NoError(t, err)
	expect.EQ(t, peakNames(got), []string{"both"})

	got, err = FindReproducible(peaks, replicates, nil)
	expect.NoError(t, err)
	expect.EQ(t, peakNames(got), []string{"both", "black"})
}

func TestMergeSamples(t *testing.T) {
	samples := map[string][]Peak{
		"s2": {
			np("chr1", 100, 200, "s2a", 1, 10, 1, 50),
			np("chr2", 0, 100, "s2b", 1, 3, 1, 50),
		},
		"s1": {
			np("chr1", 120, 220, "s1a", 1, 5, 1, 50),
			np("chr1", 5000, 5100, "s1b", 1, 7, 1, 50),
		},
	}
	sizes := ChromSizes{"chr1": 10000, "chr2": 60}
	u, err := MergeSamples(samples, sizes, 20, DefaultMergeOpts)
	expect.NoError(t, err)
	expect.EQ(t, u.Samples, []string{"s1", "s2"})
	// s1's chr1 peaks come first, so chr1 is the first group.
	expect.EQ(t, peakNames(u.Peaks), []string{"s2a", "s1b", "s2b"})
	expect.EQ(t, u.Peaks[2].End, int64(60))
	expect.EQ(t, u.Present, [][]bool{
		{true, true, false},
		{true, false, true},
	})
}
