package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/grailbio/atac/encoding/narrowpeak"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
)

const (
	pooledPeaks = `chr1	100	200	p1	100	.	5	10	2	50
chr1	300	400	p2	100	.	5	9	2	50
chr1	500	600	p3	100	.	5	8	2	50
chr2	0	50	p4	100	.	5	7	2	25
`
	rep1Peaks = `chr1	150	250	r1a	100	.	5	10	2	50
chr1	350	360	r1b	100	.	5	10	2	5
chr1	590	700	r1c	100	.	5	10	2	50
chr2	40	45	r1d	100	.	5	10	2	2
`
	rep2Peaks = `chr1	0	101	r2a	100	.	5	10	2	50
chr1	400	450	r2b	100	.	5	10	2	5
chr1	500	510	r2c	100	.	5	10	2	5
chr2	10	20	r2d	100	.	5	10	2	5
`
	blacklistBED = "chr1\t550\t560\n"
)

func writeFile(t *testing.T, path, data string) {
	expect.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
}

func TestRun(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := vcontext.Background()

	pooled := filepath.Join(tempDir, "pooled.narrowPeak")
	rep1 := filepath.Join(tempDir, "rep1.narrowPeak")
	rep2 := filepath.Join(tempDir, "rep2.narrowPeak")
	black := filepath.Join(tempDir, "black.bed")
	writeFile(t, pooled, pooledPeaks)
	writeFile(t, rep1, rep1Peaks)
	writeFile(t, rep2, rep2Peaks)
	writeFile(t, black, blacklistBED)

	// p2 is missed by rep2 since [400, 450) only touches [300, 400), and p3
	// hits the blacklist.
	out := filepath.Join(tempDir, "out.narrowPeak.gz")
	n, err := run(ctx, pooled, []string{rep1, rep2}, black, out)
	expect.NoError(t, err)
	expect.EQ(t, n, 2)
	got, err := narrowpeak.ReadPath(ctx, out, true)
	expect.NoError(t, err)
	expect.EQ(t, len(got), 2)
	expect.EQ(t, got[0].String(), "chr1:100-200")
	expect.EQ(t, got[1].String(), "chr2:0-50")

	// Without the blacklist p3 survives.
	out = filepath.Join(tempDir, "noblack.narrowPeak")
	n, err = run(ctx, pooled, []string{rep1, rep2}, "", out)
	expect.NoError(t, err)
	expect.EQ(t, n, 3)

	_, err = run(ctx, filepath.Join(tempDir, "missing.narrowPeak"), []string{rep1}, "", out)
	expect.NotNil(t, err)
}
