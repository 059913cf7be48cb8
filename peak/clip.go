package peak

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// ChromSizes maps chromosome names to their lengths.
type ChromSizes map[string]int64

// Clip clamps p to [0, length of p.Chrom).  The summit keeps its absolute
// position when it is still inside the clipped peak, and is pinned to the
// nearest boundary otherwise.  A peak lying entirely past the chromosome end
// comes back empty (Start == End).  Clip fails with an errors.NotExist error
// when the chromosome is not in s.
//
// Clip is idempotent.
func (s ChromSizes) Clip(p Peak) (Peak, error) {
	size, ok := s[p.Chrom]
	if !ok {
		return p, errors.E(errors.NotExist, fmt.Sprintf("peak.Clip: unknown chromosome %q", p.Chrom))
	}
	summit := p.AbsSummit()
	if p.Start < 0 {
		p.Start = 0
	}
	if p.End > size {
		p.End = size
	}
	if p.End < p.Start {
		p.End = p.Start
	}
	if summit > p.End {
		summit = p.End
	}
	if summit < p.Start {
		summit = p.Start
	}
	p.Summit = summit - p.Start
	return p, nil
}

// ClipAll flattens merged groups and clips every peak.  Peaks that clip to
// nothing are dropped.
func ClipAll(groups [][]Peak, s ChromSizes) ([]Peak, error) {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	result := make([]Peak, 0, n)
	for _, g := range groups {
		for _, p := range g {
			clipped, err := s.Clip(p)
			if err != nil {
				return nil, err
			}
			if clipped.Len() == 0 {
				log.Debug.Printf("peak.ClipAll: dropping %v, beyond end of %s", p, p.Chrom)
				continue
			}
			result = append(result, clipped)
		}
	}
	return result, nil
}

// ReadChromSizes parses a two-column "chrom<TAB>length" table.
func ReadChromSizes(r io.Reader) (ChromSizes, error) {
	reader := tsv.NewReader(r)
	var row struct {
		Chrom string
		Size  int64
	}
	sizes := make(ChromSizes)
	for line := 1; ; line++ {
		err := reader.Read(&row)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("peak.ReadChromSizes: line %d", line))
		}
		if row.Size <= 0 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peak.ReadChromSizes: line %d: non-positive length %d", line, row.Size))
		}
		if _, dup := sizes[row.Chrom]; dup {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("peak.ReadChromSizes: line %d: duplicate chromosome %q", line, row.Chrom))
		}
		sizes[row.Chrom] = row.Size
	}
	return sizes, nil
}

// ReadChromSizesPath is ReadChromSizes on a (possibly compressed) file.
func ReadChromSizesPath(ctx context.Context, path string) (sizes ChromSizes, err error) {
	var in io.ReadCloser
	if in, err = compress.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if sizes, err = ReadChromSizes(in); err != nil {
		err = errors.E(err, path)
	}
	return
}

// ChromSizesFromSAMHeader extracts reference lengths from a SAM/BAM header.
func ChromSizesFromSAMHeader(h *sam.Header) ChromSizes {
	sizes := make(ChromSizes, len(h.Refs()))
	for _, ref := range h.Refs() {
		sizes[ref.Name()] = int64(ref.Len())
	}
	return sizes
}

// ReadChromSizesFromBAMPath reads the header of a BAM file and returns its
// reference lengths.
func ReadChromSizesFromBAMPath(ctx context.Context, path string) (sizes ChromSizes, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := in.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, errors.E(errors.Invalid, err, path)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return ChromSizesFromSAMHeader(reader.Header()), nil
}
