package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
)

// GetTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func GetTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		// These simple loops beat the standard library string-split functions
		// for the handful of columns a BED line carries.
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// IsHeaderLine returns whether a BED-family line is a comment or a
// track/browser declaration.
func IsHeaderLine(line []byte) bool {
	return bytes.HasPrefix(line, []byte("#")) ||
		bytes.HasPrefix(line, []byte("track")) ||
		bytes.HasPrefix(line, []byte("browser"))
}

// ReadBED loads the first three columns of every line of a BED file.  The
// input does not need to be sorted; overlapping intervals are kept as
// separate regions.
func ReadBED(reader io.Reader) ([]Region, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var (
		tokens  [3][]byte
		regions []Region
		lineIdx int
	)
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := GetTokens(tokens[:], curLine)
		if nToken == 0 || IsHeaderLine(tokens[0]) {
			continue
		}
		if nToken != 3 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.ReadBED: line %d has fewer tokens than expected", lineIdx))
		}
		start, err := strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 64)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("interval.ReadBED: line %d", lineIdx))
		}
		end, err := strconv.ParseInt(gunsafe.BytesToString(tokens[2]), 10, 64)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, fmt.Sprintf("interval.ReadBED: line %d", lineIdx))
		}
		if start < 0 || end < start {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("interval.ReadBED: invalid coordinate pair on line %d", lineIdx))
		}
		// The chromosome name must be copied: it points into the scanner's
		// buffer, which is overwritten by the next Scan.
		regions = append(regions, Region{Chrom: string(tokens[0]), Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

// NewIndexFromBED builds an Index of the regions in a BED stream.  Each
// entry's payload is its position in the file, counting only data lines.
func NewIndexFromBED(reader io.Reader) (*Index, error) {
	regions, err := ReadBED(reader)
	if err != nil {
		return nil, err
	}
	b := NewBuilder()
	var totBases int64
	for i, r := range regions {
		if err := b.Add(r, i); err != nil {
			return nil, err
		}
		totBases += r.Len()
	}
	log.Printf("BED loaded, %d region(s), %d base(s).", len(regions), totBases)
	return b.Build(), nil
}

// NewIndexFromBEDPath is a wrapper for NewIndexFromBED that takes a path
// instead of an io.Reader.  Gzip and zstd input is detected automatically.
func NewIndexFromBEDPath(ctx context.Context, path string) (idx *Index, err error) {
	var in io.ReadCloser
	if in, err = compress.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return NewIndexFromBED(in)
}
