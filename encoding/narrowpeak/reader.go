package narrowpeak

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/atac/interval"
	"github.com/grailbio/atac/peak"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	pkgerrors "github.com/pkg/errors"
)

// NumColumns is the number of columns in a narrowPeak line.
const NumColumns = 10

// Reader parses narrowPeak records.  A malformed line produces an error for
// that line only; the next Read continues with the following line.
type Reader struct {
	scanner *bufio.Scanner
	lineIdx int
	tokens  [NumColumns + 1][]byte
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{scanner: scanner}
}

// Line returns the 1-based number of the line most recently read.
func (r *Reader) Line() int { return r.lineIdx }

// Read returns the next record, or io.EOF after the last one.  Blank,
// comment, track and browser lines are skipped.
func (r *Reader) Read() (peak.Peak, error) {
	for r.scanner.Scan() {
		r.lineIdx++
		nToken := interval.GetTokens(r.tokens[:], r.scanner.Bytes())
		if nToken == 0 || interval.IsHeaderLine(r.tokens[0]) {
			continue
		}
		if nToken != NumColumns {
			return peak.Peak{}, r.errorf("expected %d columns, found %d", NumColumns, nToken)
		}
		return r.parse()
	}
	if err := r.scanner.Err(); err != nil {
		return peak.Peak{}, err
	}
	return peak.Peak{}, io.EOF
}

func (r *Reader) errorf(format string, args ...interface{}) error {
	return errors.E(errors.Invalid, fmt.Sprintf("narrowpeak: line %d: ", r.lineIdx)+fmt.Sprintf(format, args...))
}

func (r *Reader) parseInt(col int) (int64, error) {
	v, err := strconv.ParseInt(gunsafe.BytesToString(r.tokens[col]), 10, 64)
	if err != nil {
		return 0, r.errorf("column %d: %v", col+1, err)
	}
	return v, nil
}

func (r *Reader) parseFloat(col int) (float64, error) {
	v, err := strconv.ParseFloat(gunsafe.BytesToString(r.tokens[col]), 64)
	if err != nil {
		return 0, r.errorf("column %d: %v", col+1, err)
	}
	return v, nil
}

func (r *Reader) parse() (p peak.Peak, err error) {
	tok := &r.tokens
	p.Chrom = string(tok[0])
	if p.Start, err = r.parseInt(1); err != nil {
		return
	}
	if p.End, err = r.parseInt(2); err != nil {
		return
	}
	if s := gunsafe.BytesToString(tok[3]); s != "." {
		p.Name = string(tok[3])
	}
	p.Score = peak.NoScore
	if gunsafe.BytesToString(tok[4]) != "." {
		var score int64
		if score, err = r.parseInt(4); err != nil {
			return
		}
		if score < 0 || score > peak.MaxScore {
			err = r.errorf("score %d outside [0, %d]", score, peak.MaxScore)
			return
		}
		p.Score = int32(score)
	}
	if len(tok[5]) != 1 {
		err = r.errorf("invalid strand %q", tok[5])
		return
	}
	p.Strand = tok[5][0]
	if p.SignalValue, err = r.parseFloat(6); err != nil {
		return
	}
	if p.PValue, err = r.parseFloat(7); err != nil {
		return
	}
	if p.QValue, err = r.parseFloat(8); err != nil {
		return
	}
	if p.Summit, err = r.parseInt(9); err != nil {
		return
	}
	if verr := p.Validate(); verr != nil {
		err = errors.E(errors.Invalid, verr, fmt.Sprintf("narrowpeak: line %d", r.lineIdx))
	}
	return
}

// ReadAll reads every record from r.  With strict set the first malformed
// record aborts the read; otherwise malformed records are logged and
// skipped.
func ReadAll(r io.Reader, strict bool) ([]peak.Peak, error) {
	reader := NewReader(r)
	var (
		peaks    []peak.Peak
		nSkipped int
	)
	for {
		p, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if strict || !errors.Is(errors.Invalid, err) {
				return nil, err
			}
			log.Error.Printf("%v; skipping", err)
			nSkipped++
			continue
		}
		peaks = append(peaks, p)
	}
	if nSkipped > 0 {
		log.Printf("narrowpeak.ReadAll: skipped %d malformed record(s)", nSkipped)
	}
	return peaks, nil
}

// ReadPath is ReadAll on a (possibly compressed) file.
func ReadPath(ctx context.Context, path string, strict bool) (peaks []peak.Peak, err error) {
	var in io.ReadCloser
	if in, err = compress.Open(ctx, path); err != nil {
		return nil, pkgerrors.Wrapf(err, "narrowpeak.ReadPath %s", path)
	}
	defer func() {
		if cerr := in.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if peaks, err = ReadAll(in, strict); err != nil {
		err = pkgerrors.Wrapf(err, "narrowpeak.ReadPath %s", path)
	}
	return
}
