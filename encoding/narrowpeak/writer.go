package narrowpeak

import (
	"context"
	"io"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/atac/peak"
	"github.com/grailbio/base/tsv"
	pkgerrors "github.com/pkg/errors"
)

// Writer emits narrowPeak lines.  Call Flush when done.
type Writer struct {
	tw *tsv.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{tw: tsv.NewWriter(w)}
}

// Write appends one record.
func (w *Writer) Write(p *peak.Peak) error {
	tw := w.tw
	tw.WriteString(p.Chrom)
	tw.WriteInt64(p.Start)
	tw.WriteInt64(p.End)
	if p.Name == "" {
		tw.WriteString(".")
	} else {
		tw.WriteString(p.Name)
	}
	if p.Score < 0 {
		tw.WriteString(".")
	} else {
		tw.WriteInt64(int64(p.Score))
	}
	tw.WriteByte(p.StrandOrDot())
	tw.WriteFloat64(p.SignalValue, 'f', -1)
	tw.WriteFloat64(p.PValue, 'f', -1)
	tw.WriteFloat64(p.QValue, 'f', -1)
	tw.WriteInt64(p.Summit)
	return tw.EndLine()
}

// WriteAll appends every record in peaks.
func (w *Writer) WriteAll(peaks []peak.Peak) error {
	for i := range peaks {
		if err := w.Write(&peaks[i]); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.tw.Flush()
}

// WritePath writes peaks to path, compressed with format at the given level.
func WritePath(ctx context.Context, path string, format compress.Format, level int, peaks []peak.Peak) (err error) {
	var out io.WriteCloser
	if out, err = compress.Create(ctx, path, format, level); err != nil {
		return pkgerrors.Wrapf(err, "narrowpeak.WritePath %s", path)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = pkgerrors.Wrapf(cerr, "narrowpeak.WritePath %s", path)
		}
	}()
	w := NewWriter(out)
	if err = w.WriteAll(peaks); err == nil {
		err = w.Flush()
	}
	if err != nil {
		err = pkgerrors.Wrapf(err, "narrowpeak.WritePath %s", path)
	}
	return
}
