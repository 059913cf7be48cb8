// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package compress opens and creates possibly-compressed text files.  Readers
// sniff the stream's magic bytes, so a gzip, BGZF or zstd file is decoded
// whatever its suffix.
package compress

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format identifies a stream encoding.
type Format int

const (
	// None is uncompressed text.
	None Format = iota
	// Gzip is (multi-member) gzip.
	Gzip
	// Zstd is zstandard.
	Zstd
	// BGZF is blocked gzip, readable by any gzip reader.
	BGZF
)

// Default compression levels, by format.
const (
	DefaultGzipLevel = 6
	DefaultZstdLevel = 3
	DefaultBGZFLevel = gzip.DefaultCompression
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// ParseFormat maps a user-facing name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zstandard", "zst":
		return Zstd, nil
	case "bgzf", "bgzip":
		return BGZF, nil
	}
	return None, errors.E(errors.NotSupported, fmt.Sprintf("compress.ParseFormat: unsupported compression %q", s))
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case BGZF:
		return "bgzf"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the conventional filename suffix for f.
func (f Format) Ext() string {
	switch f {
	case Gzip, BGZF:
		return ".gz"
	case Zstd:
		return ".zst"
	}
	return ""
}

// FormatFromPath guesses the format from a filename suffix.  Both Gzip and
// BGZF files end in ".gz"; FormatFromPath reports Gzip for them.
func FormatFromPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".gz"), strings.HasSuffix(path, ".bgz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	}
	return None
}

// Detect identifies the format from the first bytes of a stream.  BGZF is
// reported as Gzip.
func Detect(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd
	}
	return None
}

type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() (err error) {
	for _, c := range r.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// NewReader returns a decoding reader for r along with the detected format.
// Closing the result releases the decoder but does not close r.
func NewReader(r io.Reader) (io.ReadCloser, Format, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	header, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, None, err
	}
	switch format := Detect(header); format {
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, format, errors.E(err, "compress.NewReader: gzip header")
		}
		return &readCloser{Reader: gz, closers: []func() error{gz.Close}}, format, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, format, errors.E(err, "compress.NewReader: zstd header")
		}
		return &readCloser{Reader: zr, closers: []func() error{func() error { zr.Close(); return nil }}}, format, nil
	default:
		return &readCloser{Reader: br}, format, nil
	}
}

// Open opens path for reading and decodes it according to its content.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r, _, err := NewReader(in.Reader(ctx))
	if err != nil {
		_ = in.Close(ctx)
		return nil, errors.E(err, path)
	}
	rc := r.(*readCloser)
	rc.closers = append(rc.closers, func() error { return in.Close(ctx) })
	return rc, nil
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() (err error) {
	for _, c := range w.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// NewWriter wraps w in an encoder for format.  level <= 0 selects the
// format's default, so gzip's stored (level 0) mode is not reachable; use None
// for uncompressed output.  Closing the result flushes the encoder but does not close
// w.
func NewWriter(w io.Writer, format Format, level int) (io.WriteCloser, error) {
	switch format {
	case None:
		return &writeCloser{Writer: w}, nil
	case Gzip:
		if level <= 0 {
			level = DefaultGzipLevel
		}
		gz, err := gzip.NewWriterLevel(w, level)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "compress.NewWriter")
		}
		return &writeCloser{Writer: gz, closers: []func() error{gz.Close}}, nil
	case Zstd:
		if level <= 0 {
			level = DefaultZstdLevel
		}
		zw, err := zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(8))
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "compress.NewWriter")
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close}}, nil
	case BGZF:
		if level <= 0 {
			level = DefaultBGZFLevel
		}
		bw, err := bgzf.NewWriterLevel(w, level, 1)
		if err != nil {
			return nil, errors.E(errors.Invalid, err, "compress.NewWriter")
		}
		return &writeCloser{Writer: bw, closers: []func() error{bw.Close}}, nil
	}
	return nil, errors.E(errors.NotSupported, fmt.Sprintf("compress.NewWriter: unsupported format %v", format))
}

// Create creates path and returns an encoding writer for it.  Close flushes
// the encoder and then closes the file, reporting the first error.
func Create(ctx context.Context, path string, format Format, level int) (io.WriteCloser, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(out.Writer(ctx), format, level)
	if err != nil {
		_ = out.Close(ctx)
		return nil, err
	}
	wc := w.(*writeCloser)
	wc.closers = append(wc.closers, func() error { return out.Close(ctx) })
	return wc, nil
}
