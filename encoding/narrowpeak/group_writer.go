package narrowpeak

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/atac/peak"
	"github.com/grailbio/base/errors"
)

// GroupWriter writes peaks into one file per key under a directory.  Write
// may be called concurrently; writes to the same key are serialized by that
// key's lock and writes to different keys proceed in parallel.
type GroupWriter struct {
	dir    string
	format compress.Format
	level  int

	mu     sync.Mutex // guards dests and closed
	dests  map[string]*destination
	closed bool
}

type destination struct {
	mu   sync.Mutex
	path string
	out  io.WriteCloser
	w    *Writer
}

// NewGroupWriter returns a GroupWriter that creates its files in dir.
func NewGroupWriter(dir string, format compress.Format, level int) *GroupWriter {
	return &GroupWriter{
		dir:    dir,
		format: format,
		level:  level,
		dests:  make(map[string]*destination),
	}
}

// Path returns the file that key's records go to.
func (g *GroupWriter) Path(key string) string {
	name := strings.Replace(key, "/", "+", -1) + ".narrowPeak" + g.format.Ext()
	return filepath.Join(g.dir, name)
}

func (g *GroupWriter) destination(ctx context.Context, key string) (*destination, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil, errors.E(errors.Precondition, "narrowpeak.GroupWriter: write after Close")
	}
	if d, ok := g.dests[key]; ok {
		return d, nil
	}
	path := g.Path(key)
	out, err := compress.Create(ctx, path, g.format, g.level)
	if err != nil {
		return nil, errors.E(err, path)
	}
	d := &destination{path: path, out: out, w: NewWriter(out)}
	g.dests[key] = d
	return d, nil
}

// Write appends peaks to key's file, creating it on first use.
func (g *GroupWriter) Write(ctx context.Context, key string, peaks []peak.Peak) error {
	d, err := g.destination(ctx, key)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.w.WriteAll(peaks); err != nil {
		return errors.E(err, d.path)
	}
	return nil
}

// Close flushes and closes every file, and returns the paths written, keyed
// by group.
func (g *GroupWriter) Close() (map[string]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	keys := make([]string, 0, len(g.dests))
	for key := range g.dests {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var firstErr error
	paths := make(map[string]string, len(keys))
	for _, key := range keys {
		d := g.dests[key]
		d.mu.Lock()
		if err := d.w.Flush(); err != nil && firstErr == nil {
			firstErr = errors.E(err, d.path)
		}
		if err := d.out.Close(); err != nil && firstErr == nil {
			firstErr = errors.E(err, d.path)
		}
		d.mu.Unlock()
		paths[key] = d.path
	}
	return paths, firstErr
}
