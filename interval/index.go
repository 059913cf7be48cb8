package interval

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
	"github.com/grailbio/base/errors"
)

// Entry is an indexed region together with a caller-defined payload,
// typically a position in a slice the caller holds on to.
type Entry struct {
	Region
	Payload int
}

// treeEntry is the element type stored in the per-chromosome trees.  pos
// indexes chromIndex.entries.
type treeEntry struct {
	start, end int
	pos        int
}

// Overlap implements half-open overlap, which is what the tree needs for
// pruning as well as for matching.
func (e treeEntry) Overlap(b interval.IntRange) bool {
	return e.end > b.Start && e.start < b.End
}
func (e treeEntry) ID() uintptr              { return uintptr(e.pos) }
func (e treeEntry) Range() interval.IntRange { return interval.IntRange{Start: e.start, End: e.end} }

type query struct {
	start, end int
}

func (q query) Overlap(b interval.IntRange) bool {
	return q.end > b.Start && q.start < b.End
}

type chromIndex struct {
	tree    interval.IntTree
	entries []Entry
}

// Index is an immutable collection of per-chromosome interval trees.  All
// methods are safe for concurrent use, and a nil *Index behaves as an empty
// index.
type Index struct {
	chroms map[string]*chromIndex
	n      int
}

// Builder accumulates entries for an Index.  It is not safe for concurrent
// use; once Build has been called the builder rejects further entries, so the
// resulting Index never changes after it is handed out.
type Builder struct {
	chroms map[string]*chromIndex
	n      int
	built  bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{chroms: make(map[string]*chromIndex)}
}

// Add registers r with the given payload.  Empty regions are accepted and
// skipped, since they overlap nothing.
func (b *Builder) Add(r Region, payload int) error {
	if b.built {
		return errors.E(errors.Precondition, "interval.Builder.Add: called after Build")
	}
	if r.Start < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("interval.Builder.Add: negative start in %v", r))
	}
	if r.End <= r.Start {
		return nil
	}
	c, ok := b.chroms[r.Chrom]
	if !ok {
		c = &chromIndex{}
		b.chroms[r.Chrom] = c
	}
	e := treeEntry{start: int(r.Start), end: int(r.End), pos: len(c.entries)}
	if err := c.tree.Insert(e, true); err != nil {
		return errors.E(err, fmt.Sprintf("interval.Builder.Add: %v", r))
	}
	c.entries = append(c.entries, Entry{Region: r, Payload: payload})
	b.n++
	return nil
}

// Build finalizes the trees and returns the Index.  The builder must not be
// reused.
func (b *Builder) Build() *Index {
	if b.built {
		panic("interval.Builder.Build: called twice")
	}
	b.built = true
	for _, c := range b.chroms {
		c.tree.AdjustRanges()
	}
	idx := &Index{chroms: b.chroms, n: b.n}
	b.chroms = nil
	return idx
}

// NewIndex builds an Index from entries in one step.
func NewIndex(entries []Entry) (*Index, error) {
	b := NewBuilder()
	for _, e := range entries {
		if err := b.Add(e.Region, e.Payload); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// Len returns the number of non-empty entries in the index.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.n
}

// Chroms returns the indexed chromosome names in sorted order.
func (idx *Index) Chroms() []string {
	if idx == nil {
		return nil
	}
	names := make([]string, 0, len(idx.chroms))
	for name := range idx.chroms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Find returns every entry sharing at least one coordinate with r, ordered
// by start position and then by insertion order.
func (idx *Index) Find(r Region) []Entry {
	c := idx.lookup(r)
	if c == nil {
		return nil
	}
	var result []Entry
	c.tree.DoMatching(func(e interval.IntInterface) (done bool) {
		result = append(result, c.entries[e.(treeEntry).pos])
		return false
	}, query{start: int(r.Start), end: int(r.End)})
	return result
}

// IsOverlapped returns whether any entry shares a coordinate with r.
func (idx *Index) IsOverlapped(r Region) bool {
	c := idx.lookup(r)
	if c == nil {
		return false
	}
	return c.tree.DoMatching(func(interval.IntInterface) bool {
		return true
	}, query{start: int(r.Start), end: int(r.End)})
}

func (idx *Index) lookup(r Region) *chromIndex {
	if idx == nil || r.End <= r.Start {
		return nil
	}
	return idx.chroms[r.Chrom]
}

// IntersectRegions parses each region string and reports whether it
// overlaps idx.
func IntersectRegions(idx *Index, regions []string) ([]bool, error) {
	result := make([]bool, len(regions))
	for i, s := range regions {
		r, err := ParseRegion(s)
		if err != nil {
			return nil, err
		}
		result[i] = idx.IsOverlapped(r)
	}
	return result, nil
}
