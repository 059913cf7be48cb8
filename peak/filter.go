package peak

import (
	"runtime"
	"sort"

	"github.com/grailbio/atac/interval"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
)

// NewIndex indexes peaks by region; each entry's payload is the peak's
// position in the slice.
func NewIndex(peaks []Peak) (*interval.Index, error) {
	b := interval.NewBuilder()
	for i := range peaks {
		if err := b.Add(peaks[i].Region(), i); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// FilterBlacklist returns the peaks that do not overlap black.  A nil black
// keeps everything.
func FilterBlacklist(peaks []Peak, black *interval.Index) []Peak {
	result := make([]Peak, 0, len(peaks))
	for i := range peaks {
		if !black.IsOverlapped(peaks[i].Region()) {
			result = append(result, peaks[i])
		}
	}
	return result
}

// FindReproducible returns the peaks that avoid black and overlap at least
// one peak of every replicate.
func FindReproducible(peaks []Peak, replicates [][]Peak, black *interval.Index) ([]Peak, error) {
	indexes := make([]*interval.Index, len(replicates))
	for i, rep := range replicates {
		idx, err := NewIndex(rep)
		if err != nil {
			return nil, err
		}
		indexes[i] = idx
	}
	var result []Peak
	for _, p := range FilterBlacklist(peaks, black) {
		r := p.Region()
		reproduced := true
		for _, idx := range indexes {
			if !idx.IsOverlapped(r) {
				reproduced = false
				break
			}
		}
		if reproduced {
			result = append(result, p)
		}
	}
	log.Printf("peak.FindReproducible: %d of %d peaks reproduced in %d replicate(s)", len(result), len(peaks), len(replicates))
	return result, nil
}

// Union is a merged peak set together with which samples contributed to each
// merged peak.
type Union struct {
	Peaks []Peak
	// Samples is sorted.
	Samples []string
	// Present[s][k] is true when a peak of Samples[s] overlaps Peaks[k].
	Present [][]bool
}

// MergeSamples merges the peaks of all samples, clips them against sizes and
// records which samples overlap each merged peak.
func MergeSamples(samples map[string][]Peak, sizes ChromSizes, halfWidth int64, opts MergeOpts) (*Union, error) {
	names := make([]string, 0, len(samples))
	n := 0
	for name, ps := range samples {
		names = append(names, name)
		n += len(ps)
	}
	sort.Strings(names)
	all := make([]Peak, 0, n)
	for _, name := range names {
		all = append(all, samples[name]...)
	}
	groups, err := Merge(all, halfWidth, opts)
	if err != nil {
		return nil, err
	}
	merged, err := ClipAll(groups, sizes)
	if err != nil {
		return nil, err
	}
	idx, err := NewIndex(merged)
	if err != nil {
		return nil, err
	}
	u := &Union{
		Peaks:   merged,
		Samples: names,
		Present: make([][]bool, len(names)),
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	// Each sample owns its own row of Present.
	err = traverse.Limit(parallelism).Each(len(names), func(s int) error {
		row := make([]bool, len(merged))
		for _, p := range samples[names[s]] {
			for _, e := range idx.Find(p.Region()) {
				row[e.Payload] = true
			}
		}
		u.Present[s] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
