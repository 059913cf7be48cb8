// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/atac/encoding/narrowpeak"
	"github.com/grailbio/atac/interval"
	"github.com/grailbio/atac/peak"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/base/vcontext"
)

var (
	chromSizesPath = flag.String("chrom-sizes", "", "Two-column chrom<TAB>length table; this xor -header required")
	headerPath     = flag.String("header", "", "BAM file whose header supplies chromosome lengths; this xor -chrom-sizes required")
	halfWidth      = flag.Int64("half-width", 250, "Merged peaks span half-width bases on each side of their summit")
	blacklistPath  = flag.String("blacklist", "", "Optional BED file; input peaks overlapping it are discarded")
	outPath        = flag.String("out", "merged.narrowPeak.gz", "Output narrowPeak path")
	compression    = flag.String("compression", "gzip", "Output compression; 'none', 'gzip', 'zstd' and 'bgzf' supported")
	level          = flag.Int("level", 0, "Compression level; 0 = format default (stored gzip is not supported)")
	parallelism    = flag.Int("parallelism", 0, "Maximum number of chromosomes or samples processed at once; 0 = runtime.NumCPU()")
	nan            = flag.String("nan", "lowest", "Ordering of NaN p-values; 'lowest', 'highest' or 'reject'")
	presencePath   = flag.String("presence", "", "If set, write a region x sample TSV marking which samples overlap each merged peak")
	splitByChrom   = flag.String("split-by-chrom", "", "If set, also write one narrowPeak file per chromosome into this directory")
	strict         = flag.Bool("strict", false, "Fail on malformed input records instead of skipping them")
)

func bioMergePeaksUsage() {
	fmt.Printf("Usage: %s [OPTIONS] name=path.narrowPeak...\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// parseSamples splits name=path arguments.  A bare path is named after
// itself.
func parseSamples(args []string) (names, paths []string, err error) {
	seen := make(map[string]bool)
	for _, arg := range args {
		name, path := arg, arg
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, path = arg[:eq], arg[eq+1:]
		}
		if name == "" || path == "" {
			return nil, nil, fmt.Errorf("malformed sample argument %q; expected name=path", arg)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("duplicate sample name %q", name)
		}
		seen[name] = true
		names = append(names, name)
		paths = append(paths, path)
	}
	return
}

func readSamples(ctx context.Context, names, paths []string, black *interval.Index) (map[string][]peak.Peak, error) {
	peaks := make([][]peak.Peak, len(paths))
	err := traverse.Limit(*parallelism).Each(len(paths), func(i int) error {
		ps, err := narrowpeak.ReadPath(ctx, paths[i], *strict)
		if err != nil {
			return err
		}
		peaks[i] = peak.FilterBlacklist(ps, black)
		log.Printf("%s: %d peaks read from %s, %d after blacklist filtering", names[i], len(ps), paths[i], len(peaks[i]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	samples := make(map[string][]peak.Peak, len(names))
	for i, name := range names {
		samples[name] = peaks[i]
	}
	return samples, nil
}

func readChromSizes(ctx context.Context) (peak.ChromSizes, error) {
	switch {
	case *chromSizesPath != "" && *headerPath != "":
		return nil, fmt.Errorf("-chrom-sizes and -header are mutually exclusive")
	case *chromSizesPath != "":
		return peak.ReadChromSizesPath(ctx, *chromSizesPath)
	case *headerPath != "":
		return peak.ReadChromSizesFromBAMPath(ctx, *headerPath)
	}
	return nil, fmt.Errorf("one of -chrom-sizes or -header is required")
}

func writePresence(ctx context.Context, path string, u *peak.Union) (err error) {
	out, err := compress.Create(ctx, path, compress.FormatFromPath(path), *level)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	w := tsv.NewWriter(out)
	w.WriteString("region")
	for _, name := range u.Samples {
		w.WriteString(name)
	}
	if err = w.EndLine(); err != nil {
		return err
	}
	for k := range u.Peaks {
		w.WriteString(u.Peaks[k].String())
		for s := range u.Samples {
			if u.Present[s][k] {
				w.WriteByte('1')
			} else {
				w.WriteByte('0')
			}
		}
		if err = w.EndLine(); err != nil {
			return err
		}
	}
	return w.Flush()
}

func writeByChrom(ctx context.Context, dir string, format compress.Format, peaks []peak.Peak) error {
	var (
		chroms []string
		groups = make(map[string][]peak.Peak)
	)
	for _, p := range peaks {
		if _, ok := groups[p.Chrom]; !ok {
			chroms = append(chroms, p.Chrom)
		}
		groups[p.Chrom] = append(groups[p.Chrom], p)
	}
	if !strings.Contains(dir, "://") {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return err
		}
	}
	g := narrowpeak.NewGroupWriter(dir, format, *level)
	err := traverse.Limit(*parallelism).Each(len(chroms), func(i int) error {
		return g.Write(ctx, chroms[i], groups[chroms[i]])
	})
	paths, cerr := g.Close()
	if err == nil {
		err = cerr
	}
	if err == nil {
		log.Printf("wrote %d per-chromosome file(s) to %s", len(paths), dir)
	}
	return err
}

func main() {
	flag.Usage = bioMergePeaksUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() == 0 {
		log.Fatalf("Missing positional arguments (at least one name=path.narrowPeak required)")
	}
	names, paths, err := parseSamples(flag.Args())
	if err != nil {
		log.Fatalf("%v", err)
	}
	nanPolicy, err := peak.ParseNaNPolicy(*nan)
	if err != nil {
		log.Fatalf("%v", err)
	}
	format, err := compress.ParseFormat(*compression)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if *parallelism <= 0 {
		*parallelism = runtime.NumCPU()
	}
	ctx := vcontext.Background()
	sizes, err := readChromSizes(ctx)
	if err != nil {
		log.Fatalf("%v", err)
	}
	var black *interval.Index
	if *blacklistPath != "" {
		if black, err = interval.NewIndexFromBEDPath(ctx, *blacklistPath); err != nil {
			log.Fatalf("%v", err)
		}
	}
	samples, err := readSamples(ctx, names, paths, black)
	if err != nil {
		log.Fatalf("%v", err)
	}
	opts := peak.DefaultMergeOpts
	opts.NaN = nanPolicy
	opts.Parallelism = *parallelism
	u, err := peak.MergeSamples(samples, sizes, *halfWidth, opts)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := narrowpeak.WritePath(ctx, *outPath, format, *level, u.Peaks); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wrote %d merged peaks to %s", len(u.Peaks), *outPath)
	if *presencePath != "" {
		if err := writePresence(ctx, *presencePath, u); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *splitByChrom != "" {
		if err := writeByChrom(ctx, *splitByChrom, format, u.Peaks); err != nil {
			log.Fatalf("%v", err)
		}
	}
	log.Debug.Printf("exiting")
}
