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

/*
bio-reproducible-peaks keeps the peaks of a pooled call that are supported by
every replicate.  A peak is kept when it overlaps at least one peak of each
-replicate file and does not overlap the -blacklist.

Sample usage:
bio-reproducible-peaks \
    --peaks pooled.narrowPeak.gz \
    --replicate rep1.narrowPeak.gz \
    --replicate rep2.narrowPeak.gz \
    --blacklist hg38-blacklist.bed.gz \
    --out reproducible.narrowPeak.gz
*/

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/atac/encoding/compress"
	"github.com/grailbio/atac/encoding/narrowpeak"
	"github.com/grailbio/atac/interval"
	"github.com/grailbio/atac/peak"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/vcontext"
)

// pathList is a flag.Value collecting every occurrence of a repeated flag.
type pathList []string

func (l *pathList) String() string { return strings.Join(*l, ",") }

func (l *pathList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var (
	peaksPath     = flag.String("peaks", "", "Pooled narrowPeak file (required)")
	blacklistPath = flag.String("blacklist", "", "Optional BED file of regions to exclude")
	outPath       = flag.String("out", "reproducible.narrowPeak.gz", "Output narrowPeak path; compression follows the suffix")
	level         = flag.Int("level", 0, "Compression level; 0 = format default (stored gzip is not supported)")
	strict        = flag.Bool("strict", false, "Fail on malformed input records instead of skipping them")
	replicates    pathList
)

func init() {
	flag.Var(&replicates, "replicate", "Replicate narrowPeak file; repeat for each replicate (at least one required)")
}

func bioReproduciblePeaksUsage() {
	fmt.Printf("Usage: %s --peaks pooled.narrowPeak --replicate rep.narrowPeak... [OPTIONS]\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

// run keeps the peaks of peaksPath that overlap every replicate and avoid the
// blacklist, and writes them to outPath.  It returns the number of peaks
// written.
func run(ctx context.Context, peaksPath string, replicatePaths []string, blacklistPath, outPath string) (int, error) {
	var (
		black *interval.Index
		err   error
	)
	if blacklistPath != "" {
		if black, err = interval.NewIndexFromBEDPath(ctx, blacklistPath); err != nil {
			return 0, err
		}
	}
	paths := append([]string{peaksPath}, replicatePaths...)
	sets := make([][]peak.Peak, len(paths))
	err = traverse.Each(len(paths), func(i int) (err error) {
		sets[i], err = narrowpeak.ReadPath(ctx, paths[i], *strict)
		return
	})
	if err != nil {
		return 0, err
	}
	kept, err := peak.FindReproducible(sets[0], sets[1:], black)
	if err != nil {
		return 0, err
	}
	if err := narrowpeak.WritePath(ctx, outPath, compress.FormatFromPath(outPath), *level, kept); err != nil {
		return 0, err
	}
	log.Printf("wrote %d peaks to %s", len(kept), outPath)
	return len(kept), nil
}

func main() {
	flag.Usage = bioReproduciblePeaksUsage
	shutdown := grail.Init()
	defer shutdown()

	if *peaksPath == "" {
		log.Fatalf("--peaks is required")
	}
	if len(replicates) == 0 {
		log.Fatalf("at least one --replicate is required")
	}
	if flag.NArg() > 0 {
		log.Fatalf("Unexpected positional arguments; please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
	}
	if _, err := run(vcontext.Background(), *peaksPath, replicates, *blacklistPath, *outPath); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}
