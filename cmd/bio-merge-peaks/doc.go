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

/*
bio-merge-peaks combines the narrowPeak files of several samples into one
non-overlapping peak set.

Every input peak is replaced by a fixed-width window around its summit.  On
each chromosome the window with the best p-value is kept and every window
overlapping it is discarded, until none are left.  The result is clipped to
the chromosome lengths given by -chrom-sizes or by the header of a BAM file
(-header).

Sample usage:
bio-merge-peaks \
    --chrom-sizes hg38.chrom.sizes \
    --blacklist hg38-blacklist.bed.gz \
    --half-width 250 \
    --presence presence.tsv \
    --out merged.narrowPeak.gz \
    tcell=tcell.narrowPeak.gz bcell=bcell.narrowPeak.gz

Input records that do not parse are logged and skipped unless --strict is
given.  With --presence, a TSV with one row per merged peak and one 0/1 column
per sample records which samples had a peak overlapping it.
*/
package main
