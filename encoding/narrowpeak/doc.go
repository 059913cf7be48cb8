// Package narrowpeak reads and writes ENCODE narrowPeak files (BED6+4):
//
//   chrom start end name score strand signalValue pValue qValue peak
//
// Coordinates are 0-based half-open and "peak" is the summit offset from
// start.  "." marks an absent name, score or strand.
package narrowpeak
