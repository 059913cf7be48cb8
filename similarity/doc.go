// Package similarity computes dense pairwise similarity matrices between the
// rows of cell x feature matrices: Jaccard and cosine over sparse CSR
// matrices, Pearson and Spearman over dense ones.
//
// The typed entry points (Jaccard, Cosine, Pearson, ...) are generic over
// 32- and 64-bit, signed and unsigned index types and 32- and 64-bit float
// values; arithmetic is always float64.  The *Arrays functions accept the
// same data as untyped slices and dispatch on their element types once.
//
// Self forms return a symmetric rows x rows matrix; Cross forms return a
// rows(a) x rows(b) matrix and require both operands to have the same number
// of columns.  Work is split by row across Opts.Parallelism workers.
package similarity
