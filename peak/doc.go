// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package peak consolidates scored peak calls.
//
// Merge turns overlapping candidate peaks into one non-overlapping set per
// chromosome, keeping the most significant candidate of every cluster.
// ChromSizes.Clip then trims the survivors to the chromosome boundaries, and
// FilterBlacklist, FindReproducible and MergeSamples answer the usual
// set-membership questions with interval.Index.
package peak
