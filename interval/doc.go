/*Package interval provides read-only overlap queries over sets of genomic
  regions, such as peak sets, blacklists and replicate calls.

  Regions are 0-based and half-open.  Two regions overlap when they share at
  least one coordinate; touching regions do not.  An Index is assembled by a
  Builder in a single goroutine and is immutable afterwards, so one Index may
  be queried from any number of goroutines.
*/
package interval
