// Package dedupe turns a snapshot of cover fingerprints into groups of
// likely-duplicate archives.
//
// A scan runs two phases over one union-find structure. The exact phase
// partitions archives by thumbnail checksum and links every non-excluded
// pair inside a partition. The approximate phase buckets archives by the
// high bits of their difference hash, skips oversized buckets outright,
// and links pairs whose difference and average hashes both fall within
// their Hamming-distance thresholds. Connected components of two or more
// archives come back as groups, along with the direct edges that formed
// them and per-phase counters.
//
// Scan does no I/O; callers load fingerprints and exclusions from the
// store and hand them in as an immutable snapshot.
package dedupe
