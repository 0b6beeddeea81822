package dedupe

import (
	"sort"

	"cover-dedup/internal/database"
	"cover-dedup/internal/phash"
)

// Edge reasons attached to the pairs a scan reports.
const (
	ReasonExactCover   = "exact-cover"
	ReasonSimilarCover = "similar-cover"
)

// bucketShift selects the top 16 bits of the difference hash as the
// coarse bucket key for the approximate phase. Only archives whose
// hashes agree on those bits are compared pairwise, which bounds the
// comparison count without affecting exact-checksum matches.
const bucketShift = 48

// Default tuning values. Thresholds are Hamming distances over 64-bit
// hashes; 8 differing bits tolerates recompression and mild rescaling
// while keeping unrelated covers apart.
const (
	DefaultDiffHashThreshold = 8
	DefaultAvgHashThreshold  = 8
	DefaultMaxBucketSize     = 256
)

// Config tunes a single duplicate scan.
type Config struct {
	// IncludeExact enables the checksum partition phase.
	IncludeExact bool
	// IncludeApprox enables the bucketed perceptual-hash phase.
	IncludeApprox bool
	// DiffHashThreshold is the maximum Hamming distance between two
	// center-crop difference hashes for an approximate match.
	DiffHashThreshold int
	// AvgHashThreshold is the maximum Hamming distance between two
	// center-crop average hashes for an approximate match.
	AvgHashThreshold int
	// MaxBucketSize skips any coarse-key bucket holding more archives
	// than this, trading recall inside pathological buckets for a
	// predictable worst-case comparison count.
	MaxBucketSize int
}

// DefaultConfig returns the standard scan tuning: both phases enabled,
// thresholds at 8 bits, buckets capped at 256 archives.
func DefaultConfig() Config {
	return Config{
		IncludeExact:      true,
		IncludeApprox:     true,
		DiffHashThreshold: DefaultDiffHashThreshold,
		AvgHashThreshold:  DefaultAvgHashThreshold,
		MaxBucketSize:     DefaultMaxBucketSize,
	}
}

// Pair is one direct match edge between two archives, in canonical
// (lexicographic) order, tagged with the phase that produced it.
type Pair struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Reason string `json:"reason"`
}

// Stats summarizes one scan.
type Stats struct {
	// Archives is the number of fingerprints considered.
	Archives int `json:"archives"`
	// ExactGroups counts checksum partitions of two or more archives,
	// whether or not exclusions later kept their members apart.
	ExactGroups int `json:"exactGroups"`
	// ApproxMatches counts accepted similar-cover edges.
	ApproxMatches int `json:"approxMatches"`
	// SkippedBuckets counts coarse-key buckets dropped for exceeding
	// MaxBucketSize.
	SkippedBuckets int `json:"skippedBuckets"`
}

// Result is the outcome of one scan: duplicate groups, the direct edges
// that formed them, and summary counters.
type Result struct {
	Groups [][]string `json:"groups"`
	Pairs  []Pair     `json:"pairs"`
	Stats  Stats      `json:"stats"`
}

// Scan groups the given fingerprints into likely-duplicate components.
// Exact matches (identical thumbnail checksums) and approximate matches
// (both perceptual hashes within threshold) feed one union-find, so
// chains of pairwise matches merge transitively. Pairs in notDuplicates
// never form an edge, even with byte-identical thumbnails. The function
// is pure: the result depends only on its arguments and no I/O happens.
func Scan(fingerprints []database.ScanFingerprint, notDuplicates map[database.Pair]struct{}, cfg Config) Result {
	result := Result{
		Groups: [][]string{},
		Pairs:  []Pair{},
		Stats:  Stats{Archives: len(fingerprints)},
	}

	uf := newUnionFind(len(fingerprints))

	// link records an edge between fingerprints i and j unless the pair
	// is excluded or already in one component. Reporting true means the
	// edge caused a merge.
	link := func(i, j int, reason string) bool {
		a, b := fingerprints[i].ArchiveID, fingerprints[j].ArchiveID
		if _, excluded := notDuplicates[database.CanonicalPair(a, b)]; excluded {
			return false
		}
		if !uf.union(i, j) {
			return false
		}
		pair := database.CanonicalPair(a, b)
		result.Pairs = append(result.Pairs, Pair{A: pair.A, B: pair.B, Reason: reason})
		return true
	}

	if cfg.IncludeExact {
		byChecksum := make(map[string][]int, len(fingerprints))
		var checksums []string
		for i, fp := range fingerprints {
			if _, seen := byChecksum[fp.Checksum]; !seen {
				checksums = append(checksums, fp.Checksum)
			}
			byChecksum[fp.Checksum] = append(byChecksum[fp.Checksum], i)
		}
		for _, sum := range checksums {
			members := byChecksum[sum]
			if len(members) < 2 {
				continue
			}
			result.Stats.ExactGroups++
			for x := 0; x < len(members); x++ {
				for y := x + 1; y < len(members); y++ {
					link(members[x], members[y], ReasonExactCover)
				}
			}
		}
	}

	if cfg.IncludeApprox {
		buckets := make(map[uint16][]int, len(fingerprints))
		var keys []uint16
		for i, fp := range fingerprints {
			key := uint16(fp.DiffHash >> bucketShift)
			if _, seen := buckets[key]; !seen {
				keys = append(keys, key)
			}
			buckets[key] = append(buckets[key], i)
		}
		for _, key := range keys {
			members := buckets[key]
			if len(members) > cfg.MaxBucketSize {
				result.Stats.SkippedBuckets++
				continue
			}
			for x := 0; x < len(members); x++ {
				for y := x + 1; y < len(members); y++ {
					i, j := members[x], members[y]
					if phash.Distance(fingerprints[i].DiffHash, fingerprints[j].DiffHash) > cfg.DiffHashThreshold {
						continue
					}
					if phash.Distance(fingerprints[i].AvgHash, fingerprints[j].AvgHash) > cfg.AvgHashThreshold {
						continue
					}
					if link(i, j, ReasonSimilarCover) {
						result.Stats.ApproxMatches++
					}
				}
			}
		}
	}

	// Materialize components of two or more archives, members sorted,
	// groups ordered by first member. Singletons are dropped.
	components := make(map[int][]string)
	var roots []int
	for i, fp := range fingerprints {
		root := uf.find(i)
		if _, seen := components[root]; !seen {
			roots = append(roots, root)
		}
		components[root] = append(components[root], fp.ArchiveID)
	}
	for _, root := range roots {
		members := components[root]
		if len(members) < 2 {
			continue
		}
		sort.Strings(members)
		result.Groups = append(result.Groups, members)
	}
	sort.Slice(result.Groups, func(a, b int) bool {
		return result.Groups[a][0] < result.Groups[b][0]
	})

	return result
}
