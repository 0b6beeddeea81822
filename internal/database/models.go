package database

import (
	"time"

	"github.com/google/uuid"
)

// Hash kinds and crop regions stored with every fingerprint row.
const (
	KindDifference = "difference-hash"
	KindAverage    = "average-hash"

	CropFull     = "full"
	CropCenter90 = "center-90%"
)

// Profile identifies one remote-library connection.
type Profile struct {
	ID        string    `json:"id"`
	BaseURL   string    `json:"baseUrl"`
	Lang      string    `json:"lang"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProfileID derives a stable profile identifier from a server address.
// The same base URL always maps to the same ID (UUIDv5 over the URL
// namespace), so re-crawling a server reuses its rows.
func NewProfileID(baseURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(baseURL)).String()
}

// FingerprintRecord is one stored perceptual hash of an archive cover.
// An archive carries one row per (kind, crop) combination; the checksum
// and aspect ratio repeat on each row because they describe the same
// thumbnail bytes.
type FingerprintRecord struct {
	ProfileID   string    `json:"profileId"`
	ArchiveID   string    `json:"arcid"`
	Kind        string    `json:"kind"`
	Crop        string    `json:"crop"`
	Hash        uint64    `json:"hash"`
	AspectRatio float64   `json:"aspectRatio"`
	Checksum    string    `json:"checksum"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ScanFingerprint is the derived per-archive view the duplicate scan
// consumes: the center-crop difference and average hashes plus the
// thumbnail checksum. Archives missing any component are not included.
type ScanFingerprint struct {
	ArchiveID string `json:"arcid"`
	Checksum  string `json:"checksum"`
	DiffHash  uint64 `json:"diffHash"`
	AvgHash   uint64 `json:"avgHash"`
}

// Checkpoint records how far a crawl advanced through the remote listing.
type Checkpoint struct {
	LastOffset    int       `json:"lastOffset"`
	LastIndexedAt time.Time `json:"lastIndexedAt"`
}

// Pair is an unordered pair of archive IDs in canonical (sorted) order.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// CanonicalPair orders two archive IDs lexicographically so that (x, y)
// and (y, x) map to the same Pair.
func CanonicalPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}
