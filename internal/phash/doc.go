// Package phash computes perceptual fingerprints of cover thumbnails.
//
// A fingerprint is a pure function of the thumbnail bytes: a hex SHA-256
// checksum for exact matching, the aspect ratio, and four 64-bit
// perceptual hashes for approximate matching. Two hash algorithms run
// over two crop regions each:
//
//   - difference hash: 9x8 grayscale resize, one bit per horizontal
//     neighbor pair (left brighter than right)
//   - average hash: 8x8 grayscale resize, one bit per pixel above the
//     mean brightness
//
// The "full" crop hashes the whole image; the "center-90%" crop discards
// a 5% border on every side first, which makes the hash less sensitive to
// scanner edges and letterboxing. Similar covers differ in a few bits;
// [Distance] counts them.
//
// Supported formats are JPEG, PNG, GIF and WebP. Oversized inputs are
// downscaled before hashing.
package phash
