// Package database provides SQLite storage for the cover-dedup service.
//
// It handles storage and retrieval of:
//   - Server profiles (one row per remote library connection)
//   - Cover fingerprints, one row per (archive, hash kind, crop region)
//   - Crawl checkpoints for resumable indexing
//   - User-confirmed not-duplicate exclusion pairs
//
// The database uses WAL mode with a capped recovery log and includes
// automatic schema initialization. Every operation runs serialized on a
// single connection; callers never need their own locking around the
// store. Failures surface as ErrNotOpen or a typed *Error carrying the
// SQLite result code, and both are final for the calling operation.
package database
