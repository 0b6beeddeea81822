/*
Package filesystem provides resilient filesystem operations with automatic retry logic
for NFS stale file handle errors.

# Purpose

This package wraps os.Stat with retry logic designed to handle transient NFS
failures, particularly ESTALE (stale file handle) errors that occur when an
NFS-mounted database volume is accessed during network issues or server-side
changes.

# Key Features

  - Automatic retry with exponential backoff for NFS ESTALE errors (errno 116)
  - Configurable retry attempts (default: 3) and backoff timings
  - Transparent fallback to standard os behavior for non-NFS errors
  - Zero overhead for successful operations

# Usage

Basic usage with default retry configuration:

	import "cover-dedup/internal/filesystem"

	// Stat a file with automatic NFS retry
	info, err := filesystem.StatWithRetry("/database/coverdup.db", filesystem.DefaultRetryConfig())
	if err != nil {
	    log.Fatal(err)
	}

Custom retry configuration:

	config := filesystem.RetryConfig{
	    MaxRetries:     5,
	    InitialBackoff: 100 * time.Millisecond,
	    MaxBackoff:     1 * time.Second,
	}
	info, err := filesystem.StatWithRetry(path, config)

# Retry Behavior

The retry logic implements exponential backoff with the following defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only NFS stale file handle errors (ESTALE) trigger retries. All other errors
fail immediately without retry attempts.

# Integration

The database volume is the only filesystem surface of this application; covers
arrive over HTTP and SQLite owns its own file handles. Retries therefore cover
the size and health checks around that volume:

  - internal/database: database, WAL, and SHM file size reporting
  - internal/startup: database directory validation at boot
*/
package filesystem
