package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "upsert_fingerprint",
		"has_fingerprint", "scan_fingerprints", "count_fingerprints",
		"add_exclusion", "list_exclusions", "get_profile", "upsert_profile",
		"get_index_state", "set_index_state", "library_stats"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Database file sizes ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	// --- Crawl item outcomes ---
	for _, outcome := range []string{"indexed", "skipped", "failed"} {
		CrawlItemsTotal.WithLabelValues(outcome)
	}

	// --- Thumbnail fetches and deferred jobs ---
	for _, status := range []string{"ok", "deferred", "error"} {
		ThumbnailFetchesTotal.WithLabelValues(status)
	}
	for _, outcome := range []string{"finished", "failed", "timeout"} {
		ThumbnailJobsTotal.WithLabelValues(outcome)
	}

	// --- Filesystem retries on the database volume ---
	for _, op := range []string{"stat"} {
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}
}
