// Package metrics provides Prometheus instrumentation for the cover-dedup service.
//
// This package defines and exposes various metrics that can be scraped by Prometheus
// to monitor the health, performance, and behavior of the application. All metrics
// are prefixed with "coverdup_" to avoid naming collisions with other applications.
//
// # Metric Categories
//
// The metrics are organized into the following categories:
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Database Metrics
//
// Monitor database query performance and storage:
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//   - DBSizeBytes: Gauge of database file sizes (main, WAL, SHM)
//
// ## Library Metrics
//
// Gauges describing the indexed library, refreshed periodically by the
// Collector from the store:
//   - ArchivesTotal: Archives with at least one stored fingerprint
//   - FingerprintsTotal: Stored cover fingerprints
//   - ExclusionsTotal: Stored not-duplicate pairs
//
// ## Crawl Metrics
//
// Track library crawl operations against the remote server:
//   - CrawlRunsTotal: Counter of crawl runs
//   - CrawlLastRunTimestamp: Gauge of last run time
//   - CrawlLastRunDuration: Gauge of last run duration
//   - CrawlPagesTotal: Counter of search result pages fetched
//   - CrawlItemsTotal: Counter of archives handled, by outcome
//   - CrawlIsRunning: Gauge indicating if a crawl is active
//
// ## Thumbnail Metrics
//
// Track thumbnail retrieval from the remote server:
//   - ThumbnailFetchesTotal: Counter of fetches by status (ok, deferred, error)
//   - ThumbnailFetchDuration: Histogram of fetch duration including job polling
//   - ThumbnailJobsTotal: Counter of deferred Minion jobs by outcome
//
// ## Scan Metrics
//
// Track duplicate-detection scans over stored fingerprints:
//   - ScanRunsTotal: Counter of scans
//   - ScanLastRunDuration: Gauge of last scan duration
//   - ScanGroups: Gauge of duplicate groups found by the last scan
//   - ScanSkippedBucketsTotal: Counter of oversized hash buckets skipped
//
// ## Filesystem Metrics
//
// Track NFS retry behavior around the database volume:
//   - FilesystemStaleErrors: Counter of ESTALE errors by operation
//   - FilesystemRetrySuccess: Counter of operations that recovered via retry
//   - FilesystemRetryFailures: Counter of operations that exhausted retries
//   - FilesystemRetryDuration: Histogram of time spent in retry loops
//
// # Usage
//
// Metrics are registered automatically via promauto when the package is
// imported. Call InitializeMetrics once at startup to pre-populate expected
// label combinations, then expose the standard promhttp handler:
//
//	metrics.InitializeMetrics()
//	http.Handle("/metrics", promhttp.Handler())
//
// The Collector refreshes library gauges on an interval:
//
//	collector := metrics.NewCollector(db, 30*time.Second)
//	collector.Start()
//	defer collector.Stop()
package metrics
