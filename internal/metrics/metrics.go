package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverdup_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverdup_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coverdup_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Library metrics, refreshed by the Collector
var (
	ArchivesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_archives_total",
			Help: "Number of archives with at least one stored fingerprint",
		},
	)

	FingerprintsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_fingerprints_total",
			Help: "Number of stored cover fingerprints",
		},
	)

	ExclusionsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_exclusions_total",
			Help: "Number of stored not-duplicate pairs",
		},
	)
)

// Crawl metrics
var (
	CrawlRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coverdup_crawl_runs_total",
			Help: "Total number of crawl runs",
		},
	)

	CrawlLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_crawl_last_run_timestamp",
			Help: "Timestamp of the last crawl run",
		},
	)

	CrawlLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_crawl_last_run_duration_seconds",
			Help: "Duration of the last crawl run in seconds",
		},
	)

	CrawlPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coverdup_crawl_pages_total",
			Help: "Total number of search result pages fetched",
		},
	)

	CrawlItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_crawl_items_total",
			Help: "Total number of archives handled by the crawler",
		},
		[]string{"outcome"}, // "indexed", "skipped", "failed"
	)

	CrawlIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_crawl_running",
			Help: "Whether a crawl is currently running (1 = running, 0 = idle)",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_thumbnail_fetches_total",
			Help: "Total number of thumbnail fetches against the remote server",
		},
		[]string{"status"}, // "ok", "deferred", "error"
	)

	ThumbnailFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coverdup_thumbnail_fetch_duration_seconds",
			Help:    "Thumbnail fetch duration in seconds, including deferred job polling",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	ThumbnailJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_thumbnail_jobs_total",
			Help: "Total number of deferred thumbnail jobs polled to completion",
		},
		[]string{"outcome"}, // "finished", "failed", "timeout"
	)
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coverdup_scan_runs_total",
			Help: "Total number of duplicate scans",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_scan_last_run_duration_seconds",
			Help: "Duration of the last duplicate scan in seconds",
		},
	)

	ScanGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coverdup_scan_groups",
			Help: "Number of duplicate groups found by the last scan",
		},
	)

	ScanSkippedBucketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coverdup_scan_skipped_buckets_total",
			Help: "Total number of hash buckets skipped for exceeding the size limit",
		},
	)
)

// Filesystem metrics, recorded by the retry helpers around the database volume
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after at least one retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverdup_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverdup_filesystem_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)
)
