// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - LRR_BASE_URL: Remote LANraragi server address (required, http or https)
//   - LRR_API_KEY: API key for the remote server (optional)
//   - PROFILE_LANG: Language tag recorded on the server profile (default: en)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - CRAWL_CONCURRENCY: Item pipelines in flight per crawl; 0 = auto (default: 6)
//   - CRAWL_RESUME: Start crawls from the stored checkpoint (default: false)
//   - CRAWL_SKIP_INDEXED: Skip archives with stored fingerprints (default: true)
//   - THUMBNAIL_NO_FALLBACK: Reject placeholder thumbnails (default: true)
//   - DHASH_THRESHOLD: Max Hamming distance for difference hashes (default: 8)
//   - AHASH_THRESHOLD: Max Hamming distance for average hashes (default: 8)
//   - MAX_BUCKET_SIZE: Scan bucket size limit (default: 256)
//   - HTTP_TIMEOUT: Remote request timeout as Go duration (default: 30s)
//   - STATS_INTERVAL: Library gauge refresh interval as Go duration (default: 30s)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The database directory is required and must be writable; it is created if
// missing and startup fails if it cannot be written.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogDatabaseInit]: Database initialization timing
//   - [LogCrawlerInit]: Crawler target and concurrency
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
