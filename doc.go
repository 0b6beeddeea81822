// Package main provides the entry point for the coverdup service.
//
// coverdup finds archives with duplicate covers in a remote
// LANraragi-compatible library. It crawls the library's listing,
// fingerprints every archive's cover thumbnail, and groups archives
// whose covers are byte-identical or perceptually similar.
//
// # Application Lifecycle
//
// The service follows a structured initialization sequence:
//
//  1. Memory Configuration: Sets GOMEMLIMIT from environment limits
//  2. Configuration Loading: Reads environment variables and validates
//     the database directory
//  3. Database Initialization: Opens the SQLite fingerprint store
//  4. Component Initialization:
//     - Metrics Collector: Gathers Prometheus store statistics
//     - Remote Client: Authenticated access to the library API
//     - Crawler: On-demand library crawls, one at a time
//  5. HTTP Server Setup: Configures routes, middleware, and starts serving
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM, stops the running
//     crawl, then drains the HTTP servers
//
// # HTTP Servers
//
// The service runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Crawl control (/api/crawl, /api/crawl/status, /api/crawl/cancel)
//     - Duplicate scans (/api/duplicates)
//     - Exclusions (/api/not-duplicate) and store stats (/api/stats)
//     - Health and version endpoints
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
// Configuration is primarily through environment variables:
//
//   - LRR_BASE_URL: Remote library URL (required)
//   - LRR_API_KEY: Remote API key (empty for open-access servers)
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable the metrics server (default: true)
//   - CRAWL_CONCURRENCY: In-flight item pipelines per crawl (default: 6)
//   - CRAWL_RESUME: Resume crawls from the checkpoint (default: false)
//   - CRAWL_SKIP_INDEXED: Skip already fingerprinted archives (default: true)
//   - THUMBNAIL_NO_FALLBACK: Never accept placeholder covers (default: true)
//   - DHASH_THRESHOLD / AHASH_THRESHOLD: Scan Hamming bounds (default: 8)
//   - MAX_BUCKET_SIZE: Scan bucket size cutoff (default: 256)
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - GOMEMLIMIT: Memory limit (derived from MEMORY_LIMIT if not set)
//
// # Graceful Shutdown
//
// The service handles SIGINT and SIGTERM:
//
//  1. Cancel the crawl context so a running crawl stops at the next
//     safe point (its checkpoint covers every fully attempted page)
//  2. Stop the metrics collector
//  3. Shutdown the metrics server
//  4. Shutdown the main HTTP server (30s timeout)
//  5. Close the database
//
// # Build Requirements
//
// The service requires CGO for SQLite:
//
//	go build -o coverdup .
//
// The companion one-shot CLI lives in cmd/coverdup and shares the same
// database and environment variables.
//
// # Related Packages
//
//   - [cover-dedup/internal/database]: SQLite fingerprint store
//   - [cover-dedup/internal/lanraragi]: Remote library API client
//   - [cover-dedup/internal/indexer]: Library crawling and fingerprint capture
//   - [cover-dedup/internal/phash]: Perceptual cover fingerprints
//   - [cover-dedup/internal/dedupe]: Duplicate grouping over stored fingerprints
//   - [cover-dedup/internal/handlers]: HTTP request handlers
//   - [cover-dedup/internal/middleware]: HTTP middleware (logging, metrics, compression)
//   - [cover-dedup/internal/startup]: Configuration and initialization
package main
