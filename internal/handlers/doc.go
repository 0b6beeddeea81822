// Package handlers provides HTTP request handlers for the cover
// deduplication API.
//
// It includes handlers for:
//   - Starting, observing, and cancelling crawls of the remote library
//   - Running duplicate scans and recording not-a-duplicate decisions
//   - Stored-state statistics
//   - Health checks, version, and Prometheus metrics
package handlers
