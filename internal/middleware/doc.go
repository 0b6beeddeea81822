// Package middleware provides the HTTP middleware chain: W3C-format
// access logging with injection-safe field sanitization, Prometheus
// request metrics with bounded path cardinality, and threshold-based
// gzip compression for large JSON payloads.
package middleware
