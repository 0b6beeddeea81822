// Package lanraragi is a minimal client for the LANraragi server API,
// covering the three endpoints the indexer needs: the paginated
// archive search, per-archive thumbnail retrieval, and Minion job
// status polling for thumbnails the server generates on demand.
//
// Authentication uses the server's API-key scheme: the configured key
// is base64-encoded and sent as a Bearer token. Response decoding is
// tolerant of the shape changes LANraragi has shipped over time
// (object vs. bare-string search entries, numeric vs. string job ids,
// "state" vs. "status" job fields).
package lanraragi
