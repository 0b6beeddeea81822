package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cover-dedup/internal/indexer"
	"cover-dedup/internal/logging"
)

// StartCrawl launches a background crawl of the configured profile. The
// optional JSON body overrides the configured resume and skip behavior
// for this run only. At most one crawl runs at a time.
func (h *Handlers) StartCrawl(w http.ResponseWriter, r *http.Request) {
	var opts indexer.StartOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// The crawl inherits the application context, not the request
	// context: it must keep running after this response is sent.
	if err := h.crawler.Start(h.appCtx, opts); err != nil {
		if errors.Is(err, indexer.ErrCrawlRunning) {
			writeJSONError(w, "a crawl is already running", http.StatusConflict)
			return
		}
		logging.Error("Failed to start crawl: %v", err)
		writeJSONError(w, "failed to start crawl", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "started"})
}

// CrawlStatus reports the stage, target total, and counter snapshot of
// the running crawl, or the outcome of the last finished one.
func (h *Handlers) CrawlStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.crawler.Status())
}

// CancelCrawl requests cooperative cancellation of the running crawl.
// In-flight items drain before the crawl reports itself stopped.
func (h *Handlers) CancelCrawl(w http.ResponseWriter, _ *http.Request) {
	if !h.crawler.Cancel() {
		writeJSONError(w, "no crawl is running", http.StatusConflict)
		return
	}
	writeJSONStatus(w, "cancelling")
}
