package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cover-dedup/internal/database"
	"cover-dedup/internal/dedupe"
	"cover-dedup/internal/indexer"
	"cover-dedup/internal/logging"
	"cover-dedup/internal/metrics"
)

// scanConfig builds the scan tuning from the service defaults, then
// applies any query overrides. Invalid values fall back silently, the
// same way list paging does elsewhere.
func (h *Handlers) scanConfig(r *http.Request) dedupe.Config {
	cfg := dedupe.Config{
		IncludeExact:      true,
		IncludeApprox:     true,
		DiffHashThreshold: h.config.DHashThreshold,
		AvgHashThreshold:  h.config.AHashThreshold,
		MaxBucketSize:     h.config.MaxBucketSize,
	}

	q := r.URL.Query()
	if threshold, err := strconv.Atoi(q.Get("threshold")); err == nil && threshold >= 0 {
		cfg.DiffHashThreshold = threshold
		cfg.AvgHashThreshold = threshold
	}
	if maxBucket, err := strconv.Atoi(q.Get("maxBucket")); err == nil && maxBucket > 0 {
		cfg.MaxBucketSize = maxBucket
	}
	if exact, err := strconv.ParseBool(q.Get("exact")); err == nil {
		cfg.IncludeExact = exact
	}
	if approx, err := strconv.ParseBool(q.Get("approx")); err == nil {
		cfg.IncludeApprox = approx
	}
	return cfg
}

// GetDuplicates runs a duplicate scan over the current fingerprint
// snapshot and returns the groups, the edges that formed them, and the
// scan counters.
func (h *Handlers) GetDuplicates(w http.ResponseWriter, r *http.Request) {
	profileID := h.crawler.Profile().ID

	fingerprints, err := h.db.LoadScanFingerprints(r.Context(), profileID)
	if err != nil {
		logging.Error("Failed to load fingerprints for scan: %v", err)
		writeJSONError(w, "failed to load fingerprints", http.StatusInternalServerError)
		return
	}
	exclusions, err := h.db.LoadNotDuplicates(r.Context(), profileID)
	if err != nil {
		logging.Error("Failed to load exclusions for scan: %v", err)
		writeJSONError(w, "failed to load exclusions", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	result := dedupe.Scan(fingerprints, exclusions, h.scanConfig(r))

	metrics.ScanRunsTotal.Inc()
	metrics.ScanLastRunDuration.Set(time.Since(start).Seconds())
	metrics.ScanGroups.Set(float64(len(result.Groups)))
	metrics.ScanSkippedBucketsTotal.Add(float64(result.Stats.SkippedBuckets))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

type notDuplicateRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// AddNotDuplicate records that two archives are confirmed distinct. The
// pair never links again in any later scan, even on identical covers.
func (h *Handlers) AddNotDuplicate(w http.ResponseWriter, r *http.Request) {
	var req notDuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.A == "" || req.B == "" {
		writeJSONError(w, "both archive ids are required", http.StatusBadRequest)
		return
	}
	if req.A == req.B {
		writeJSONError(w, "archive ids must differ", http.StatusBadRequest)
		return
	}

	profileID := h.crawler.Profile().ID
	if err := h.db.AddNotDuplicate(r.Context(), profileID, req.A, req.B); err != nil {
		logging.Error("Failed to record exclusion: %v", err)
		writeJSONError(w, "failed to record exclusion", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, "recorded")
}

// StatsResponse summarizes the stored state and the last crawl.
type StatsResponse struct {
	Archives     int                 `json:"archives"`
	Fingerprints int                 `json:"fingerprints"`
	Exclusions   int                 `json:"exclusions"`
	Checkpoint   database.Checkpoint `json:"checkpoint"`
	Crawl        indexer.Status      `json:"crawl"`
}

// GetStats returns fingerprint counts, the crawl checkpoint, and the
// last crawl summary.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.db.GetStats()

	checkpoint, err := h.db.GetCheckpoint(r.Context(), h.crawler.Profile().ID)
	if err != nil {
		logging.Error("Failed to load checkpoint: %v", err)
		writeJSONError(w, "failed to load checkpoint", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, StatsResponse{
		Archives:     stats.Archives,
		Fingerprints: stats.Fingerprints,
		Exclusions:   stats.Exclusions,
		Checkpoint:   checkpoint,
		Crawl:        h.crawler.Status(),
	})
}
