package handlers

import (
	"net/http"
	"runtime"
	"time"

	"cover-dedup/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	Ready          bool   `json:"ready"`
	Version        string `json:"version"`
	Uptime         string `json:"uptime"`
	Crawling       bool   `json:"crawling"`
	LastCrawl      string `json:"lastCrawl,omitempty"`
	LastCrawlError string `json:"lastCrawlError,omitempty"`

	// Progress info
	ArchivesIndexed int `json:"archivesIndexed"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	// Stats summary
	TotalArchives     int `json:"totalArchives,omitempty"`
	TotalFingerprints int `json:"totalFingerprints,omitempty"`
}

// storeReady probes the store with a cheap point query. It reports false
// once the store is closed or unreachable.
func (h *Handlers) storeReady(r *http.Request) bool {
	_, err := h.db.GetCheckpoint(r.Context(), h.crawler.Profile().ID)
	return err == nil
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ready := h.storeReady(r)
	crawl := h.crawler.Status()
	stats := h.db.GetStats()

	response := HealthResponse{
		Ready:           ready,
		Version:         startup.Version,
		Uptime:          time.Since(h.startTime).String(),
		Crawling:        crawl.Running,
		ArchivesIndexed: crawl.Counters.Indexed,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	if ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if !crawl.FinishedAt.IsZero() {
		response.LastCrawl = crawl.FinishedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	if crawl.Error != "" {
		response.LastCrawlError = crawl.Error
		response.Status = statusDegraded
	}

	// Include stats if available
	if stats.Archives > 0 || stats.Fingerprints > 0 {
		response.TotalArchives = stats.Archives
		response.TotalFingerprints = stats.Fingerprints
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if the store is unavailable
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.storeReady(r) {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
