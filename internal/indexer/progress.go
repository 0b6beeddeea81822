package indexer

import (
	"time"

	"golang.org/x/time/rate"
)

// Stage names the phase a crawl run is in.
type Stage string

const (
	StageStarting    Stage = "starting"
	StageEnumerating Stage = "enumerating"
	StageIndexing    Stage = "indexing"
	StageCompleted   Stage = "completed"
)

// Progress is one crawl progress event. Total is the remote library's
// record count once known; ArchiveID is set on per-item snapshots.
type Progress struct {
	Stage     Stage    `json:"stage"`
	Total     int      `json:"total"`
	ArchiveID string   `json:"arcid,omitempty"`
	Counters  Counters `json:"counters"`
}

// ProgressFunc receives progress events. Callbacks may run from
// concurrent item tasks and must be safe for that.
type ProgressFunc func(Progress)

// progressThrottle bounds how often per-item snapshots are emitted so
// a slow consumer is never flooded by a fast page. The first call
// always passes; later calls pass at most once per interval.
type progressThrottle struct {
	limiter *rate.Limiter
}

func newProgressThrottle(minInterval time.Duration) *progressThrottle {
	return &progressThrottle{limiter: rate.NewLimiter(rate.Every(minInterval), 1)}
}

func (t *progressThrottle) Allow() bool {
	return t.limiter.Allow()
}
