package indexer

import "sync"

// Counters is a point-in-time snapshot of one crawl run's progress.
type Counters struct {
	Seen      int `json:"seen"`
	Queued    int `json:"queued"`
	Completed int `json:"completed"`
	Indexed   int `json:"indexed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// runCounters is the single owner of a run's mutable counters. Every
// concurrent task increments through it, so no update is ever lost,
// and Snapshot reads all fields atomically relative to increments.
type runCounters struct {
	mu sync.Mutex
	c  Counters
}

func (rc *runCounters) IncSeen() {
	rc.mu.Lock()
	rc.c.Seen++
	rc.mu.Unlock()
}

func (rc *runCounters) IncQueued() {
	rc.mu.Lock()
	rc.c.Queued++
	rc.mu.Unlock()
}

func (rc *runCounters) IncCompleted() {
	rc.mu.Lock()
	rc.c.Completed++
	rc.mu.Unlock()
}

func (rc *runCounters) IncIndexed() {
	rc.mu.Lock()
	rc.c.Indexed++
	rc.mu.Unlock()
}

func (rc *runCounters) IncSkipped() {
	rc.mu.Lock()
	rc.c.Skipped++
	rc.mu.Unlock()
}

func (rc *runCounters) IncFailed() {
	rc.mu.Lock()
	rc.c.Failed++
	rc.mu.Unlock()
}

func (rc *runCounters) Snapshot() Counters {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.c
}
