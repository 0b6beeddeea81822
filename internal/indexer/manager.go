package indexer

import (
	"context"
	"errors"
	"sync"
	"time"

	"cover-dedup/internal/database"
	"cover-dedup/internal/logging"
)

// ErrCrawlRunning is returned by Manager.Start while a crawl is already
// in flight for the profile.
var ErrCrawlRunning = errors.New("indexer: a crawl is already running")

// StartOptions carries per-run overrides of the configured crawl
// behavior. Nil fields keep the configured value.
type StartOptions struct {
	Resume      *bool `json:"resume"`
	SkipIndexed *bool `json:"skipIndexed"`
}

// Status is a point-in-time view of the crawl: the live stage and
// counters while a run is in flight, the final outcome afterward.
type Status struct {
	Running    bool      `json:"running"`
	Stage      Stage     `json:"stage,omitempty"`
	Total      int       `json:"total"`
	Counters   Counters  `json:"counters"`
	StartedAt  time.Time `json:"startedAt,omitzero"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
	Error      string    `json:"error,omitempty"`
}

// Manager serializes crawl runs: at most one runs at a time, progress is
// observable while it runs, and the outcome of the last run sticks
// around afterward. All methods are safe for concurrent use.
type Manager struct {
	db       *database.Database
	client   Client
	producer Producer
	config   Config
	profile  *database.Profile

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	status  Status
}

// NewManager returns a Manager that builds one Indexer per run from the
// given collaborators and base config.
func NewManager(db *database.Database, client Client, producer Producer, config Config, profile *database.Profile) *Manager {
	return &Manager{
		db:       db,
		client:   client,
		producer: producer,
		config:   config,
		profile:  profile,
	}
}

// Profile returns the profile the manager crawls.
func (m *Manager) Profile() *database.Profile {
	return m.profile
}

// Start launches a crawl in the background, applying any per-run
// overrides on top of the base config. It returns ErrCrawlRunning when a
// run is already in flight. The run inherits cancellation from parent,
// so shutting the parent context down stops the crawl.
func (m *Manager) Start(parent context.Context, opts StartOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrCrawlRunning
	}

	config := m.config
	if opts.Resume != nil {
		config.Resume = *opts.Resume
	}
	if opts.SkipIndexed != nil {
		config.SkipIndexed = *opts.SkipIndexed
	}

	ctx, cancel := context.WithCancel(parent)
	m.running = true
	m.cancel = cancel
	m.status = Status{
		Running:   true,
		Stage:     StageStarting,
		StartedAt: time.Now(),
	}

	go m.run(ctx, cancel, New(m.db, m.client, m.producer, config))
	return nil
}

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, idx *Indexer) {
	defer cancel()

	counters, err := idx.Run(ctx, m.profile, m.observe)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.cancel = nil
	m.status.Running = false
	m.status.FinishedAt = time.Now()
	m.status.Counters = counters
	if err != nil {
		m.status.Error = err.Error()
		logging.Error("Crawl failed: %v", err)
	}
}

func (m *Manager) observe(p Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status.Stage = p.Stage
	m.status.Total = p.Total
	m.status.Counters = p.Counters
}

// Cancel requests cooperative cancellation of the running crawl and
// reports whether one was in flight. The run keeps showing as running
// until its in-flight tasks drain.
func (m *Manager) Cancel() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.cancel == nil {
		return false
	}
	m.cancel()
	return true
}

// Running reports whether a crawl is currently in flight.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Status returns the current crawl status snapshot.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}
