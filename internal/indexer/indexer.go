package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"cover-dedup/internal/database"
	"cover-dedup/internal/lanraragi"
	"cover-dedup/internal/logging"
	"cover-dedup/internal/metrics"
	"cover-dedup/internal/phash"
	"cover-dedup/internal/workers"
)

const (
	// Item pipelines in flight at once when the caller does not choose.
	defaultConcurrency = 6

	// Deferred thumbnail jobs are polled this often, this many times,
	// before the item is given up on.
	defaultJobPollInterval = 2 * time.Second
	defaultMaxJobPolls     = 15

	// Minimum gap between per-item progress emissions.
	progressInterval = 500 * time.Millisecond
)

// Client is the remote library surface the crawler consumes.
type Client interface {
	Search(ctx context.Context, offset int) (*lanraragi.SearchPage, error)
	Thumbnail(ctx context.Context, arcid string, noFallback bool) (*lanraragi.ThumbnailResult, error)
	JobStatus(ctx context.Context, jobID string) (string, error)
}

// Producer turns raw thumbnail bytes into a fingerprint set.
type Producer interface {
	Compute(data []byte) (*phash.Fingerprint, error)
}

// Config controls one crawl run.
type Config struct {
	// Concurrency bounds in-flight item pipelines. 0 selects an
	// I/O-oriented worker count automatically; negative values fall
	// back to the default.
	Concurrency int

	// Resume starts from the persisted checkpoint instead of offset 0.
	Resume bool

	// SkipIndexed skips items that already have at least one
	// fingerprint row, so a re-crawl only works through new arrivals.
	SkipIndexed bool

	// NoThumbnailFallback asks the server for real cover thumbnails
	// only, instead of a placeholder when none has been generated.
	NoThumbnailFallback bool
}

// Indexer walks a remote library's listing and persists a fingerprint
// set for every item's cover thumbnail. One Indexer runs one crawl at
// a time; callers wanting overlap protection serialize Run calls.
type Indexer struct {
	db       *database.Database
	client   Client
	producer Producer
	config   Config

	concurrency     int
	jobPollInterval time.Duration
	maxJobPolls     int
}

// New creates an Indexer over the given store, remote client, and
// fingerprint producer.
func New(db *database.Database, client Client, producer Producer, config Config) *Indexer {
	concurrency := config.Concurrency
	switch {
	case concurrency == 0:
		concurrency = workers.ForIO(0)
	case concurrency < 0:
		concurrency = defaultConcurrency
	}

	return &Indexer{
		db:              db,
		client:          client,
		producer:        producer,
		config:          config,
		concurrency:     concurrency,
		jobPollInterval: defaultJobPollInterval,
		maxJobPolls:     defaultMaxJobPolls,
	}
}

// Concurrency returns the resolved worker bound for this Indexer.
func (idx *Indexer) Concurrency() int {
	return idx.concurrency
}

// SetJobPollInterval overrides how often deferred thumbnail jobs are
// polled.
func (idx *Indexer) SetJobPollInterval(interval time.Duration) {
	if interval > 0 {
		idx.jobPollInterval = interval
	}
}

// Run crawls the remote listing from the resolved start offset to the
// end of the library, fingerprinting every item it dispatches. The
// returned Counters are the run's final tallies, also carried by the
// last progress event.
//
// Listing-page failures abort the run; single-item failures are
// counted and swallowed. The checkpoint advances after each fully
// drained page regardless of item failures, so a resumed run never
// reprocesses a fully attempted page.
func (idx *Indexer) Run(ctx context.Context, profile *database.Profile, onProgress ProgressFunc) (Counters, error) {
	start := time.Now()
	metrics.CrawlRunsTotal.Inc()
	metrics.CrawlIsRunning.Set(1)
	defer func() {
		metrics.CrawlIsRunning.Set(0)
		metrics.CrawlLastRunTimestamp.Set(float64(time.Now().Unix()))
		metrics.CrawlLastRunDuration.Set(time.Since(start).Seconds())
	}()

	counters := &runCounters{}
	throttle := newProgressThrottle(progressInterval)
	emit := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	logging.Info("Starting crawl of %s (concurrency: %d, resume: %v, skip indexed: %v)",
		profile.BaseURL, idx.concurrency, idx.config.Resume, idx.config.SkipIndexed)

	if err := idx.db.UpsertProfile(ctx, profile); err != nil {
		return counters.Snapshot(), err
	}

	offset := 0
	if idx.config.Resume {
		last, err := idx.db.LastOffset(ctx, profile.ID)
		if err != nil {
			return counters.Snapshot(), err
		}
		offset = last
		logging.Info("Resuming from checkpoint offset %d", offset)
	}

	emit(Progress{Stage: StageStarting, Counters: counters.Snapshot()})

	page, err := idx.fetchPage(ctx, offset)
	if err != nil {
		return counters.Snapshot(), err
	}
	total := page.Total

	emit(Progress{Stage: StageEnumerating, Total: total, Counters: counters.Snapshot()})
	logging.Info("Library reports %d records", total)

	sem := semaphore.NewWeighted(int64(idx.concurrency))

	for len(page.ArchiveIDs) > 0 {
		if err := ctx.Err(); err != nil {
			return counters.Snapshot(), err
		}

		emit(Progress{Stage: StageIndexing, Total: total, Counters: counters.Snapshot()})

		var wg sync.WaitGroup
		for _, arcid := range page.ArchiveIDs {
			// Acquire alone is not a cancellation point when permits
			// are free, so check before every task dispatch.
			select {
			case <-ctx.Done():
				wg.Wait()
				return counters.Snapshot(), ctx.Err()
			default:
			}

			counters.IncSeen()

			if idx.config.SkipIndexed {
				indexed, err := idx.db.HasFingerprint(ctx, profile.ID, arcid)
				if err != nil {
					wg.Wait()
					return counters.Snapshot(), err
				}
				if indexed {
					counters.IncSkipped()
					metrics.CrawlItemsTotal.WithLabelValues("skipped").Inc()
					continue
				}
			}

			counters.IncQueued()

			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return counters.Snapshot(), err
			}

			wg.Add(1)
			go func(arcid string) {
				defer wg.Done()
				defer sem.Release(1)

				idx.processItem(ctx, profile.ID, arcid, counters)
				counters.IncCompleted()

				if throttle.Allow() {
					emit(Progress{
						Stage:     StageIndexing,
						Total:     total,
						ArchiveID: arcid,
						Counters:  counters.Snapshot(),
					})
				}
			}(arcid)
		}

		wg.Wait()

		// A cancelled page may not have fully dispatched; it drains
		// but never checkpoints.
		if err := ctx.Err(); err != nil {
			return counters.Snapshot(), err
		}

		// The checkpoint covers every attempted item, failures
		// included; only a fully drained page advances it.
		offset += len(page.ArchiveIDs)
		if err := idx.db.SetLastOffset(ctx, profile.ID, offset); err != nil {
			return counters.Snapshot(), err
		}

		if offset >= total {
			break
		}

		page, err = idx.fetchPage(ctx, offset)
		if err != nil {
			return counters.Snapshot(), err
		}
	}

	final := counters.Snapshot()
	emit(Progress{Stage: StageCompleted, Total: total, Counters: final})
	logging.Info("Crawl complete: %d seen, %d indexed, %d skipped, %d failed in %v",
		final.Seen, final.Indexed, final.Skipped, final.Failed, time.Since(start).Round(time.Millisecond))

	return final, nil
}

// fetchPage wraps a listing fetch; these failures are fatal to the run.
func (idx *Indexer) fetchPage(ctx context.Context, offset int) (*lanraragi.SearchPage, error) {
	page, err := idx.client.Search(ctx, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch listing at offset %d: %w", offset, err)
	}
	metrics.CrawlPagesTotal.Inc()
	return page, nil
}

// processItem runs one item pipeline: thumbnail fetch, fingerprint
// computation, store writes. Failures are counted, logged, and
// swallowed so one bad item never stalls the library.
func (idx *Indexer) processItem(ctx context.Context, profileID, arcid string, counters *runCounters) {
	if err := idx.indexItem(ctx, profileID, arcid); err != nil {
		counters.IncFailed()
		metrics.CrawlItemsTotal.WithLabelValues("failed").Inc()
		logging.Warn("Failed to index %s: %v", arcid, err)
		return
	}
	counters.IncIndexed()
	metrics.CrawlItemsTotal.WithLabelValues("indexed").Inc()
}

func (idx *Indexer) indexItem(ctx context.Context, profileID, arcid string) error {
	data, err := idx.fetchThumbnail(ctx, arcid)
	if err != nil {
		return fmt.Errorf("fetch thumbnail: %w", err)
	}

	fp, err := idx.producer.Compute(data)
	if err != nil {
		return fmt.Errorf("fingerprint thumbnail: %w", err)
	}

	for _, h := range fp.Hashes {
		rec := &database.FingerprintRecord{
			ProfileID:   profileID,
			ArchiveID:   arcid,
			Kind:        h.Kind,
			Crop:        h.Crop,
			Hash:        h.Value,
			AspectRatio: fp.AspectRatio,
			Checksum:    fp.Checksum,
		}
		if err := idx.db.UpsertFingerprint(ctx, rec); err != nil {
			return fmt.Errorf("store fingerprint: %w", err)
		}
	}
	return nil
}

// fetchThumbnail retrieves an item's cover bytes, waiting out a
// deferred generation job when the server answers with one.
func (idx *Indexer) fetchThumbnail(ctx context.Context, arcid string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.ThumbnailFetchDuration.Observe(time.Since(start).Seconds())
	}()

	result, err := idx.client.Thumbnail(ctx, arcid, idx.config.NoThumbnailFallback)
	if err != nil {
		metrics.ThumbnailFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if !result.Deferred() {
		metrics.ThumbnailFetchesTotal.WithLabelValues("ok").Inc()
		return result.Data, nil
	}

	metrics.ThumbnailFetchesTotal.WithLabelValues("deferred").Inc()
	logging.Debug("Thumbnail for %s deferred, waiting on job %s", arcid, result.JobID)

	if err := idx.waitForJob(ctx, result.JobID); err != nil {
		return nil, err
	}

	result, err = idx.client.Thumbnail(ctx, arcid, idx.config.NoThumbnailFallback)
	if err != nil {
		metrics.ThumbnailFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if result.Deferred() {
		metrics.ThumbnailFetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("thumbnail for %s still pending after job %s", arcid, result.JobID)
	}
	metrics.ThumbnailFetchesTotal.WithLabelValues("ok").Inc()
	return result.Data, nil
}

// waitForJob polls a Minion job until it finishes, fails, or the poll
// budget runs out.
func (idx *Indexer) waitForJob(ctx context.Context, jobID string) error {
	ticker := time.NewTicker(idx.jobPollInterval)
	defer ticker.Stop()

	for poll := 0; poll < idx.maxJobPolls; poll++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		state, err := idx.client.JobStatus(ctx, jobID)
		if err != nil {
			metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
			return err
		}

		switch state {
		case lanraragi.JobFinished:
			metrics.ThumbnailJobsTotal.WithLabelValues("finished").Inc()
			return nil
		case lanraragi.JobFailed:
			metrics.ThumbnailJobsTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("thumbnail job %s failed", jobID)
		}
	}

	metrics.ThumbnailJobsTotal.WithLabelValues("timeout").Inc()
	return fmt.Errorf("thumbnail job %s not finished after %d polls", jobID, idx.maxJobPolls)
}
