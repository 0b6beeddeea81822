package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cover-dedup/internal/database"
	"cover-dedup/internal/indexer"
	"cover-dedup/internal/lanraragi"
	"cover-dedup/internal/phash"
	"cover-dedup/internal/startup"
)

// stubClient serves a small fixed library in a single page. Thumbnail
// fetches can be held open via block to keep a crawl in flight, or
// failed wholesale via searchErr.
type stubClient struct {
	mu        sync.Mutex
	library   []string
	searchErr error
	block     chan struct{}
}

func (s *stubClient) Search(ctx context.Context, offset int) (*lanraragi.SearchPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.searchErr != nil {
		return nil, s.searchErr
	}
	ids := []string{}
	if offset < len(s.library) {
		ids = s.library[offset:]
	}
	return &lanraragi.SearchPage{ArchiveIDs: ids, Total: len(s.library)}, nil
}

func (s *stubClient) Thumbnail(ctx context.Context, arcid string, noFallback bool) (*lanraragi.ThumbnailResult, error) {
	s.mu.Lock()
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &lanraragi.ThumbnailResult{Data: []byte("thumb-" + arcid)}, nil
}

func (s *stubClient) JobStatus(ctx context.Context, jobID string) (string, error) {
	return lanraragi.JobFinished, nil
}

// stubProducer derives deterministic fingerprints from the bytes.
type stubProducer struct{}

func (stubProducer) Compute(data []byte) (*phash.Fingerprint, error) {
	if len(data) == 0 {
		return nil, errors.New("empty thumbnail")
	}

	sum := sha256.Sum256(data)
	seed := uint64(sum[0])
	return &phash.Fingerprint{
		Checksum:    hex.EncodeToString(sum[:]),
		AspectRatio: 0.7,
		Hashes: []phash.Hash{
			{Kind: phash.KindDifference, Crop: phash.CropFull, Value: seed},
			{Kind: phash.KindDifference, Crop: phash.CropCenter90, Value: seed + 1},
			{Kind: phash.KindAverage, Crop: phash.CropFull, Value: seed + 2},
			{Kind: phash.KindAverage, Crop: phash.CropCenter90, Value: seed + 3},
		},
	}, nil
}

func setupTestDB(t testing.TB) *database.Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testProfile() *database.Profile {
	baseURL := "http://lrr.example.test"
	return &database.Profile{
		ID:      database.NewProfileID(baseURL),
		BaseURL: baseURL,
		Lang:    "en",
	}
}

func testConfig() *startup.Config {
	return &startup.Config{
		BaseURL:        "http://lrr.example.test",
		DHashThreshold: 8,
		AHashThreshold: 8,
		MaxBucketSize:  256,
	}
}

// newTestHandlers wires real storage and crawl management around the
// stub remote client.
func newTestHandlers(t *testing.T, library []string) (*Handlers, *stubClient) {
	t.Helper()

	db := setupTestDB(t)
	client := &stubClient{library: library}
	mgr := indexer.NewManager(db, client, stubProducer{}, indexer.Config{Concurrency: 2}, testProfile())
	return New(context.Background(), db, mgr, testConfig()), client
}

// waitForCrawl polls until no crawl is in flight.
func waitForCrawl(t *testing.T, h *Handlers) indexer.Status {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if status := h.crawler.Status(); !status.Running {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("crawl did not finish within deadline")
	return indexer.Status{}
}

// seedArchive stores the two center-crop rows the scan view requires.
func seedArchive(t *testing.T, h *Handlers, arcid, checksum string, diffHash, avgHash uint64) {
	t.Helper()

	ctx := context.Background()
	profile := h.crawler.Profile()
	if err := h.db.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	records := []database.FingerprintRecord{
		{ProfileID: profile.ID, ArchiveID: arcid, Kind: database.KindDifference, Crop: database.CropCenter90, Hash: diffHash, AspectRatio: 0.7, Checksum: checksum},
		{ProfileID: profile.ID, ArchiveID: arcid, Kind: database.KindAverage, Crop: database.CropCenter90, Hash: avgHash, AspectRatio: 0.7, Checksum: checksum},
	}
	for i := range records {
		if err := h.db.UpsertFingerprint(ctx, &records[i]); err != nil {
			t.Fatalf("UpsertFingerprint failed for %s: %v", arcid, err)
		}
	}
}

func TestNewHandlers(t *testing.T) {
	h, _ := newTestHandlers(t, nil)

	if h.db == nil || h.crawler == nil || h.config == nil {
		t.Error("New should wire all collaborators")
	}
	if h.startTime.IsZero() {
		t.Error("New should record the start time")
	}
}
