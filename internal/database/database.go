package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"cover-dedup/internal/filesystem"
	"cover-dedup/internal/logging"
	"cover-dedup/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotOpen is returned when an operation runs after Close, or when the
// store never opened successfully.
var ErrNotOpen = errors.New("database is not open")

// Error is an engine failure carrying the SQLite result code and message.
type Error struct {
	Op       string
	Code     int
	Extended int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("database %s: engine error %d: %s", e.Op, e.Code, e.Message)
}

// wrapError converts driver errors into the package taxonomy.
func wrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return &Error{
			Op:       op,
			Code:     int(serr.Code),
			Extended: int(serr.ExtendedCode),
			Message:  serr.Error(),
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Database manages all persistent state for cover deduplication.
//
// Every statement, reads included, runs under one mutex and one pooled
// connection: the sqlite3 driver forbids concurrent statement execution
// on a single connection, and serializing here makes the store the only
// lock the crawler and handlers need.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex

	statsMu sync.RWMutex
	stats   metrics.Stats
}

// New creates a new Database instance.
// IMPORTANT: dbPath should be the full path to the database FILE (e.g., "/database/coverdup.db"),
// and the parent directory must already exist and be writable.
// Use startup.LoadConfig() to ensure proper directory validation before calling this.
// An open failure is permanent; callers should treat it as fatal rather than retry.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// Diagnose potential permission issues
	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// Use WAL mode and other optimizations
	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection only. The mutex serializes statements; pinning the
	// pool keeps database/sql from handing a second connection to a
	// caller that slipped past it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	// Cap WAL growth on large libraries: checkpoint every 1000 pages and
	// truncate the log back to 64MB after checkpoints.
	pragmas := []string{
		"PRAGMA wal_autocheckpoint=1000",
		"PRAGMA journal_size_limit=67108864",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	schema := `
	-- One row per remote server connection
	CREATE TABLE IF NOT EXISTS profiles (
		profile_id TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		lang TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	-- Perceptual hashes, one row per (archive, kind, crop)
	CREATE TABLE IF NOT EXISTS fingerprints (
		profile_id TEXT NOT NULL,
		arcid TEXT NOT NULL,
		kind TEXT NOT NULL,
		crop TEXT NOT NULL,
		hash64 INTEGER NOT NULL,
		aspect_ratio REAL NOT NULL,
		thumb_checksum TEXT NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		PRIMARY KEY (profile_id, arcid, kind, crop)
	);

	CREATE INDEX IF NOT EXISTS idx_fingerprints_hash ON fingerprints(profile_id, kind, crop, hash64);
	CREATE INDEX IF NOT EXISTS idx_fingerprints_checksum ON fingerprints(profile_id, thumb_checksum);

	-- User-confirmed "not a duplicate" pairs, canonical id order
	CREATE TABLE IF NOT EXISTS not_duplicates (
		profile_id TEXT NOT NULL,
		arcid_a TEXT NOT NULL,
		arcid_b TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now')),
		PRIMARY KEY (profile_id, arcid_a, arcid_b)
	);

	-- Crawl checkpoint, one row per profile
	CREATE TABLE IF NOT EXISTS index_state (
		profile_id TEXT PRIMARY KEY,
		last_start INTEGER NOT NULL,
		last_indexed_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);
	`

	start := time.Now()
	_, err := d.db.ExecContext(ctx, schema)
	recordQuery("initialize_schema", start, err)
	return wrapError("initialize_schema", err)
}

// Close closes the database connection. Further operations return ErrNotOpen.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return ErrNotOpen
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// GetStats returns current library statistics for the metrics collector.
// Counts come from the store; on a query failure the last good snapshot is
// returned so gauges do not flap to zero on a transient error.
func (d *Database) GetStats() metrics.Stats {
	stats, err := d.queryStats()
	if err != nil {
		logging.Warn("Failed to collect library stats: %v", err)
		d.statsMu.RLock()
		defer d.statsMu.RUnlock()
		return d.stats
	}

	d.statsMu.Lock()
	d.stats = stats
	d.statsMu.Unlock()
	return stats
}

func (d *Database) queryStats() (metrics.Stats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("library_stats", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var stats metrics.Stats
	if d.db == nil {
		err = ErrNotOpen
		return stats, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(DISTINCT arcid) FROM fingerprints),
			(SELECT COUNT(*) FROM fingerprints),
			(SELECT COUNT(*) FROM not_duplicates)
	`).Scan(&stats.Archives, &stats.Fingerprints, &stats.Exclusions)
	if err != nil {
		err = wrapError("library_stats", err)
		return metrics.Stats{}, err
	}

	stats.MainBytes = fileSize(d.dbPath)
	stats.WALBytes = fileSize(d.dbPath + "-wal")
	stats.SHMBytes = fileSize(d.dbPath + "-shm")

	metrics.DBConnectionsOpen.Set(float64(d.db.Stats().OpenConnections))

	return stats, nil
}

// fileSize stats through the NFS retry helper since the database volume is
// commonly a network mount.
func fileSize(path string) int64 {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return 0
	}
	return info.Size()
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	// Check directory permissions
	dirInfo, err := filesystem.StatWithRetry(dir, filesystem.DefaultRetryConfig())
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	// Check if directory is writable by testing
	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile) // Explicitly ignore cleanup error
	logging.Debug("Database directory is writable")

	// Check main database file
	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	// Check WAL file
	walPath := dbPath + "-wal"
	if walInfo, err := os.Stat(walPath); err == nil {
		logging.Debug("WAL file exists: %s (mode: %v, size: %d bytes)", walPath, walInfo.Mode(), walInfo.Size())
		if walInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("WAL file is read-only! Mode: %v - this will cause write failures", walInfo.Mode())
		}
	}

	return nil
}
