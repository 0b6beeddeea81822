package database

import (
	"context"
	"time"
)

// UpsertFingerprint inserts or replaces one (archive, kind, crop) hash row.
// Re-indexing an archive overwrites the value fields in place.
func (d *Database) UpsertFingerprint(ctx context.Context, rec *FingerprintRecord) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_fingerprint", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
	INSERT INTO fingerprints (profile_id, arcid, kind, crop, hash64, aspect_ratio, thumb_checksum, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now'))
	ON CONFLICT(profile_id, arcid, kind, crop) DO UPDATE SET
		hash64 = excluded.hash64,
		aspect_ratio = excluded.aspect_ratio,
		thumb_checksum = excluded.thumb_checksum,
		updated_at = strftime('%s', 'now')
	`

	// hash64 is stored as the signed 64-bit image of the hash; the scan
	// side converts back with uint64().
	_, execErr := d.db.ExecContext(ctx, query,
		rec.ProfileID,
		rec.ArchiveID,
		rec.Kind,
		rec.Crop,
		int64(rec.Hash),
		rec.AspectRatio,
		rec.Checksum,
	)
	err = wrapError("upsert_fingerprint", execErr)
	return err
}

// HasFingerprint reports whether at least one hash row exists for an archive.
// The crawler uses this for skip-already-indexed runs.
func (d *Database) HasFingerprint(ctx context.Context, profileID, arcid string) (bool, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("has_fingerprint", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var exists bool
	queryErr := d.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM fingerprints WHERE profile_id = ? AND arcid = ?)",
		profileID, arcid,
	).Scan(&exists)
	if queryErr != nil {
		err = wrapError("has_fingerprint", queryErr)
		return false, err
	}
	return exists, nil
}

// LoadScanFingerprints returns the duplicate-scan view for a profile:
// one row per archive holding its center-crop difference hash, center-crop
// average hash, and thumbnail checksum, ordered by archive ID. Archives
// still missing any of the three components are left out.
func (d *Database) LoadScanFingerprints(ctx context.Context, profileID string) ([]ScanFingerprint, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("scan_fingerprints", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return nil, err
	}

	// Full snapshots of large libraries take longer than point queries.
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	query := `
	SELECT d.arcid, d.thumb_checksum, d.hash64, a.hash64
	FROM fingerprints d
	JOIN fingerprints a
		ON a.profile_id = d.profile_id
		AND a.arcid = d.arcid
		AND a.kind = ?
		AND a.crop = ?
	WHERE d.profile_id = ?
		AND d.kind = ?
		AND d.crop = ?
		AND d.thumb_checksum != ''
	ORDER BY d.arcid
	`

	rows, queryErr := d.db.QueryContext(ctx, query,
		KindAverage, CropCenter90,
		profileID,
		KindDifference, CropCenter90,
	)
	if queryErr != nil {
		err = wrapError("scan_fingerprints", queryErr)
		return nil, err
	}
	defer rows.Close()

	var fingerprints []ScanFingerprint
	for rows.Next() {
		var fp ScanFingerprint
		var diffHash, avgHash int64
		if scanErr := rows.Scan(&fp.ArchiveID, &fp.Checksum, &diffHash, &avgHash); scanErr != nil {
			err = wrapError("scan_fingerprints", scanErr)
			return nil, err
		}
		fp.DiffHash = uint64(diffHash)
		fp.AvgHash = uint64(avgHash)
		fingerprints = append(fingerprints, fp)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		err = wrapError("scan_fingerprints", rowsErr)
		return nil, err
	}

	return fingerprints, nil
}

// CountFingerprints returns the number of hash rows and distinct archives
// stored for a profile.
func (d *Database) CountFingerprints(ctx context.Context, profileID string) (rows, archives int, err error) {
	start := time.Now()
	defer func() { recordQuery("count_fingerprints", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return 0, 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	queryErr := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT arcid)
		FROM fingerprints
		WHERE profile_id = ?
	`, profileID).Scan(&rows, &archives)
	if queryErr != nil {
		err = wrapError("count_fingerprints", queryErr)
		return 0, 0, err
	}
	return rows, archives, nil
}
