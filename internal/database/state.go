package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// UpsertProfile creates or refreshes a profile row. Every crawl run calls
// this first so the row always reflects the current server address.
func (d *Database) UpsertProfile(ctx context.Context, profile *Profile) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_profile", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, execErr := d.db.ExecContext(ctx, `
		INSERT INTO profiles (profile_id, base_url, lang, updated_at)
		VALUES (?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(profile_id) DO UPDATE SET
			base_url = excluded.base_url,
			lang = excluded.lang,
			updated_at = strftime('%s', 'now')
	`, profile.ID, profile.BaseURL, profile.Lang)
	err = wrapError("upsert_profile", execErr)
	return err
}

// GetProfile returns a profile row, or nil when the profile has never
// been crawled.
func (d *Database) GetProfile(ctx context.Context, profileID string) (*Profile, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_profile", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var profile Profile
	var updatedAt int64
	queryErr := d.db.QueryRowContext(ctx,
		"SELECT profile_id, base_url, lang, updated_at FROM profiles WHERE profile_id = ?",
		profileID,
	).Scan(&profile.ID, &profile.BaseURL, &profile.Lang, &updatedAt)
	if errors.Is(queryErr, sql.ErrNoRows) {
		return nil, nil
	}
	if queryErr != nil {
		err = wrapError("get_profile", queryErr)
		return nil, err
	}

	profile.UpdatedAt = time.Unix(updatedAt, 0)
	return &profile, nil
}

// LastOffset returns the checkpointed listing offset for a profile, or 0
// when the profile has no checkpoint yet.
func (d *Database) LastOffset(ctx context.Context, profileID string) (int, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_index_state", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var offset int
	queryErr := d.db.QueryRowContext(ctx,
		"SELECT last_start FROM index_state WHERE profile_id = ?",
		profileID,
	).Scan(&offset)
	if errors.Is(queryErr, sql.ErrNoRows) {
		return 0, nil
	}
	if queryErr != nil {
		err = wrapError("get_index_state", queryErr)
		return 0, err
	}
	return offset, nil
}

// SetLastOffset advances the crawl checkpoint. Called once per fully
// attempted page, after its tasks drain.
func (d *Database) SetLastOffset(ctx context.Context, profileID string, offset int) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_index_state", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, execErr := d.db.ExecContext(ctx, `
		INSERT INTO index_state (profile_id, last_start, last_indexed_at)
		VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(profile_id) DO UPDATE SET
			last_start = excluded.last_start,
			last_indexed_at = strftime('%s', 'now')
	`, profileID, offset)
	err = wrapError("set_index_state", execErr)
	return err
}

// GetCheckpoint returns the full checkpoint row for a profile. A profile
// that has never checkpointed returns the zero Checkpoint.
func (d *Database) GetCheckpoint(ctx context.Context, profileID string) (Checkpoint, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_index_state", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	var cp Checkpoint
	if d.db == nil {
		err = ErrNotOpen
		return cp, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var indexedAt int64
	queryErr := d.db.QueryRowContext(ctx,
		"SELECT last_start, last_indexed_at FROM index_state WHERE profile_id = ?",
		profileID,
	).Scan(&cp.LastOffset, &indexedAt)
	if errors.Is(queryErr, sql.ErrNoRows) {
		return Checkpoint{}, nil
	}
	if queryErr != nil {
		err = wrapError("get_index_state", queryErr)
		return Checkpoint{}, err
	}

	cp.LastIndexedAt = time.Unix(indexedAt, 0)
	return cp, nil
}
