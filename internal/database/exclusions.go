package database

import (
	"context"
	"fmt"
	"time"
)

// AddNotDuplicate records a user decision that two archives are not
// duplicates of each other. The pair is stored in canonical order, so
// (a, b) and (b, a) are the same exclusion, and repeating the call is
// a no-op.
func (d *Database) AddNotDuplicate(ctx context.Context, profileID, a, b string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("add_exclusion", start, err) }()

	if a == b {
		err = fmt.Errorf("add_exclusion: identical archive ids %q", a)
		return err
	}
	pair := CanonicalPair(a, b)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, execErr := d.db.ExecContext(ctx, `
		INSERT INTO not_duplicates (profile_id, arcid_a, arcid_b, created_at)
		VALUES (?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(profile_id, arcid_a, arcid_b) DO NOTHING
	`, profileID, pair.A, pair.B)
	err = wrapError("add_exclusion", execErr)
	return err
}

// LoadNotDuplicates returns every exclusion pair for a profile as a set
// keyed by canonical Pair, the form the duplicate scan consumes.
func (d *Database) LoadNotDuplicates(ctx context.Context, profileID string) (map[Pair]struct{}, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_exclusions", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		err = ErrNotOpen
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, queryErr := d.db.QueryContext(ctx,
		"SELECT arcid_a, arcid_b FROM not_duplicates WHERE profile_id = ?",
		profileID,
	)
	if queryErr != nil {
		err = wrapError("list_exclusions", queryErr)
		return nil, err
	}
	defer rows.Close()

	pairs := make(map[Pair]struct{})
	for rows.Next() {
		var pair Pair
		if scanErr := rows.Scan(&pair.A, &pair.B); scanErr != nil {
			err = wrapError("list_exclusions", scanErr)
			return nil, err
		}
		pairs[pair] = struct{}{}
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		err = wrapError("list_exclusions", rowsErr)
		return nil, err
	}

	return pairs, nil
}
