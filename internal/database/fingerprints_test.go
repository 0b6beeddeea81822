package database

import (
	"context"
	"testing"
)

func TestUpsertFingerprintIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	rec := testFingerprint("p", "arc1", KindDifference, CropCenter90, 0xABCD)

	if err := db.UpsertFingerprint(ctx, rec); err != nil {
		t.Fatalf("first UpsertFingerprint failed: %v", err)
	}
	if err := db.UpsertFingerprint(ctx, rec); err != nil {
		t.Fatalf("second UpsertFingerprint failed: %v", err)
	}

	var count int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM fingerprints").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("row count after double upsert = %d, want 1", count)
	}

	// Re-upsert with a new hash replaces the value fields in place.
	rec.Hash = 0x1234
	rec.Checksum = "updated-checksum"
	if err := db.UpsertFingerprint(ctx, rec); err != nil {
		t.Fatalf("update UpsertFingerprint failed: %v", err)
	}

	var hash int64
	var checksum string
	err := db.db.QueryRow(
		"SELECT hash64, thumb_checksum FROM fingerprints WHERE profile_id = 'p' AND arcid = 'arc1'",
	).Scan(&hash, &checksum)
	if err != nil {
		t.Fatal(err)
	}
	if uint64(hash) != 0x1234 {
		t.Errorf("hash64 = %#x, want 0x1234", uint64(hash))
	}
	if checksum != "updated-checksum" {
		t.Errorf("thumb_checksum = %q, want updated-checksum", checksum)
	}
}

func TestUpsertFingerprintHighBitRoundTrip(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	// A hash with the top bit set exercises the signed/unsigned storage
	// conversion.
	const highHash = uint64(0xFFFF_FFFF_FFFF_FFFF)

	for _, rec := range []*FingerprintRecord{
		testFingerprint("p", "arc1", KindDifference, CropCenter90, highHash),
		testFingerprint("p", "arc1", KindAverage, CropCenter90, highHash-1),
	} {
		if err := db.UpsertFingerprint(ctx, rec); err != nil {
			t.Fatalf("UpsertFingerprint failed: %v", err)
		}
	}

	fingerprints, err := db.LoadScanFingerprints(ctx, "p")
	if err != nil {
		t.Fatalf("LoadScanFingerprints failed: %v", err)
	}
	if len(fingerprints) != 1 {
		t.Fatalf("got %d scan fingerprints, want 1", len(fingerprints))
	}
	if fingerprints[0].DiffHash != highHash {
		t.Errorf("DiffHash = %#x, want %#x", fingerprints[0].DiffHash, highHash)
	}
	if fingerprints[0].AvgHash != highHash-1 {
		t.Errorf("AvgHash = %#x, want %#x", fingerprints[0].AvgHash, highHash-1)
	}
}

func TestHasFingerprint(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	has, err := db.HasFingerprint(ctx, "p", "arc1")
	if err != nil {
		t.Fatalf("HasFingerprint failed: %v", err)
	}
	if has {
		t.Error("HasFingerprint = true before any upsert")
	}

	if err := db.UpsertFingerprint(ctx, testFingerprint("p", "arc1", KindDifference, CropFull, 7)); err != nil {
		t.Fatalf("UpsertFingerprint failed: %v", err)
	}

	has, err = db.HasFingerprint(ctx, "p", "arc1")
	if err != nil {
		t.Fatalf("HasFingerprint failed: %v", err)
	}
	if !has {
		t.Error("HasFingerprint = false after upsert")
	}

	// Presence is scoped to the profile.
	has, err = db.HasFingerprint(ctx, "other-profile", "arc1")
	if err != nil {
		t.Fatalf("HasFingerprint failed: %v", err)
	}
	if has {
		t.Error("HasFingerprint leaked across profiles")
	}
}

func TestLoadScanFingerprintsRequiresAllComponents(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	// arc-complete has everything.
	upsertCompleteArchive(t, db, "p", "arc-complete", 10)

	// arc-diff-only is missing its center-crop average hash.
	if err := db.UpsertFingerprint(ctx, testFingerprint("p", "arc-diff-only", KindDifference, CropCenter90, 20)); err != nil {
		t.Fatal(err)
	}

	// arc-full-only has both kinds but only over the full image.
	if err := db.UpsertFingerprint(ctx, testFingerprint("p", "arc-full-only", KindDifference, CropFull, 30)); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertFingerprint(ctx, testFingerprint("p", "arc-full-only", KindAverage, CropFull, 31)); err != nil {
		t.Fatal(err)
	}

	// arc-no-checksum has the right rows but an empty checksum.
	noChecksum := testFingerprint("p", "arc-no-checksum", KindDifference, CropCenter90, 40)
	noChecksum.Checksum = ""
	if err := db.UpsertFingerprint(ctx, noChecksum); err != nil {
		t.Fatal(err)
	}
	noChecksumAvg := testFingerprint("p", "arc-no-checksum", KindAverage, CropCenter90, 41)
	noChecksumAvg.Checksum = ""
	if err := db.UpsertFingerprint(ctx, noChecksumAvg); err != nil {
		t.Fatal(err)
	}

	fingerprints, err := db.LoadScanFingerprints(ctx, "p")
	if err != nil {
		t.Fatalf("LoadScanFingerprints failed: %v", err)
	}

	if len(fingerprints) != 1 {
		t.Fatalf("got %d scan fingerprints, want 1 (only the complete archive)", len(fingerprints))
	}
	if fingerprints[0].ArchiveID != "arc-complete" {
		t.Errorf("ArchiveID = %q, want arc-complete", fingerprints[0].ArchiveID)
	}
}

func TestLoadScanFingerprintsOrdered(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	// Insert out of order; the snapshot must come back sorted by arcid.
	for _, arcid := range []string{"c-arc", "a-arc", "b-arc"} {
		upsertCompleteArchive(t, db, "p", arcid, 50)
	}

	fingerprints, err := db.LoadScanFingerprints(ctx, "p")
	if err != nil {
		t.Fatalf("LoadScanFingerprints failed: %v", err)
	}

	want := []string{"a-arc", "b-arc", "c-arc"}
	if len(fingerprints) != len(want) {
		t.Fatalf("got %d scan fingerprints, want %d", len(fingerprints), len(want))
	}
	for i, arcid := range want {
		if fingerprints[i].ArchiveID != arcid {
			t.Errorf("fingerprints[%d].ArchiveID = %q, want %q", i, fingerprints[i].ArchiveID, arcid)
		}
	}
}

func TestLoadScanFingerprintsEmptyProfile(t *testing.T) {
	db, _ := setupTestDB(t)

	fingerprints, err := db.LoadScanFingerprints(context.Background(), "empty")
	if err != nil {
		t.Fatalf("LoadScanFingerprints failed: %v", err)
	}
	if len(fingerprints) != 0 {
		t.Errorf("got %d scan fingerprints for empty profile, want 0", len(fingerprints))
	}
}

func TestCountFingerprints(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	rows, archives, err := db.CountFingerprints(ctx, "p")
	if err != nil {
		t.Fatalf("CountFingerprints failed: %v", err)
	}
	if rows != 0 || archives != 0 {
		t.Errorf("empty counts = (%d, %d), want (0, 0)", rows, archives)
	}

	upsertCompleteArchive(t, db, "p", "arc1", 10)
	upsertCompleteArchive(t, db, "p", "arc2", 20)

	rows, archives, err = db.CountFingerprints(ctx, "p")
	if err != nil {
		t.Fatalf("CountFingerprints failed: %v", err)
	}
	if rows != 8 {
		t.Errorf("rows = %d, want 8", rows)
	}
	if archives != 2 {
		t.Errorf("archives = %d, want 2", archives)
	}
}
