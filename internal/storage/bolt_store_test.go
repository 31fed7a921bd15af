package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samvad-hq/frankfurter/internal/domain"
)

func sampleSnapshot(date string) domain.RateSnapshot {
	return domain.RateSnapshot{
		WatchID: "eur-usd",
		Base:    "EUR",
		Date:    date,
		Amount:  decimal.NewFromInt(1),
		Rates:   map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.0956")},
	}
}

func TestBoltStoreRecordsAndExpiresFingerprints(t *testing.T) {
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "nested", "snapshots.db"), Options{
		SnapshotTTL:     time.Hour,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	clock := time.Now()
	store.now = func() time.Time { return clock }

	snap := sampleSnapshot("2024-01-02")
	seen, err := store.SeenSnapshot(snap.Fingerprint())
	if err != nil || seen {
		t.Fatalf("expected unseen snapshot, seen=%v err=%v", seen, err)
	}

	if err := store.RecordSnapshot(snap); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}

	seen, err = store.SeenSnapshot(snap.Fingerprint())
	if err != nil || !seen {
		t.Fatalf("expected snapshot recorded, got seen=%v err=%v", seen, err)
	}

	clock = clock.Add(2 * time.Hour)
	seen, err = store.SeenSnapshot(snap.Fingerprint())
	if err != nil {
		t.Fatalf("SeenSnapshot after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected fingerprint to expire")
	}
	if store.lastCleanup.Load() != clock.Unix() {
		t.Fatalf("expected cleanup pass to run")
	}
}

func TestBoltStoreLatestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	first, err := NewStore("bbolt", path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, found, err := first.LatestSnapshot("eur-usd"); err != nil || found {
		t.Fatalf("expected no latest snapshot, found=%v err=%v", found, err)
	}
	if err := first.RecordSnapshot(sampleSnapshot("2024-01-02")); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if err := first.RecordSnapshot(sampleSnapshot("2024-01-03")); err != nil {
		t.Fatalf("RecordSnapshot: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := NewStore("BBOLT", path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	latest, found, err := second.LatestSnapshot("eur-usd")
	if err != nil || !found {
		t.Fatalf("expected latest snapshot, found=%v err=%v", found, err)
	}
	if latest.Date != "2024-01-03" {
		t.Fatalf("expected most recent snapshot, got %s", latest.Date)
	}
	if !latest.Rates["USD"].Equal(decimal.RequireFromString("1.0956")) {
		t.Fatalf("unexpected rates %v", latest.Rates)
	}
	seen, err := second.SeenSnapshot(sampleSnapshot("2024-01-02").Fingerprint())
	if err != nil || !seen {
		t.Fatalf("expected fingerprint to survive reopen, seen=%v err=%v", seen, err)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	snap := sampleSnapshot("2024-01-02")
	if err := store.RecordSnapshot(snap); err != nil {
		t.Fatalf("noop store RecordSnapshot: %v", err)
	}
	if seen, _ := store.SeenSnapshot(snap.Fingerprint()); seen {
		t.Fatalf("noop store must never report seen")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
