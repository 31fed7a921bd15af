package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/frankfurter/internal/domain"
)

var (
	fingerprintBucket = []byte("fingerprints")
	latestBucket      = []byte("latest")
)

const expiryValueBytes = 8

// boltStore implements Store on top of BoltDB.
// fingerprints: fingerprint -> big-endian unix expiry.
// latest: watch id -> JSON encoded domain.RateSnapshot.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	snapshotTTL     time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{fingerprintBucket, latestBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		snapshotTTL:     opts.SnapshotTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) SeenSnapshot(fingerprint string) (bool, error) {
	if b == nil || b.db == nil {
		return false, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := bucketFor(tx, fingerprintBucket)
		if err != nil {
			return err
		}
		key := []byte(fingerprint)
		value := bucket.Get(key)
		if value == nil {
			return nil
		}
		if expiry, ok := decodeExpiry(value); ok && expiry.After(now) {
			seen = true
			return nil
		}
		return bucket.Delete(key)
	})
	return seen, err
}

func (b *boltStore) RecordSnapshot(s domain.RateSnapshot) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	encoded, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		fingerprints, err := bucketFor(tx, fingerprintBucket)
		if err != nil {
			return err
		}
		if err := fingerprints.Put([]byte(s.Fingerprint()), encodeExpiry(now.Add(b.snapshotTTL))); err != nil {
			return fmt.Errorf("store fingerprint: %w", err)
		}

		latest, err := bucketFor(tx, latestBucket)
		if err != nil {
			return err
		}
		if err := latest.Put([]byte(s.WatchID), encoded); err != nil {
			return fmt.Errorf("store latest snapshot: %w", err)
		}
		return nil
	})
}

func (b *boltStore) LatestSnapshot(watchID string) (domain.RateSnapshot, bool, error) {
	var (
		snapshot domain.RateSnapshot
		found    bool
	)
	if b == nil || b.db == nil {
		return snapshot, false, nil
	}

	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := bucketFor(tx, latestBucket)
		if err != nil {
			return err
		}
		raw := bucket.Get([]byte(watchID))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return fmt.Errorf("decode latest snapshot for %q: %w", watchID, err)
		}
		found = true
		return nil
	})
	return snapshot, found, err
}

// maybeCleanupExpired removes expired fingerprints at most once per cleanup interval.
// Latest snapshots are kept: there is exactly one per watch.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	if now.Sub(time.Unix(b.lastCleanup.Load(), 0)) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := bucketFor(tx, fingerprintBucket)
		if err != nil {
			return err
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if expiry, ok := decodeExpiry(v); ok && expiry.After(now) {
				continue
			}
			if err := cursor.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func bucketFor(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	bucket := tx.Bucket(name)
	if bucket == nil {
		return nil, fmt.Errorf("bucket %s missing", name)
	}
	return bucket, nil
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
