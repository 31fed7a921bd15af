package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/frankfurter/internal/domain"
)

// Package storage remembers which rate snapshots were already published.

// Store tracks published snapshot fingerprints and the last snapshot of every watch.
type Store interface {
	Close() error
	// SeenSnapshot reports whether a snapshot with this fingerprint was recorded and has not expired.
	SeenSnapshot(fingerprint string) (bool, error)
	// RecordSnapshot marks the snapshot fingerprint and stores it as the latest one of its watch.
	RecordSnapshot(s domain.RateSnapshot) error
	// LatestSnapshot returns the last recorded snapshot of a watch.
	LatestSnapshot(watchID string) (domain.RateSnapshot, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) SeenSnapshot(string) (bool, error)         { return false, nil }
func (noopStore) RecordSnapshot(domain.RateSnapshot) error  { return nil }
func (noopStore) LatestSnapshot(string) (domain.RateSnapshot, bool, error) {
	return domain.RateSnapshot{}, false, nil
}
