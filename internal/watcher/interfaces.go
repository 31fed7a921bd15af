package watcher

import (
	"context"

	"github.com/samvad-hq/frankfurter/internal/domain"
	"github.com/samvad-hq/frankfurter/pkg/frankfurter"
	"github.com/samvad-hq/frankfurter/pkg/publishers"
)

// RateSource fetches the rates of a single day. *frankfurter.ServerClient satisfies it.
type RateSource interface {
	Convert(ctx context.Context, req frankfurter.ConvertRequest) (*frankfurter.ConvertResponse, error)
}

// EventPublisher publishes rate events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.RateEvent) (int, error)
}

// SnapshotStore remembers published snapshots.
type SnapshotStore interface {
	SeenSnapshot(fingerprint string) (bool, error)
	RecordSnapshot(s domain.RateSnapshot) error
	LatestSnapshot(watchID string) (domain.RateSnapshot, bool, error)
}

// Logger is the logging surface the watcher relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}
