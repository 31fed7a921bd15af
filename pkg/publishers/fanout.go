package publishers

import (
	"context"
	"errors"
	"fmt"
)

// Fanout delivers each rate event to every enabled sink in configuration order.
type Fanout struct {
	publishers []Publisher
}

// NewFanout keeps the non-nil publishers of pubs.
func NewFanout(pubs []Publisher) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p == nil {
			continue
		}
		cp = append(cp, p)
	}
	return &Fanout{publishers: cp}
}

// Publish sends evt to every sink, even after one fails. It returns how many
// sinks accepted the event and the joined errors of the rest; the watcher
// records a snapshot only when the count is non-zero.
func (f *Fanout) Publish(ctx context.Context, evt RateEvent) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var (
		delivered int
		failures  []error
	)
	for _, sink := range f.publishers {
		err := sink.Publish(ctx, evt)
		if err == nil {
			delivered++
			continue
		}
		failures = append(failures, fmt.Errorf("%s sink %q rejected rate event for watch %s: %w",
			sink.Type(), sink.ID(), evt.WatchID, err))
	}
	return delivered, errors.Join(failures...)
}

// Size is the number of sinks a rate event goes to.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases the client connections held by the sinks.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return CloseAll(f.publishers)
}
