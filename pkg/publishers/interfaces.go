package publishers

import "context"

// Publisher delivers rate events to a downstream sink (HTTP, SQS, SNS, Pub/Sub).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt RateEvent) error
}

// Closer is implemented by publishers holding client connections.
type Closer interface {
	Close() error
}
