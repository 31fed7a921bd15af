package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	// IsSuccess reports a 2xx status.
	IsSuccess() bool
}

// Client abstracts HTTP GET round trips so callers can inject stubs or a differently tuned transport.
// A non-nil error means no response was obtained (connection refused, timeout, cancelled context).
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
