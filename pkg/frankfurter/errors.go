package frankfurter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Use errors.Is to classify an error returned by ServerClient,
// and errors.As with the concrete types below to inspect it.
var (
	ErrValidation      = errors.New("frankfurter: invalid request")
	ErrTransport       = errors.New("frankfurter: transport failure")
	ErrInvalidResponse = errors.New("frankfurter: invalid response")
)

// ValidationError is returned when a request fails its own validation. No network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError wraps a failed round trip or an undecodable response body.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// InvalidResponseError is returned for any non-2xx status, whatever the error body looks like.
type InvalidResponseError struct {
	Status int
	// Body is the raw response body, empty when it could not be read.
	Body string
	// URL is the full request URL, query string included.
	URL string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid response from %s: status %d %s: %s",
		e.URL, e.Status, http.StatusText(e.Status), bodySnippet(e.Body))
}

func (e *InvalidResponseError) Is(target error) bool { return target == ErrInvalidResponse }

func bodySnippet(body string) string {
	const maxLen = 512
	s := strings.TrimSpace(body)
	if s == "" {
		return "<empty>"
	}
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
