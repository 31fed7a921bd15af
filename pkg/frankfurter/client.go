// Package frankfurter is a client for the Frankfurter currency exchange-rate API.
//
// A ServerClient owns a normalized, versioned base URL and a shared transport.
// Each endpoint is exposed as a typed method taking its own request type:
// Convert (rates of one day), Period (rates over a date range) and Currencies
// (supported currency codes). Requests validate themselves before any network
// I/O; failures are reported as ValidationError, TransportError or
// InvalidResponseError. Nothing is retried, cached or logged as an error here.
package frankfurter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/frankfurter/pkg/httpclient"
)

const (
	// DefaultURL is the public Frankfurter API, already versioned.
	DefaultURL = "https://api.frankfurter.dev/v1"
	// APIVersion is the path segment appended to every caller-supplied base URL.
	APIVersion = "v1"
)

var errNoResponse = errors.New("transport returned no response")

var defaultHeaders = map[string]string{"Accept": "application/json"}

// Logger is the logging surface used for debug traces of dispatched requests.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}

// ServerClient performs requests against a Frankfurter API.
// It is immutable once built and safe for concurrent use; the With* methods return modified copies.
type ServerClient struct {
	url    *url.URL
	client httpclient.Client
	log    Logger
}

// DefaultHTTPClient returns the transport bound by the constructors. It has no timeout of its own.
func DefaultHTTPClient() httpclient.Client { return httpclient.NewRestyClient(0) }

// NewDefault returns a client for DefaultURL.
func NewDefault() *ServerClient {
	u, err := url.Parse(DefaultURL)
	if err != nil {
		panic(fmt.Sprintf("invalid fallback Frankfurter API URL %q: %v", DefaultURL, err))
	}
	return &ServerClient{url: u, client: DefaultHTTPClient(), log: noopLogger{}}
}

// New returns a client for the API hosted at apiURL. Trailing slashes are removed
// and the API version segment is appended once, so "https://host/api/" becomes
// "https://host/api/v1". The query and fragment of apiURL are dropped.
func New(apiURL *url.URL) *ServerClient {
	if apiURL == nil {
		return NewDefault()
	}
	return &ServerClient{url: normalizeBaseURL(apiURL), client: DefaultHTTPClient(), log: noopLogger{}}
}

// Parse parses rawURL, which must be absolute, and returns New for it.
func Parse(rawURL string) (*ServerClient, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse frankfurter url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("frankfurter url %q is not absolute", rawURL)
	}
	return New(u), nil
}

// normalizeBaseURL strips trailing empty path segments, never going below one
// segment, then appends APIVersion.
func normalizeBaseURL(in *url.URL) *url.URL {
	u := *in
	u.RawQuery, u.ForceQuery = "", false
	u.Fragment, u.RawFragment = "", ""

	segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
	for len(segments) > 1 && segments[len(segments)-1] == "" {
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 1 && segments[0] == "" {
		segments = segments[:0]
	}
	segments = append(segments, APIVersion)

	u.Path = "/" + strings.Join(segments, "/")
	u.RawPath = ""
	return &u
}

// WithClient returns a copy of c that sends requests through client. c is left unchanged.
func (c *ServerClient) WithClient(client httpclient.Client) *ServerClient {
	cp := c.Clone()
	if client != nil {
		cp.client = client
	}
	return cp
}

// WithLogger returns a copy of c that traces dispatched requests to log.
func (c *ServerClient) WithLogger(log Logger) *ServerClient {
	cp := c.Clone()
	if log != nil {
		cp.log = log
	}
	return cp
}

// Clone returns a client sharing c's base URL and transport.
func (c *ServerClient) Clone() *ServerClient {
	cp := *c
	return &cp
}

// URL returns a copy of the effective base URL.
func (c *ServerClient) URL() *url.URL {
	u := *c.url
	return &u
}

// buildEndpoint appends endpoint, with any '/' removed, to the base URL and attaches params.
func (c *ServerClient) buildEndpoint(endpoint string, params QueryParams) *url.URL {
	u := *c.url
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.ReplaceAll(endpoint, "/", "")
	u.RawPath = ""
	u.RawQuery = params.Encode()
	return &u
}

// IsServerAvailable sends a GET to the root of the configured host and reports
// whether it answered with a 2xx status. Every failure yields false.
func (c *ServerClient) IsServerAvailable(ctx context.Context) bool {
	root := *c.url
	root.Path, root.RawPath, root.RawQuery = "/", "", ""

	resp, err := c.client.Get(ctx, root.String(), nil)
	return err == nil && resp != nil && resp.IsSuccess()
}

// get validates req, sends it and decodes a successful response body into T.
func get[T any](ctx context.Context, c *ServerClient, req Request) (*T, error) {
	endpoint, params, err := Setup(req)
	if err != nil {
		return nil, err
	}

	target := c.buildEndpoint(endpoint, params).String()
	c.log.DebugObj("frankfurter request dispatched", "frankfurter_request", map[string]any{
		"endpoint": endpoint,
		"url":      target,
	})

	resp, err := c.client.Get(ctx, target, defaultHeaders)
	if err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}
	if resp == nil {
		return nil, &TransportError{URL: target, Err: errNoResponse}
	}
	if !resp.IsSuccess() {
		return nil, &InvalidResponseError{
			Status: resp.StatusCode(),
			Body:   string(resp.Body()),
			URL:    target,
		}
	}

	var out T
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, &TransportError{URL: target, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// Convert requests the exchange rates of one day, the latest by default.
func (c *ServerClient) Convert(ctx context.Context, req ConvertRequest) (*ConvertResponse, error) {
	return get[ConvertResponse](ctx, c, req)
}

// Period requests the historical exchange rates of a time period.
func (c *ServerClient) Period(ctx context.Context, req PeriodRequest) (*PeriodResponse, error) {
	return get[PeriodResponse](ctx, c, req)
}

// Currencies requests the supported currency codes and their full names.
func (c *ServerClient) Currencies(ctx context.Context, req CurrenciesRequest) (*CurrenciesResponse, error) {
	return get[CurrenciesResponse](ctx, c, req)
}
