package frankfurter

import (
	"net/url"
	"strings"
)

// QueryParam is a single string-valued query parameter.
type QueryParam struct {
	Key   string
	Value string
}

// QueryParams is an ordered list of query parameters. Order is preserved when encoding.
type QueryParams []QueryParam

// Encode renders the parameters as a URL query string in declaration order.
func (p QueryParams) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, param := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(param.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(param.Value))
	}
	return sb.String()
}

// Request is implemented by every endpoint-specific request.
type Request interface {
	// Endpoint returns the path segment, relative to the versioned base URL, of the endpoint to call.
	Endpoint() string
	// Validate reports malformed input before any network I/O happens.
	Validate() error
	// QueryParams encodes the request filters.
	QueryParams() QueryParams
}

// NoQueryParams can be embedded by requests that send no query parameters.
type NoQueryParams struct{}

// QueryParams returns an empty parameter list.
func (NoQueryParams) QueryParams() QueryParams { return nil }

// Setup validates req and returns its endpoint and query parameters.
// The validation error is returned unchanged and nothing else is computed.
func Setup(req Request) (string, QueryParams, error) {
	if req == nil {
		return "", nil, &ValidationError{Reason: "request is nil"}
	}
	if err := req.Validate(); err != nil {
		return "", nil, err
	}
	return req.Endpoint(), req.QueryParams(), nil
}
