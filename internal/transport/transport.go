package transport

import (
	"errors"
	"fmt"
	"net/url"
)

// Request is a single fetch over one network path.
type Request struct {
	Kind    string
	URL     string
	Body    string
	Headers map[string]string
	// Proxy is nil for a direct connection.
	Proxy *url.URL
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// ErrMalformed marks a response that arrived but could not be decoded.
var ErrMalformed = errors.New("malformed response")

// ErrInvalidRequest marks a request that could not be sent as written, such
// as one with an invalid header.
var ErrInvalidRequest = errors.New("invalid request")

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
