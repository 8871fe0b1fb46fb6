package client

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError is returned by the request wrapper when no usable HTTP response was received:
// the request could not be built, the connection failed, the per-attempt deadline passed or the
// body could not be read. Domain functions convert it to a NETWORK_ERROR response.
type TransportError struct {
	Op      string
	URL     string
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s %s: request timed out", e.Op, e.URL)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// newTransportError creates a TransportError, supply the operation that failed and the url being called
func newTransportError(op, url string, err error) *TransportError {
	return &TransportError{
		Op:      op,
		URL:     url,
		Timeout: isTimeout(err),
		Err:     err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
