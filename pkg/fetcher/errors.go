package fetcher

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// isTimeout reports whether err means the attempt's deadline elapsed, as
// opposed to a connection-level failure. url.Error wraps both shapes.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
