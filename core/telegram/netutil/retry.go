// Package netutil classifies Telegram API failures for the retry loops.
package netutil

import (
	"errors"
	"net"
	"net/url"
	"time"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether err is transient: dial or timeout failures,
// flood control, or a 5xx from the Bot API.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var flood tele.FloodError
	if errors.As(err, &flood) {
		return true
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Timeout() || opErr.Op == "dial") {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
		return urlErr.Timeout() || ShouldRetry(urlErr.Err)
	}
	return false
}

// RetryAfter returns the wait requested by flood control, or zero.
func RetryAfter(err error) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return 0
}
