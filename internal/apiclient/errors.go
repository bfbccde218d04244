package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized is a 401 that survived the single refresh-and-retry.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired means the refresh token was rejected and the session was cleared.
	ErrSessionExpired = errors.New("session expired")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
)

// Class tells the UI how to present a failure.
type Class int

const (
	// Terminal failures will not go away by retrying (bad input, not found, auth).
	Terminal Class = iota
	// Transient failures are worth a retry (network, timeouts, 5xx, throttling).
	Transient
)

func (c Class) String() string {
	if c == Transient {
		return "transient"
	}
	return "terminal"
}

// transientHints are substrings of low-level error messages that indicate a
// broken or refused connection.
var transientHints = []string{
	"connection reset",
	"connection refused",
	"connection closed",
	"broken pipe",
	"eof",
	"no such host",
	"i/o timeout",
	"tls handshake timeout",
}

// Error is a non-2xx response from the backend.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	// Message is the backend envelope message when one could be decoded.
	Message string
	Body    string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	if len(msg) > 256 {
		msg = msg[:256] + "..."
	}
	return fmt.Sprintf("%s %s: backend returned %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// Classify decides whether err is transient or terminal.
func Classify(err error) Class {
	if err == nil {
		return Terminal
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, context.Canceled) {
		return Terminal
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= 500:
			return Transient
		default:
			return Terminal
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transient
	}
	cause := strings.ToLower(err.Error())
	for _, hint := range transientHints {
		if strings.Contains(cause, hint) {
			return Transient
		}
	}
	return Terminal
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
