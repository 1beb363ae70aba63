package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures, timeouts and an open circuit breaker.
	ErrTransport = errors.New("transport failure")
	// ErrUnauthorized is returned for a 401 after the global logout hook ran.
	ErrUnauthorized = errors.New("authentication failed - please login again")
	// ErrBadResponse is a 2xx reply whose body is not the expected JSON.
	ErrBadResponse = errors.New("malformed response body")
)

// HTTPError is any non-2xx response other than 401.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http error! status: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http error! status: %d", e.Status)
}

// Message extracts the server message from err, or returns def.
func Message(err error, def string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return def
}

// degradable reports whether err may be replaced by fallback data.
func degradable(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	var httpErr *HTTPError
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrBadResponse) || errors.As(err, &httpErr)
}
