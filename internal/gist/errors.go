package gist

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrFileNotFound is returned by Get when the gist has no data file.
	ErrFileNotFound = errors.New("data file not found in gist")

	// ErrMissingID is returned when an operation needs a gist id and got none.
	ErrMissingID = errors.New("gist id is required")
)

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// NetworkError wraps a transport failure: DNS, refused connection, timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// statusMessage is used when the API response carries no message field.
func statusMessage(op string, status int) string {
	switch status {
	case http.StatusNotFound:
		return "gist not found"
	case http.StatusUnauthorized:
		return "invalid token"
	case http.StatusForbidden:
		return "access denied or rate limited"
	default:
		return fmt.Sprintf("%s failed (%d)", op, status)
	}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.Status == http.StatusUnauthorized
}
