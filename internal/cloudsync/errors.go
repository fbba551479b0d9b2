package cloudsync

import (
	"errors"
	"net/http"

	"github.com/dailyfocus/dailyfocus/internal/gist"
)

var (
	// ErrMissingCredential means no API token is configured.
	ErrMissingCredential = errors.New("sync credential is not configured")

	// ErrMissingRemoteHandle means no gist id was supplied or stored.
	ErrMissingRemoteHandle = errors.New("remote handle is not configured")

	// ErrInvalidRemoteFormat means the remote document failed validation.
	ErrInvalidRemoteFormat = errors.New("remote document has an invalid format")

	// ErrBusy means another upload or download is in flight.
	ErrBusy = errors.New("a sync operation is already in progress")
)

type (
	// HTTPError is a non-2xx answer from the remote store.
	HTTPError = gist.HTTPError

	// NetworkError is a transport failure talking to the remote store.
	NetworkError = gist.NetworkError
)

// IsRetryable reports whether retrying the same operation later may succeed:
// network failures, rate limiting and server errors.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status == http.StatusTooManyRequests || he.Status >= 500
	}
	return false
}
