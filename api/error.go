package api

import "errors"

var (
	// ErrAuthFail indicates an expired or rejected credential. Callers must
	// re-login before retrying- the request itself is not retryable.
	ErrAuthFail = errors.New("authorization failed")

	// ErrMustRetry indicates a transient upstream failure
	ErrMustRetry = errors.New("must retry")

	// ErrTimeout indicates that the cycle wall-clock budget was exceeded
	ErrTimeout = errors.New("timeout")

	// ErrNotAvailable indicates that no data has been received yet
	ErrNotAvailable = errors.New("not available")
)
