package adapter

import "errors"

var (
	// ErrConfiguration signals a missing required credential or endpoint.
	// It is the only error that keeps sync disabled until the user
	// reconfigures; everything else is retried on the next cycle.
	ErrConfiguration = errors.New("sync backend misconfigured")

	// ErrAuth signals that the remote backend rejected the credentials.
	ErrAuth = errors.New("remote rejected credentials")

	// ErrTransport signals a network failure, timeout, or non-2xx response.
	ErrTransport = errors.New("remote transport failure")

	// ErrParse signals a malformed remote payload. Treated like a transport
	// failure for retry purposes.
	ErrParse = errors.New("malformed remote payload")
)
