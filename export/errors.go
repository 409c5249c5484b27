package export

import "errors"

var (
	// ErrCircuitBreakerOpened is returned if circuit breaker rejects a
	// request.
	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")

	// ErrCircuitBreakerIgnore is returned by a callback if its failure
	// should not count.
	ErrCircuitBreakerIgnore = errors.New("failure is ignored by circuit breaker")

	// ErrUnsupportedOutput is returned for unknown output types.
	ErrUnsupportedOutput = errors.New("unsupported output type")

	// ErrBadStatus is returned if Splunk responds with error status.
	ErrBadStatus = errors.New("bad response status")
)
