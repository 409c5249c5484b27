package export

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

type circuitBreakerCallback func(context.Context) (*http.Response, error)

// circuitBreaker rejects requests to a Splunk host after openThreshold
// consecutive failures. When cooldown passes, a single trial request is
// let through: success closes the breaker, failure opens it for another
// cooldown.
type circuitBreaker struct {
	mutex       sync.Mutex
	failures    uint32
	openedUntil time.Time
	trial       bool

	openThreshold uint32
	cooldown      time.Duration
	now           func() time.Time
}

func (c *circuitBreaker) Do(ctx context.Context, callback circuitBreakerCallback) (*http.Response, error) {
	allowed, trial := c.acquire()
	if !allowed {
		return nil, ErrCircuitBreakerOpened
	}

	resp, err := callback(ctx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		closeResponse(resp)
		c.release(trial, ErrCircuitBreakerIgnore)

		return nil, ctxErr
	}

	c.release(trial, err)

	return resp, err
}

// acquire reports if a request is allowed and if it is a trial one.
func (c *circuitBreaker) acquire() (bool, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.failures < c.openThreshold {
		return true, false
	}

	if c.trial || c.now().Before(c.openedUntil) {
		return false, false
	}

	c.trial = true

	return true, true
}

func (c *circuitBreaker) release(trial bool, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if trial {
		c.trial = false
	}

	switch {
	case err == nil:
		c.failures = 0
	case errors.Is(err, ErrCircuitBreakerIgnore):
	default:
		c.failures++

		if c.failures >= c.openThreshold {
			c.openedUntil = c.now().Add(c.cooldown)
		}
	}
}

func newCircuitBreaker(openThreshold uint32, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		openThreshold: openThreshold,
		cooldown:      cooldown,
		now:           time.Now,
	}
}
