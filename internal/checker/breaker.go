package checker

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrEngineSuspended is returned when an engine has failed too many times
// in a row and its cooldown has not yet elapsed.
var ErrEngineSuspended = eris.New("engine suspended after repeated failures")

const (
	breakerThreshold = 5
	breakerCooldown  = 30 * time.Second
)

// breaker suspends an answer engine after consecutive failures so a broken
// or rate-limited provider is not hammered for the rest of a run. After the
// cooldown a single probe is let through; success closes the breaker again,
// failure restarts the cooldown.
type breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration

	failures int
	openedAt time.Time

	now func() time.Time
}

func newBreaker(threshold int, cooldown time.Duration) *breaker {
	return &breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// allow reports whether a request may proceed. While suspended it returns
// ErrEngineSuspended until the cooldown elapses, then admits a probe.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failures < b.threshold {
		return nil
	}
	if b.now().Sub(b.openedAt) >= b.cooldown {
		return nil // probe
	}
	return ErrEngineSuspended
}

// record tallies the outcome of an engine call. Any success clears the
// failure streak; a failure at or past the threshold restarts the cooldown.
func (b *breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = b.now()
	}
}
