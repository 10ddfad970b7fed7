package source

import (
	"math/rand"
	"sync"
	"time"
)

// Default retry delays.
const (
	InitialBackoff    = 200 * time.Millisecond
	MaxBackoff        = 5 * time.Second
	BackoffMultiplier = 2.0
	JitterFactor      = 0.25
)

// BackoffConfig customizes a Backoff. Zero values select the defaults.
type BackoffConfig struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// withDefaults fills unset fields and clamps the rest into range.
func (c BackoffConfig) withDefaults() BackoffConfig {
	if c.Initial <= 0 {
		c.Initial = InitialBackoff
	}
	if c.Max <= 0 {
		c.Max = MaxBackoff
	}
	c.Max = max(c.Max, c.Initial)
	if c.Multiplier <= 1 {
		c.Multiplier = BackoffMultiplier
	}
	c.Jitter = max(c.Jitter, 0)
	return c
}

// Backoff yields the delays between collaborator retries: the n-th delay
// is Initial*Multiplier^n capped at Max, stretched by up to Jitter of
// itself so that concurrent jobs hitting the same repository spread out.
type Backoff struct {
	cfg BackoffConfig

	mu    sync.Mutex
	tries int
}

// NewBackoff returns a backoff with cfg applied over the defaults.
func NewBackoff(cfg BackoffConfig) *Backoff {
	return &Backoff{cfg: cfg.withDefaults()}
}

// Next returns the next delay and advances the sequence.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	n := b.tries
	b.tries++
	b.mu.Unlock()

	base := b.base(n)
	if b.cfg.Jitter == 0 {
		return base
	}
	return base + time.Duration(float64(base)*b.cfg.Jitter*rand.Float64())
}

func (b *Backoff) base(n int) time.Duration {
	d := float64(b.cfg.Initial)
	for i := 0; i < n; i++ {
		d *= b.cfg.Multiplier
		if d >= float64(b.cfg.Max) {
			return b.cfg.Max
		}
	}
	return time.Duration(d)
}

// Reset restarts the sequence at the initial delay.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.tries = 0
	b.mu.Unlock()
}
