package httpx

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBreakerOpen is returned while the breaker is blocking calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerState is the circuit state.
type BreakerState int

const (
	// BreakerClosed allows all calls.
	BreakerClosed BreakerState = iota
	// BreakerOpen blocks all calls until the cooldown elapses.
	BreakerOpen
	// BreakerHalfOpen allows probe calls to test recovery.
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive half-open successes
	// that closes it again.
	SuccessThreshold int
	// Cooldown is how long the circuit stays open before probing.
	Cooldown time.Duration
}

// DefaultBreakerConfig suits slow upstreams where burning the request
// timeout on a known-dead endpoint is the expensive part.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         60 * time.Second,
	}
}

// Breaker is a circuit breaker for calls to one upstream. Safe for
// concurrent use.
type Breaker struct {
	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
	cfg         BreakerConfig

	now func() time.Time
}

// NewBreaker creates a closed Breaker. Zero config fields take defaults.
func NewBreaker(cfg BreakerConfig) *Breaker {
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}

	return &Breaker{
		state: BreakerClosed,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Execute runs fn under circuit protection. While the circuit is open it
// returns ErrBreakerOpen without calling fn.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn()
	b.afterCall(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerOpen {
		elapsed := b.now().Sub(b.lastFailure)
		if elapsed < b.cfg.Cooldown {
			return fmt.Errorf("%w: retry in %v", ErrBreakerOpen, b.cfg.Cooldown-elapsed)
		}
		b.transition(BreakerHalfOpen)
	}
	return nil
}

func (b *Breaker) afterCall(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.failures++
		b.lastFailure = b.now()
		// Any half-open failure reopens immediately.
		if b.state == BreakerHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.transition(BreakerOpen)
		}
		return
	}

	switch b.state {
	case BreakerClosed:
		b.failures = 0
	case BreakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.transition(BreakerClosed)
		}
	case BreakerOpen:
		// Success cannot be observed while open.
	}
}

func (b *Breaker) transition(next BreakerState) {
	if b.state == next {
		return
	}
	b.state = next
	b.failures = 0
	b.successes = 0
}
