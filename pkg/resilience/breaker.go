// Package resilience guards calls to remote services with a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the position of a Breaker.
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls fail fast
	StateHalfOpen              // a limited number of probes pass through
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned without calling through while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// Options configures a Breaker.
type Options struct {
	// Threshold is how many consecutive failures open the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// Probes is the number of calls let through while half-open.
	Probes int
	// Failure decides whether an error counts against the breaker. Nil
	// counts every error. Errors that do not count leave the state alone.
	Failure func(error) bool
	// OnChange is called with the old and new state, outside the lock.
	OnChange func(from, to State)
}

// DefaultOptions trips after 3 failures and probes again after 10 seconds.
var DefaultOptions = Options{
	Threshold: 3,
	Cooldown:  10 * time.Second,
	Probes:    1,
}

// Breaker is a closed/open/half-open circuit breaker. Safe for concurrent use.
type Breaker struct {
	mu       sync.Mutex
	opts     Options
	state    State
	failures int
	openedAt time.Time
	probes   int
	now      func() time.Time
}

// New creates a Breaker. Zero option fields take DefaultOptions values.
func New(opts Options) *Breaker {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultOptions.Threshold
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultOptions.Cooldown
	}
	if opts.Probes <= 0 {
		opts.Probes = DefaultOptions.Probes
	}
	return &Breaker{opts: opts, now: time.Now}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// current moves open to half-open once the cooldown has passed. Must hold mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.Cooldown {
		b.state = StateHalfOpen
		b.probes = 0
	}
	return b.state
}

// Call runs f unless the breaker is open.
func (b *Breaker) Call(ctx context.Context, f func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := f(ctx)
	b.record(err)
	return err
}

// Do is Call for functions that return a value.
func Do[T any](ctx context.Context, b *Breaker, f func(context.Context) (T, error)) (T, error) {
	var v T
	err := b.Call(ctx, func(ctx context.Context) error {
		var err error
		v, err = f(ctx)
		return err
	})
	return v, err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.current() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.probes >= b.opts.Probes {
			return ErrOpen
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	from := b.state
	switch {
	case err == nil:
		b.failures = 0
		b.state = StateClosed
	case b.opts.Failure != nil && !b.opts.Failure(err):
		// A half-open probe that got any answer shows the remote is back.
		if b.state == StateHalfOpen {
			b.state = StateClosed
			b.failures = 0
		}
	default:
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.opts.Threshold {
			b.state = StateOpen
			b.openedAt = b.now()
			b.failures = 0
			b.probes = 0
		}
	}
	to := b.state
	b.mu.Unlock()

	if from != to && b.opts.OnChange != nil {
		b.opts.OnChange(from, to)
	}
}
