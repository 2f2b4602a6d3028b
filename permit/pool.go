/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package permit

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Errors returned by NewPool and NewPoolWithOpts when the pool is misconfigured.
var (
	ErrNonPositiveCapacity = errors.New("capacity must be positive")
	ErrNonPositiveInterval = errors.New("interval must be positive")
)

// PoolOpts represents options for the Pool.
type PoolOpts struct {
	// OnReplenish is called from the replenishment goroutine after each reset.
	// It must not block.
	OnReplenish func()
}

// Pool is a fixed-window permit pool.
// At most Capacity permits may be acquired between two replenishment ticks,
// every tick resets the number of available permits back to Capacity
// (permits not consumed during the previous window are not carried over).
// Pool is safe for concurrent use.
type Pool struct {
	capacity    int64
	interval    time.Duration
	available   *atomic.Int64
	onReplenish func()

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// NewPool creates a new Pool with the given capacity that is replenished every interval.
func NewPool(capacity int, interval time.Duration) (*Pool, error) {
	return NewPoolWithOpts(capacity, interval, PoolOpts{})
}

// NewPoolWithOpts creates a new Pool with the given capacity, replenishment interval and options.
// The replenishment goroutine is started immediately and lives until Close is called.
func NewPoolWithOpts(capacity int, interval time.Duration, opts PoolOpts) (*Pool, error) {
	return newPool(capacity, interval, opts, newTimeTicker)
}

type tickerFactory func(d time.Duration) (ticks <-chan time.Time, stop func())

func newTimeTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func newPool(capacity int, interval time.Duration, opts PoolOpts, newTicker tickerFactory) (*Pool, error) {
	if capacity <= 0 {
		return nil, ErrNonPositiveCapacity
	}
	if interval <= 0 {
		return nil, ErrNonPositiveInterval
	}

	p := &Pool{
		capacity:    int64(capacity),
		interval:    interval,
		available:   atomic.NewInt64(0),
		onReplenish: opts.OnReplenish,
		closed:      make(chan struct{}),
		done:        make(chan struct{}),
	}

	// The first tick happens at construction time.
	p.replenish()

	ticks, stop := newTicker(interval)
	go p.run(ticks, stop)

	return p, nil
}

func (p *Pool) run(ticks <-chan time.Time, stop func()) {
	defer close(p.done)
	defer stop()
	for {
		select {
		case <-ticks:
			p.replenish()
		case <-p.closed:
			return
		}
	}
}

// TryAcquire claims one permit without blocking.
// It returns false and leaves the pool untouched if no permits are available in the current window.
func (p *Pool) TryAcquire() bool {
	for {
		cur := p.available.Load()
		if cur <= 0 {
			return false
		}
		if p.available.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

func (p *Pool) replenish() {
	p.available.Store(p.capacity)
	if p.onReplenish != nil {
		p.onReplenish()
	}
}

// Available returns the number of permits that may still be acquired in the current window.
func (p *Pool) Available() int {
	return int(p.available.Load())
}

// Capacity returns the maximum number of permits per window.
func (p *Pool) Capacity() int {
	return int(p.capacity)
}

// Interval returns the window duration.
func (p *Pool) Interval() time.Duration {
	return p.interval
}

// Close stops the replenishment goroutine and waits for it to exit.
// Permits left in the current window may still be acquired after Close.
// It is safe to call Close multiple times.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	<-p.done
}
