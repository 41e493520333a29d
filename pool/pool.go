// Package pool runs a probe function over a list of jobs with a fixed
// concurrency budget and reports progress after every completion.
package pool

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Probe tests one job. The bool reports whether the outcome is accepted into
// the result collection. A probe must not block past its own timeout.
type Probe[T, R any] func(ctx context.Context, job T) (R, bool)

// ProgressFunc is invoked once per completed job with a strictly increasing
// completed count and the fixed total.
type ProgressFunc func(completed, total int)

// DefaultSize is the concurrency budget used when none is configured.
const DefaultSize = 10

// Pool holds the scheduling parameters shared by every Run call.
type Pool struct {
	size    int
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithRateLimit paces dispatch to at most perSecond probe starts per second.
// Zero or negative disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(p *Pool) {
		if perSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger used for recovered probe panics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a pool allowing size concurrent probes. Sizes below one are
// raised to one.
func New(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{size: size, logger: zap.NewNop()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Size returns the concurrency budget.
func (p *Pool) Size() int { return p.size }

type outcome[R any] struct {
	val      R
	ok       bool
	panicked any
}

// RunBounded is Run on a fresh pool of maxConcurrency slots.
func RunBounded[T, R any](ctx context.Context, jobs []T, maxConcurrency int, probe Probe[T, R], onProgress ProgressFunc) ([]R, error) {
	return Run(ctx, New(maxConcurrency), jobs, probe, onProgress)
}

// Run executes probe once for every job with at most p.Size() probes in
// flight and returns the accepted results in completion order.
//
// onProgress, when non-nil, runs on the calling goroutine after each job
// resolves, so a slow callback holds back further dispatch without ever
// racing the counter. An empty jobs slice does no work and never calls
// onProgress.
//
// If ctx is cancelled Run stops dispatching, waits for the probes already in
// flight, and returns what was accepted so far together with the reason the
// sweep stopped.
func Run[T, R any](ctx context.Context, p *Pool, jobs []T, probe Probe[T, R], onProgress ProgressFunc) ([]R, error) {
	accepted := make([]R, 0)
	total := len(jobs)
	if total == 0 {
		return accepted, nil
	}
	if p == nil {
		p = New(DefaultSize)
	}

	sem := semaphore.NewWeighted(int64(p.size))
	done := make(chan outcome[R])
	var stopErr error

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			close(done)
		}()
		for _, job := range jobs {
			if err := ctx.Err(); err != nil {
				stopErr = err
				return
			}
			if p.limiter != nil {
				if err := p.limiter.Wait(ctx); err != nil {
					stopErr = err
					return
				}
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				stopErr = err
				return
			}
			wg.Add(1)
			go func(job T) {
				defer wg.Done()
				defer sem.Release(1)
				done <- call(ctx, probe, job)
			}(job)
		}
	}()

	completed := 0
	for o := range done {
		completed++
		if o.panicked != nil {
			p.logger.Warn("probe panicked", zap.String("panic", fmt.Sprint(o.panicked)))
		} else if o.ok {
			accepted = append(accepted, o.val)
		}
		if onProgress != nil {
			onProgress(completed, total)
		}
	}

	if completed < total {
		if stopErr == nil {
			stopErr = context.Canceled
		}
		return accepted, stopErr
	}
	return accepted, nil
}

func call[T, R any](ctx context.Context, probe Probe[T, R], job T) (o outcome[R]) {
	defer func() {
		if r := recover(); r != nil {
			o = outcome[R]{panicked: r}
		}
	}()
	v, ok := probe(ctx, job)
	return outcome[R]{val: v, ok: ok}
}
