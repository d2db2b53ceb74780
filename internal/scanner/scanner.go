// Package scanner runs a bounded fan-out/fan-in over a list of addresses.
//
// Every address is handed to exactly one worker. The worker bounds the probe
// with a collection timeout and recovers panics, so Run always returns one
// Outcome per address no matter how individual probes behave.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Errors reported in Outcome.Err.
var (
	// ErrCollectTimeout means the probe did not report back in time and was abandoned.
	ErrCollectTimeout = errors.New("collection timeout")
	// ErrProbePanic means the probe panicked.
	ErrProbePanic = errors.New("probe panicked")
)

// Options configures Run.
type Options struct {
	// Workers is the number of concurrent probes.
	Workers int
	// CollectTimeout bounds each probe from the moment a worker picks it up.
	CollectTimeout time.Duration
	// Progress, if set, is called from the collecting goroutine after each outcome.
	Progress func(done, total int)
}

// Outcome is the terminal result for one address.
type Outcome[T any] struct {
	Address string
	Value   T
	// Err is ErrCollectTimeout or wraps ErrProbePanic; Value is the zero value then.
	Err     error
	Elapsed time.Duration
}

// ProbeFunc probes a single address.
type ProbeFunc[T any] func(ctx context.Context, addr string) T

// Run probes every address on a pool of opts.Workers goroutines and returns
// the outcomes in completion order. It returns only after every address has
// an outcome. A probe abandoned on timeout keeps running in the background and
// its late result is discarded.
func Run[T any](ctx context.Context, addrs []string, opts Options, probe ProbeFunc[T]) []Outcome[T] {
	if len(addrs) == 0 {
		return nil
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(addrs) {
		workers = len(addrs)
	}

	jobs := make(chan string, len(addrs))
	results := make(chan Outcome[T], len(addrs))
	var wg sync.WaitGroup

	for _, addr := range addrs {
		jobs <- addr
	}
	close(jobs)

	worker := func() {
		defer wg.Done()
		for addr := range jobs {
			results <- runOne(ctx, addr, opts.CollectTimeout, probe)
		}
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker()
	}

	outcomes := make([]Outcome[T], 0, len(addrs))
	for len(outcomes) < len(addrs) {
		outcomes = append(outcomes, <-results)
		if opts.Progress != nil {
			opts.Progress(len(outcomes), len(addrs))
		}
	}
	wg.Wait()
	return outcomes
}

func runOne[T any](ctx context.Context, addr string, timeout time.Duration, probe ProbeFunc[T]) Outcome[T] {
	start := time.Now()
	done := make(chan Outcome[T], 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Outcome[T]{Address: addr, Err: fmt.Errorf("%w: %v", ErrProbePanic, r)}
			}
		}()
		done <- Outcome[T]{Address: addr, Value: probe(ctx, addr)}
	}()

	if timeout <= 0 {
		o := <-done
		o.Elapsed = time.Since(start)
		return o
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		o.Elapsed = time.Since(start)
		return o
	case <-timer.C:
		return Outcome[T]{Address: addr, Err: ErrCollectTimeout, Elapsed: time.Since(start)}
	}
}
