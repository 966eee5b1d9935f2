// Package batch fans a list of coordinates out across a bounded pool of
// workers and collects the results back in input order.
//
// Grounded on mohammed-shakir-h3-spatial-cache's
// internal/scenarios/cache/cache.go HandleQuery fill loop: a buffered jobs
// channel, a fixed worker goroutine pool, a results channel, and a
// WaitGroup, all respecting ctx.Done on send/receive.
package batch

import (
	"context"
	"sync"

	"github.com/racemap/elevation-service/internal/observability"
)

// Point is one (lat, lng) query in a batch.
type Point struct {
	Lat float64
	Lng float64
}

// EvalFunc evaluates a single point. Concurrent calls for different points
// must be safe.
type EvalFunc func(ctx context.Context, p Point) (int16, error)

type job struct {
	index int
	point Point
}

type outcome struct {
	index     int
	elevation int16
	err       error
}

// Run evaluates points through eval with at most concurrency evaluations in
// flight at once, and returns their elevations in the same order as points.
// On the first error encountered, Run cancels the remaining in-flight work
// and returns that error; already-computed results are discarded.
func Run(ctx context.Context, points []Point, concurrency int, eval EvalFunc) ([]int16, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(points) {
		concurrency = len(points)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, len(points))
	results := make(chan outcome, len(points))

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				elevationValue, err := eval(ctx, j.point)
				select {
				case results <- outcome{index: j.index, elevation: elevationValue, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for i, p := range points {
		jobs <- job{index: i, point: p}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]int16, len(points))
	var firstErr error
	received := 0
	for received < len(points) {
		r, ok := <-results
		if !ok {
			break
		}
		received++
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		out[r.index] = r.elevation
	}

	if firstErr != nil {
		observability.IncBatchPoints("error", 1)
		return nil, firstErr
	}
	observability.IncBatchPoints("ok", len(out))
	return out, nil
}
