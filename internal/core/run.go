// Package core runs the fact collectors and bundles log documents for archival.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"logonlog/internal/collect"
)

// Collector defines the interface that all fact collectors must implement.
type Collector interface {
	// Name returns the collector's identifier, used for logging and reporting.
	Name() string
	// Collect gathers the collector's facts and stores them in facts.
	Collect(ctx context.Context, facts *collect.Facts) error
}

// Result captures the execution result of a single collector.
type Result struct {
	Collector string    `json:"name"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_utc"`
	EndedAt   time.Time `json:"ended_utc"`
}

// Clock provides time functions for testability.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Run orchestrates the execution of multiple collectors with concurrency control.
type Run struct {
	collectors  []Collector
	parallelism int
	timeout     time.Duration
	clock       Clock
	logger      *zap.SugaredLogger
}

// NewRun creates a new Run orchestrator.
func NewRun(parallelism int, timeout time.Duration, clock Clock, logger *zap.SugaredLogger) *Run {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// Clamp parallelism to reasonable bounds
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > 64 {
		parallelism = 64
	}

	return &Run{
		parallelism: parallelism,
		timeout:     timeout,
		clock:       clock,
		logger:      logger,
	}
}

// Register adds a collector to the execution list.
func (r *Run) Register(c Collector) {
	r.collectors = append(r.collectors, c)
}

// Names returns the registered collector names in registration order.
func (r *Run) Names() []string {
	names := make([]string, len(r.collectors))
	for i, c := range r.collectors {
		names[i] = c.Name()
	}
	return names
}

// CollectAll executes all registered collectors concurrently and returns
// their results in registration order. Any failure makes the run fail; the
// returned error names the first failed collector.
func (r *Run) CollectAll(ctx context.Context, facts *collect.Facts) ([]Result, error) {
	if len(r.collectors) == 0 {
		return []Result{}, nil
	}

	semaphore := make(chan struct{}, r.parallelism)
	results := make([]Result, len(r.collectors))
	var wg sync.WaitGroup

	for i, c := range r.collectors {
		wg.Add(1)
		go func(i int, c Collector) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = r.execute(ctx, c, facts)
		}(i, c)
	}
	wg.Wait()

	var firstError error
	errorCount := 0
	for _, result := range results {
		if result.OK {
			continue
		}
		if firstError == nil {
			firstError = fmt.Errorf("collector %s failed: %s", result.Collector, result.Error)
		}
		errorCount++
	}

	var combinedError error
	switch {
	case errorCount == 1:
		combinedError = firstError
	case errorCount > 1:
		combinedError = fmt.Errorf("%w (and %d other collector errors)", firstError, errorCount-1)
	}
	return results, combinedError
}

// execute runs a single collector with timeout and error handling.
func (r *Run) execute(parentCtx context.Context, c Collector, facts *collect.Facts) Result {
	startTime := r.clock.Now().UTC()

	ctx := parentCtx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parentCtx, r.timeout)
		defer cancel()
	}

	err := c.Collect(ctx, facts)
	endTime := r.clock.Now().UTC()

	if err != nil {
		r.logger.Errorw("Collector failed", "collector", c.Name(), "error", err)
		return Result{
			Collector: c.Name(),
			OK:        false,
			Error:     err.Error(),
			StartedAt: startTime,
			EndedAt:   endTime,
		}
	}

	r.logger.Debugw("Collector completed", "collector", c.Name(), "took", endTime.Sub(startTime))
	return Result{
		Collector: c.Name(),
		OK:        true,
		StartedAt: startTime,
		EndedAt:   endTime,
	}
}
