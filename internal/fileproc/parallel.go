// Package fileproc provides concurrent file processing utilities with
// deterministic result ordering.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError records an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects file processing errors across workers.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker
// count. 2x suits mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func(path string)

// MapOrdered processes files in parallel and returns results indexed by
// input position, so callers see the same ordering regardless of worker
// scheduling. Failed files leave a nil slot and an entry in the returned
// ProcessingErrors; the pool keeps going past individual failures.
// If maxWorkers is <= 0, defaults to 2x NumCPU.
func MapOrdered[T any](ctx context.Context, files []string, maxWorkers int, fn func(context.Context, string) (T, error), onProgress ProgressFunc) ([]T, []bool, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	results := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result, err := fn(ctx, path)
			if err != nil {
				errs.Add(path, err)
			} else {
				// Each index is written by exactly one goroutine.
				results[i] = result
				ok[i] = true
			}

			if onProgress != nil {
				onProgress(path)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		errs.Add("", err)
	}

	if !errs.HasErrors() {
		return results, ok, nil
	}
	return results, ok, errs
}
