// Package pool runs a bounded number of workers over a slice of items.
package pool

import (
	"context"
	"sync"
)

// WorkerFunc processes one item and may return an error.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// DoneFunc is called once per processed item with the worker's result.
// Calls may come from several goroutines at once.
type DoneFunc[T any] func(item T, err error)

// Run processes items with numWorkers concurrent workers and returns the
// errors they reported. Items not yet handed out when ctx is cancelled are skipped.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []error {
	return RunWithHook(ctx, items, numWorkers, workerFunc, nil)
}

// RunWithHook is Run with a completion hook, used to drive progress output.
func RunWithHook[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T], onDone DoneFunc[T]) []error {
	if numWorkers < 1 {
		numWorkers = 1
	}
	var wg sync.WaitGroup
	taskChan := make(chan T, numWorkers)
	errChan := make(chan error, len(items))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range taskChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				err := workerFunc(ctx, item)
				if err != nil {
					errChan <- err
				}
				if onDone != nil {
					onDone(item, err)
				}
			}
		}()
	}

OUT:
	for _, item := range items {
		select {
		case taskChan <- item:
		case <-ctx.Done():
			break OUT
		}
	}
	close(taskChan)

	wg.Wait()
	close(errChan)

	var allErrors []error
	for err := range errChan {
		allErrors = append(allErrors, err)
	}
	return allErrors
}
