package batch

import (
	"context"
	"sync"
)

// Task is one unit of concurrent work.
type Task[T any] func(ctx context.Context) (T, error)

// Outcome is the settled result of a Task. Exactly one of Value and Err is
// meaningful.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Settle runs every task concurrently and waits for all of them. Outcomes
// are returned in task order. Each goroutine writes only its own slot.
func Settle[T any](ctx context.Context, tasks ...Task[T]) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			value, err := task(ctx)
			outcomes[i] = Outcome[T]{Value: value, Err: err}
		}(i, task)
	}
	wg.Wait()

	return outcomes
}
