// Package shutdownqueue collects cleanup tasks and drains them in LIFO
// order at process exit. Tasks run once; panics are recovered; errors are
// aggregated with errors.Join. Shutdown is idempotent.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is a shutdown function. It should honor ctx and return an error if
// it cannot finish.
type Task func(ctx context.Context) error

// Queue is a LIFO shutdown queue. The zero value is ready to use.
type Queue struct {
	mu     sync.Mutex
	tasks  []Task
	closed bool
}

// Add registers a task to run on Shutdown. Nil tasks and adds after
// shutdown started are ignored.
func (q *Queue) Add(t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, t)
}

// Shutdown drains all registered tasks in reverse registration order. A
// canceled ctx stops the drain early; the context error joins any task
// errors collected so far. Subsequent calls are no-ops.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.closed = true
	q.mu.Unlock()

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled: %w", ctx.Err()))
			return errors.Join(errs...)
		default:
		}

		err := runTask(ctx, tasks[i])
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task: %v", r)
		}
	}()

	return t(ctx)
}
