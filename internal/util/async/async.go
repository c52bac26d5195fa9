// Package async provides utilities for parallel task execution.
//
// The helpers here run independent units of work concurrently and collect
// every result, not just the first failure. Per-VM provisioning pipelines
// rely on this: one VM timing out must never hide or abort the outcome of
// its siblings.
package async

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Run executes all tasks in parallel and waits for every one to complete.
// It returns a map from task name to the error that task produced (nil
// entries for successful tasks are omitted).
//
// Set withLogging to true to log task start and completion, which is useful
// for tracking provisioning progress across many concurrent VM pipelines.
func Run(ctx context.Context, tasks []Task, withLogging bool) map[string]error {
	errs := make(map[string]error)
	if len(tasks) == 0 {
		return errs
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		task := task
		go func() {
			if withLogging {
				log.Printf("[%s] Starting at %s", task.Name, time.Now().Format("15:04:05"))
			}
			err := task.Func(ctx)
			if withLogging {
				if err != nil {
					log.Printf("[%s] Failed: %v", task.Name, err)
				} else {
					log.Printf("[%s] Completed at %s", task.Name, time.Now().Format("15:04:05"))
				}
			}
			resultChan <- result{name: task.Name, err: err}
		}()
	}

	for i := 0; i < len(tasks); i++ {
		res := <-resultChan
		if res.err != nil {
			errs[res.name] = res.err
		}
	}

	return errs
}

// RunParallel executes all tasks in parallel and returns the first error
// encountered, wrapped with the failing task's name. All tasks run to
// completion before it returns. Use Run when every individual result matters.
func RunParallel(ctx context.Context, tasks []Task, withLogging bool) error {
	errs := Run(ctx, tasks, withLogging)
	for _, task := range tasks {
		if err, ok := errs[task.Name]; ok {
			return fmt.Errorf("failed to run %s: %w", task.Name, err)
		}
	}
	return nil
}
