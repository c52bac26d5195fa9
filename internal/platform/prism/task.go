package prism

import (
	"context"
	"fmt"
	"log"
	"time"
)

// TaskError is a platform-reported task failure, carrying the platform's
// error message for the run log.
type TaskError struct {
	Task *TaskStatus
}

func (e *TaskError) Error() string {
	detail := e.Task.MetaResponse.ErrorDetail
	if detail == "" {
		detail = "no error detail reported"
	}
	return fmt.Sprintf("task %s (%s) failed: %s", e.Task.OperationType, e.Task.UUID, detail)
}

// TaskTimeoutError means a task did not reach a terminal state in time.
type TaskTimeoutError struct {
	TaskUUID string
	Timeout  time.Duration
}

func (e *TaskTimeoutError) Error() string {
	return fmt.Sprintf("task %s did not complete within %s", e.TaskUUID, e.Timeout)
}

// WaitOpts configure a single task wait.
type WaitOpts struct {
	Interval time.Duration
	Timeout  time.Duration
}

// WaitTask polls the task until it reaches a terminal state, the timeout
// elapses, or the context is cancelled. It only observes: the underlying
// call is never re-submitted, converging is the platform's job.
//
// Each wait is independent, so any number of tasks can be awaited
// concurrently from separate goroutines.
func WaitTask(ctx context.Context, tasks TaskService, handle *TaskHandle, opts WaitOpts) (*TaskStatus, error) {
	if handle == nil || handle.UUID == "" {
		return nil, fmt.Errorf("task handle is required")
	}

	deadline := time.NewTimer(opts.Timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		status, err := tasks.GetTask(ctx, handle.UUID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll task %s: %w", handle.UUID, err)
		}

		switch {
		case status.ProgressStatus == TaskFailed:
			return nil, &TaskError{Task: status}
		case status.Done():
			elapsed := float64(status.CompleteTimeUsecs-status.CreateTimeUsecs) / 1e6
			log.Printf("[Task] %s (%s) finished in %.1f seconds",
				status.OperationType, status.UUID, elapsed)
			return status, nil
		}

		log.Printf("[Task] %s (%s) is %d%% complete, next check in %s",
			status.OperationType, status.UUID, status.PercentageComplete, opts.Interval)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for task %s cancelled: %w", handle.UUID, ctx.Err())
		case <-deadline.C:
			return nil, &TaskTimeoutError{TaskUUID: handle.UUID, Timeout: opts.Timeout}
		case <-ticker.C:
		}
	}
}
