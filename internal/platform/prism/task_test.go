package prism

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitOpts() WaitOpts {
	return WaitOpts{Interval: 5 * time.Millisecond, Timeout: 250 * time.Millisecond}
}

func TestWaitTask_SucceedsAfterPolling(t *testing.T) {
	var polls atomic.Int32
	mock := &MockPlatform{
		GetTaskFunc: func(_ context.Context, uuid string) (*TaskStatus, error) {
			if polls.Add(1) < 3 {
				return &TaskStatus{
					UUID:               uuid,
					OperationType:      "VmClone",
					ProgressStatus:     TaskRunning,
					PercentageComplete: 40,
				}, nil
			}
			return mockDoneTask(uuid), nil
		},
	}

	status, err := WaitTask(context.Background(), mock, &TaskHandle{UUID: "t1"}, waitOpts())
	require.NoError(t, err)
	assert.True(t, status.Done())
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestWaitTask_PlatformFailure(t *testing.T) {
	mock := &MockPlatform{
		GetTaskFunc: func(_ context.Context, uuid string) (*TaskStatus, error) {
			status := &TaskStatus{
				UUID:           uuid,
				OperationType:  "VmClone",
				ProgressStatus: TaskFailed,
			}
			status.MetaResponse.ErrorDetail = "no space left in container"
			return status, nil
		},
	}

	_, err := WaitTask(context.Background(), mock, &TaskHandle{UUID: "t1"}, waitOpts())
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Contains(t, taskErr.Error(), "no space left in container")
}

func TestWaitTask_Timeout(t *testing.T) {
	mock := &MockPlatform{
		GetTaskFunc: func(_ context.Context, uuid string) (*TaskStatus, error) {
			return &TaskStatus{
				UUID:           uuid,
				ProgressStatus: TaskRunning,
			}, nil
		},
	}

	_, err := WaitTask(context.Background(), mock, &TaskHandle{UUID: "t1"},
		WaitOpts{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond})
	require.Error(t, err)

	var timeoutErr *TaskTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "t1", timeoutErr.TaskUUID)
}

func TestWaitTask_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &MockPlatform{
		GetTaskFunc: func(_ context.Context, uuid string) (*TaskStatus, error) {
			cancel()
			return &TaskStatus{UUID: uuid, ProgressStatus: TaskRunning}, nil
		},
	}

	_, err := WaitTask(ctx, mock, &TaskHandle{UUID: "t1"}, waitOpts())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWaitTask_PollError(t *testing.T) {
	mock := &MockPlatform{
		GetTaskFunc: func(context.Context, string) (*TaskStatus, error) {
			return nil, &UnreachableError{Err: errors.New("connection refused")}
		},
	}

	_, err := WaitTask(context.Background(), mock, &TaskHandle{UUID: "t1"}, waitOpts())
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}

func TestWaitTask_NilHandle(t *testing.T) {
	_, err := WaitTask(context.Background(), &MockPlatform{}, nil, waitOpts())
	assert.Error(t, err)
}

func TestWaitTask_ManyConcurrentWaits(t *testing.T) {
	mock := &MockPlatform{
		GetTaskFunc: func(_ context.Context, uuid string) (*TaskStatus, error) {
			return mockDoneTask(uuid), nil
		},
	}

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, err := WaitTask(context.Background(), mock, &TaskHandle{UUID: "t"}, waitOpts())
			done <- err
		}()
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-done)
	}
}
