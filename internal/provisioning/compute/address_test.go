package compute

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeprism/kubeprism/internal/platform/prism"
)

func TestWaitForAddress_EventuallyAssigned(t *testing.T) {
	var polls atomic.Int32
	mock := &prism.MockPlatform{
		GetVMIPAddressesFunc: func(context.Context, string) ([]string, error) {
			if polls.Add(1) < 3 {
				return nil, nil
			}
			return []string{"192.168.1.40", "192.168.1.41"}, nil
		},
	}

	ip, err := waitForAddress(context.Background(), mock, "worker-1-d", "vm-1",
		2*time.Millisecond, 200*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.40", ip)
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestWaitForAddress_Timeout(t *testing.T) {
	mock := &prism.MockPlatform{
		GetVMIPAddressesFunc: func(context.Context, string) ([]string, error) {
			return []string{}, nil
		},
	}

	_, err := waitForAddress(context.Background(), mock, "worker-1-d", "vm-1",
		2*time.Millisecond, 20*time.Millisecond)

	var timeout *AddressTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "worker-1-d", timeout.VM)
	assert.Equal(t, 20*time.Millisecond, timeout.Timeout)
}

func TestWaitForAddress_PollError(t *testing.T) {
	mock := &prism.MockPlatform{
		GetVMIPAddressesFunc: func(context.Context, string) ([]string, error) {
			return nil, errors.New("session expired")
		},
	}

	_, err := waitForAddress(context.Background(), mock, "worker-1-d", "vm-1",
		2*time.Millisecond, 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
}

func TestWaitForAddress_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &prism.MockPlatform{
		GetVMIPAddressesFunc: func(context.Context, string) ([]string, error) {
			return nil, nil
		},
	}

	_, err := waitForAddress(ctx, mock, "worker-1-d", "vm-1",
		2*time.Millisecond, 200*time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}
