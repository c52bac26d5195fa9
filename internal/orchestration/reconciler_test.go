package orchestration

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/inventory"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/provisioning/image"
)

func testPublicKey(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
}

func testTimeouts() *config.Timeouts {
	return &config.Timeouts{
		PollInterval:      2 * time.Millisecond,
		Task:              200 * time.Millisecond,
		Address:           200 * time.Millisecond,
		RetryAttempts:     3,
		RetryInitialDelay: 2 * time.Millisecond,
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ClusterName: "demo.example.com",
		BaseVM:      "base-demo",
		Network:     "vm-net",
		Image: config.ImageSpec{
			Name:             "centos7",
			SourceURL:        "http://example.com/centos7.qcow2",
			StorageContainer: "default",
		},
		ControlPlane: config.RoleSpec{
			Role: config.RoleControlPlane, Count: 1, VCPUs: 2, RAMGB: 4, DiskGB: 10, Network: "vm-net",
		},
		Worker: config.RoleSpec{
			Role: config.RoleWorker, Count: 2, VCPUs: 2, RAMGB: 4, DiskGB: 10, Network: "vm-net",
		},
		Users: []config.User{{Username: "ops", PublicKey: testPublicKey(t)}},
	}
}

// clusterHarness simulates a healthy platform: networks and images resolve,
// created and cloned VMs become findable by name, powered VMs get addresses.
type clusterHarness struct {
	mu      sync.Mutex
	vms     map[string]string // name -> uuid
	powered map[string]bool
	nextIP  int

	created int
	mock    *prism.MockPlatform
}

func newClusterHarness() *clusterHarness {
	h := &clusterHarness{
		vms:     make(map[string]string),
		powered: make(map[string]bool),
		nextIP:  10,
	}
	h.mock = &prism.MockPlatform{
		FindNetworkFunc: func(_ context.Context, name string) (*prism.Network, error) {
			return &prism.Network{UUID: "net-" + name, Name: name}, nil
		},
		FindImageFunc: func(_ context.Context, name string) (*prism.Image, error) {
			return &prism.Image{UUID: "img-1", Name: name, VMDiskID: "disk-1"}, nil
		},
		FindVMsFunc: func(_ context.Context, query string) ([]prism.VM, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if uuid, ok := h.vms[query]; ok {
				return []prism.VM{{UUID: uuid, Name: query, PowerState: prism.PowerOff}}, nil
			}
			return nil, nil
		},
		CreateVMFunc: func(_ context.Context, opts prism.CreateVMOpts) (*prism.TaskHandle, error) {
			h.mu.Lock()
			h.created++
			h.vms[opts.Name] = "uuid-" + opts.Name
			h.mu.Unlock()
			return &prism.TaskHandle{UUID: "t-create"}, nil
		},
		CloneVMFunc: func(_ context.Context, baseUUID string, opts prism.CloneOpts) (*prism.TaskHandle, error) {
			h.mu.Lock()
			h.vms[opts.Name] = "uuid-" + opts.Name
			h.mu.Unlock()
			return &prism.TaskHandle{UUID: "t-clone"}, nil
		},
		PowerOnVMFunc: func(_ context.Context, uuid string) (*prism.TaskHandle, error) {
			h.mu.Lock()
			h.powered[uuid] = true
			h.mu.Unlock()
			return &prism.TaskHandle{UUID: "t-power"}, nil
		},
		GetVMIPAddressesFunc: func(_ context.Context, uuid string) ([]string, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			if !h.powered[uuid] {
				return nil, nil
			}
			h.nextIP++
			return []string{"10.0.0." + strconv.Itoa(h.nextIP)}, nil
		},
	}
	return h
}

func reconcile(t *testing.T, platform prism.Platform, cfg *config.Config) ([]byte, error) {
	t.Helper()
	reconciler, err := NewReconciler(platform, cfg, testTimeouts())
	require.NoError(t, err)
	return reconciler.Reconcile(context.Background())
}

func TestReconcile(t *testing.T) {
	h := newClusterHarness()

	out, err := reconcile(t, h.mock, testConfig(t))
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "[kube-master]")
	assert.Contains(t, text, "control-plane-1-demo.example.com ansible_host=10.0.0.")
	assert.Contains(t, text, "worker-1-demo.example.com ansible_host=")
	assert.Contains(t, text, "worker-2-demo.example.com ansible_host=")
	assert.Contains(t, text, "ansible_become=true")

	// The base VM was created once and stayed powered off.
	assert.Equal(t, 1, h.created)
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.False(t, h.powered["uuid-base-demo"])
}

func TestReconcile_AdoptsExistingBaseVM(t *testing.T) {
	h := newClusterHarness()
	h.mu.Lock()
	h.vms["base-demo"] = "uuid-base-demo"
	h.mu.Unlock()

	_, err := reconcile(t, h.mock, testConfig(t))
	require.NoError(t, err)
	assert.Zero(t, h.created)
}

func TestReconcile_ConnectFailure(t *testing.T) {
	h := newClusterHarness()
	h.mock.ConnectFunc = func(context.Context) error {
		return &prism.UnreachableError{Err: errors.New("connection refused")}
	}

	_, err := reconcile(t, h.mock, testConfig(t))
	require.Error(t, err)
	assert.True(t, prism.IsUnreachable(err))
	assert.Contains(t, err.Error(), "phase connect failed")
}

func TestReconcile_NetworkMissing(t *testing.T) {
	h := newClusterHarness()
	h.mock.FindNetworkFunc = func(context.Context, string) (*prism.Network, error) {
		return nil, nil
	}

	_, err := reconcile(t, h.mock, testConfig(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `network "vm-net" not found`)
}

func TestReconcile_ImageAbsentWithoutSource(t *testing.T) {
	h := newClusterHarness()
	h.mock.FindImageFunc = func(context.Context, string) (*prism.Image, error) {
		return nil, nil
	}

	cfg := testConfig(t)
	cfg.Image.SourceURL = ""

	_, err := reconcile(t, h.mock, cfg)
	require.Error(t, err)

	var notFound *image.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "centos7", notFound.Name)
}

func TestReconcile_PartialWorkerFailure(t *testing.T) {
	h := newClusterHarness()
	base := h.mock.CloneVMFunc
	h.mock.CloneVMFunc = func(c context.Context, baseUUID string, opts prism.CloneOpts) (*prism.TaskHandle, error) {
		if opts.Name == "worker-2-demo.example.com" {
			return nil, errors.New("insufficient resources")
		}
		return base(c, baseUUID, opts)
	}

	_, err := reconcile(t, h.mock, testConfig(t))
	require.Error(t, err)

	var insufficient *inventory.InsufficientNodesError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Shortfalls, 1)
	assert.Equal(t, config.RoleWorker, insufficient.Shortfalls[0].Role)
	assert.Equal(t, 1, insufficient.Shortfalls[0].Ready)
	assert.Equal(t, 2, insufficient.Shortfalls[0].Desired)
}

func TestReconcile_RerunAdoptsExistingNodes(t *testing.T) {
	h := newClusterHarness()
	cfg := testConfig(t)

	_, err := reconcile(t, h.mock, cfg)
	require.NoError(t, err)

	var clones int
	h.mock.CloneVMFunc = func(context.Context, string, prism.CloneOpts) (*prism.TaskHandle, error) {
		clones++
		return nil, errors.New("must not clone on re-run")
	}

	out, err := reconcile(t, h.mock, cfg)
	require.NoError(t, err)
	assert.Zero(t, clones)
	assert.Contains(t, string(out), "[kube-master]")
}
