package prism

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/util/retry"
)

// REST API versions exposed by the Prism gateway.
const (
	apiV1 = "v1"
	apiV2 = "v2.0"
)

// RealClient implements Platform against a live Prism endpoint.
//
// Authentication is session-based: Connect posts the credentials once and
// the session cookie rides along on every later call. The client is safe
// for concurrent use; it keeps no per-call state.
type RealClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	timeouts   *config.Timeouts
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithTimeouts sets custom timeouts for the client.
func WithTimeouts(t *config.Timeouts) ClientOption {
	return func(c *RealClient) {
		c.timeouts = t
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *RealClient) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the endpoint URL (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *RealClient) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// NewRealClient creates a client for the given cluster target.
func NewRealClient(target *config.ClusterTarget, opts ...ClientOption) *RealClient {
	// Per docs the error is always nil.
	jar, _ := cookiejar.New(nil)

	transport := http.DefaultTransport
	if target.InsecureTLS {
		// Prism endpoints commonly run with self-signed certificates.
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		}
	}

	c := &RealClient{
		baseURL:  fmt.Sprintf("https://%s:%d", target.Address, target.Port),
		username: target.Username,
		password: target.Password,
		httpClient: &http.Client{
			Jar:       jar,
			Transport: transport,
		},
		timeouts: config.LoadTimeouts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Platform = (*RealClient)(nil)

// Connect authenticates against the Prism gateway. Transient transport
// errors are retried; a credential rejection is returned immediately.
func (c *RealClient) Connect(ctx context.Context) error {
	return retry.Do(ctx, func() error {
		form := url.Values{
			"j_username": {c.username},
			"j_password": {c.password},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/PrismGateway/j_spring_security_check",
			strings.NewReader(form.Encode()))
		if err != nil {
			return retry.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &UnreachableError{Err: err}
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		switch {
		case resp.StatusCode == http.StatusOK:
			return nil
		case resp.StatusCode == http.StatusUnauthorized:
			return retry.Fatal(ErrInvalidCredentials)
		default:
			return &UnreachableError{
				Err: fmt.Errorf("unexpected status %d from security check", resp.StatusCode),
			}
		}
	},
		retry.WithAttempts(c.timeouts.RetryAttempts),
		retry.WithInitialDelay(c.timeouts.RetryInitialDelay))
}

// call issues one API request and decodes the JSON response into out.
func (c *RealClient) call(ctx context.Context, method, version, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.HTTPRequest)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := fmt.Sprintf("%s/PrismGateway/services/rest/%s/%s", c.baseURL, version, path)
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnreachableError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if !expectedStatus(method, resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// expectedStatus reports whether the platform answered a call with the
// status its method family is expected to produce. Mutating calls are
// accepted (task submitted), not completed.
func expectedStatus(method string, code int) bool {
	switch method {
	case http.MethodGet:
		return code == http.StatusOK
	default:
		return code == http.StatusOK || code == http.StatusCreated || code == http.StatusAccepted
	}
}

type listMetadata struct {
	Count int `json:"count"`
}

// GetTask returns the current status of an asynchronous task.
func (c *RealClient) GetTask(ctx context.Context, taskUUID string) (*TaskStatus, error) {
	if taskUUID == "" {
		return nil, fmt.Errorf("task uuid is required")
	}
	var status TaskStatus
	if err := c.call(ctx, http.MethodGet, apiV2, "tasks/"+taskUUID, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// FindImage returns the image with the given name, or nil if absent.
func (c *RealClient) FindImage(ctx context.Context, name string) (*Image, error) {
	var out struct {
		Entities []Image `json:"entities"`
	}
	if err := c.call(ctx, http.MethodGet, apiV2, "images/?include_vm_disk_sizes=false", nil, &out); err != nil {
		return nil, err
	}

	var matches []Image
	for _, image := range out.Entities {
		if image.Name == name {
			matches = append(matches, image)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("found %d images named %q, expected at most 1", len(matches), name)
	}
}

// UploadImage registers a disk image from a remote URL. Asynchronous.
func (c *RealClient) UploadImage(ctx context.Context, opts ImageUploadOpts) (*TaskHandle, error) {
	if opts.Name == "" || opts.StorageContainer == "" || opts.SourceURL == "" {
		return nil, fmt.Errorf("image name, storage container and source url are required")
	}

	body := map[string]any{
		"name":       opts.Name,
		"image_type": "DISK_IMAGE",
		"image_import_spec": map[string]any{
			"storage_container_name": opts.StorageContainer,
			"url":                    opts.SourceURL,
		},
	}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPost, apiV2, "images", body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// FindStorageContainer returns the container with the given name, or nil.
func (c *RealClient) FindStorageContainer(ctx context.Context, name string) (*StorageContainer, error) {
	var out struct {
		Entities []StorageContainer `json:"entities"`
	}
	path := "storage_containers/?search_string=" + url.QueryEscape(name)
	if err := c.call(ctx, http.MethodGet, apiV2, path, nil, &out); err != nil {
		return nil, err
	}
	for _, container := range out.Entities {
		if container.Name == name {
			return &container, nil
		}
	}
	return nil, nil
}

// FindVMs returns all VMs whose name contains query.
func (c *RealClient) FindVMs(ctx context.Context, query string) ([]VM, error) {
	var out struct {
		Metadata listMetadata `json:"metadata"`
		Entities []VM         `json:"entities"`
	}
	path := "vms?searchString=" + url.QueryEscape(query)
	if err := c.call(ctx, http.MethodGet, apiV1, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

// GetVM returns the VM with the given UUID.
func (c *RealClient) GetVM(ctx context.Context, uuid string) (*VM, error) {
	if uuid == "" {
		return nil, fmt.Errorf("vm uuid is required")
	}
	var vm VM
	if err := c.call(ctx, http.MethodGet, apiV1, "vms/"+uuid, nil, &vm); err != nil {
		return nil, err
	}
	return &vm, nil
}

// CreateVM creates a VM from an image disk. Asynchronous.
func (c *RealClient) CreateVM(ctx context.Context, opts CreateVMOpts) (*TaskHandle, error) {
	if opts.Name == "" || opts.NetworkUUID == "" || opts.ImageDiskUUID == "" {
		return nil, fmt.Errorf("vm name, network uuid and image disk uuid are required")
	}

	body := map[string]any{
		"name":               opts.Name,
		"memory_mb":          opts.MemoryMB,
		"num_vcpus":          opts.VCPUs,
		"description":        "",
		"num_cores_per_vcpu": 1,
		"vm_disks": []map[string]any{
			{
				"is_cdrom": true,
				"is_empty": true,
				"disk_address": map[string]any{
					"device_bus": "ide",
				},
			},
			{
				"is_cdrom": false,
				"disk_address": map[string]any{
					"device_bus": "scsi",
				},
				"vm_disk_clone": map[string]any{
					"disk_address": map[string]any{
						"vmdisk_uuid": opts.ImageDiskUUID,
					},
					"minimum_size": int64(opts.DiskGB) * 1024 * 1024 * 1024,
				},
			},
		},
		"vm_nics": []map[string]any{
			{"network_uuid": opts.NetworkUUID},
		},
		"hypervisor_type": "ACROPOLIS",
		"vm_customization_config": map[string]any{
			"userdata":             opts.Userdata,
			"files_to_inject_list": []string{},
		},
	}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPost, apiV2, "vms", body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// CloneVM clones a single VM from the base VM. Asynchronous.
func (c *RealClient) CloneVM(ctx context.Context, baseUUID string, opts CloneOpts) (*TaskHandle, error) {
	if baseUUID == "" {
		return nil, fmt.Errorf("base vm uuid is required")
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("clone name is required")
	}

	body := map[string]any{
		"spec_list": []map[string]any{
			{
				"name":                    opts.Name,
				"memory_mb":               opts.MemoryMB,
				"num_vcpus":               opts.VCPUs,
				"override_network_config": false,
			},
		},
	}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPost, apiV2, "vms/"+baseUUID+"/clone", body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// SetVMResources applies sizing overrides to an existing VM. Asynchronous.
func (c *RealClient) SetVMResources(ctx context.Context, uuid string, opts ResourceOpts) (*TaskHandle, error) {
	if uuid == "" {
		return nil, fmt.Errorf("vm uuid is required")
	}

	body := map[string]any{
		"num_vcpus": opts.VCPUs,
		"memory_mb": opts.MemoryMB,
	}
	if opts.DiskGB > 0 {
		body["vm_disks"] = []map[string]any{
			{
				"disk_address": map[string]any{
					"device_bus":   "scsi",
					"device_index": 0,
				},
				"vm_disk_create": map[string]any{
					"size": int64(opts.DiskGB) * 1024 * 1024 * 1024,
				},
			},
		}
	}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPut, apiV2, "vms/"+uuid, body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// AttachNetwork adds a NIC on the given network to the VM. Asynchronous.
func (c *RealClient) AttachNetwork(ctx context.Context, uuid, networkUUID string) (*TaskHandle, error) {
	if uuid == "" || networkUUID == "" {
		return nil, fmt.Errorf("vm uuid and network uuid are required")
	}

	body := map[string]any{
		"spec_list": []map[string]any{
			{"network_uuid": networkUUID},
		},
	}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPost, apiV2, "vms/"+uuid+"/nics", body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// PowerOnVM requests a power-on transition. Asynchronous.
func (c *RealClient) PowerOnVM(ctx context.Context, uuid string) (*TaskHandle, error) {
	if uuid == "" {
		return nil, fmt.Errorf("vm uuid is required")
	}

	body := map[string]any{"transition": PowerOn}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPost, apiV2, "vms/"+uuid+"/set_power_state", body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// SetGuestCustomization replaces the VM's cloud-init userdata. Asynchronous.
func (c *RealClient) SetGuestCustomization(ctx context.Context, uuid, userdata string) (*TaskHandle, error) {
	if uuid == "" {
		return nil, fmt.Errorf("vm uuid is required")
	}

	body := map[string]any{
		"vm_customization_config": map[string]any{
			"userdata":             userdata,
			"files_to_inject_list": []string{},
		},
	}

	var handle TaskHandle
	if err := c.call(ctx, http.MethodPut, apiV2, "vms/"+uuid, body, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// GetVMIPAddresses returns the addresses currently reported for the VM.
func (c *RealClient) GetVMIPAddresses(ctx context.Context, uuid string) ([]string, error) {
	vm, err := c.GetVM(ctx, uuid)
	if err != nil {
		return nil, err
	}
	return vm.IPAddresses, nil
}

// DeleteVM removes a VM. Asynchronous.
func (c *RealClient) DeleteVM(ctx context.Context, uuid string) (*TaskHandle, error) {
	if uuid == "" {
		return nil, fmt.Errorf("vm uuid is required")
	}
	var handle TaskHandle
	if err := c.call(ctx, http.MethodDelete, apiV2, "vms/"+uuid, nil, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// FindNetwork returns the network with the given name, or nil if absent.
func (c *RealClient) FindNetwork(ctx context.Context, name string) (*Network, error) {
	var out struct {
		Entities []Network `json:"entities"`
	}
	if err := c.call(ctx, http.MethodGet, apiV2, "networks", nil, &out); err != nil {
		return nil, err
	}

	var matches []Network
	for _, network := range out.Entities {
		if network.Name == name {
			matches = append(matches, network)
		}
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("found %d networks named %q, expected at most 1", len(matches), name)
	}
}
