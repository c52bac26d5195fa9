// Package image resolves the base OS image to a platform image identifier,
// uploading it into the target storage container when absent.
package image

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/kubeprism/kubeprism/internal/config"
	"github.com/kubeprism/kubeprism/internal/platform/prism"
	"github.com/kubeprism/kubeprism/internal/util/retry"
)

// NotFoundError means the image is absent and no source URL is configured,
// so there is nothing to upload. Fatal before any VM work starts.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("image %q not found and no source url configured", e.Name)
}

// Resolver resolves image names to platform identifiers. Resolutions are
// cached for the run, so a second resolve of the same name is a no-op.
type Resolver struct {
	platform prism.Platform
	timeouts *config.Timeouts

	mu    sync.Mutex
	cache map[string]*prism.Image
}

// NewResolver creates a resolver backed by the given platform client.
func NewResolver(platform prism.Platform, timeouts *config.Timeouts) *Resolver {
	return &Resolver{
		platform: platform,
		timeouts: timeouts,
		cache:    make(map[string]*prism.Image),
	}
}

// Resolve returns the platform image for the spec, uploading it from the
// configured source if it does not exist yet.
func (r *Resolver) Resolve(ctx context.Context, spec config.ImageSpec) (*prism.Image, error) {
	r.mu.Lock()
	if cached, ok := r.cache[spec.Name]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	found, err := r.platform.FindImage(ctx, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up image %q: %w", spec.Name, err)
	}
	if found == nil {
		if spec.SourceURL == "" {
			return nil, &NotFoundError{Name: spec.Name}
		}
		found, err = r.upload(ctx, spec)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.cache[spec.Name] = found
	r.mu.Unlock()
	return found, nil
}

// upload registers the image from its source URL and waits for the upload
// task, then looks the image up again to learn its identifiers.
func (r *Resolver) upload(ctx context.Context, spec config.ImageSpec) (*prism.Image, error) {
	container, err := r.platform.FindStorageContainer(ctx, spec.StorageContainer)
	if err != nil {
		return nil, fmt.Errorf("failed to look up storage container %q: %w", spec.StorageContainer, err)
	}
	if container == nil {
		return nil, fmt.Errorf("storage container %q not found", spec.StorageContainer)
	}

	log.Printf("[Image] Uploading %s from %s into container %s",
		spec.Name, spec.SourceURL, spec.StorageContainer)

	handle, err := r.platform.UploadImage(ctx, prism.ImageUploadOpts{
		Name:             spec.Name,
		StorageContainer: spec.StorageContainer,
		SourceURL:        spec.SourceURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit image upload: %w", err)
	}

	if _, err := prism.WaitTask(ctx, r.platform, handle, prism.WaitOpts{
		Interval: r.timeouts.PollInterval,
		Timeout:  r.timeouts.Task,
	}); err != nil {
		return nil, fmt.Errorf("image upload did not complete: %w", err)
	}

	// The image list can lag the upload task briefly.
	var found *prism.Image
	err = retry.Do(ctx, func() error {
		var lookupErr error
		found, lookupErr = r.platform.FindImage(ctx, spec.Name)
		if lookupErr != nil {
			return lookupErr
		}
		if found == nil {
			return fmt.Errorf("image %q not visible yet", spec.Name)
		}
		return nil
	},
		retry.WithAttempts(r.timeouts.RetryAttempts),
		retry.WithInitialDelay(r.timeouts.RetryInitialDelay))
	if err != nil {
		return nil, fmt.Errorf("uploaded image %q did not appear: %w", spec.Name, err)
	}

	return found, nil
}
