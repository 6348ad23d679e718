package blob

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/pkg/metrics"
)

// Scheme prefixes handles of blobs that are not served over HTTP
const Scheme = "blob:reportctl/"

// BlobPath is the route prefix under which the blob server exposes payloads
const BlobPath = "/blobs/"

// Registry is an in-process domain.ResourceAllocator. Payloads stay in
// memory until their handle is released.
type Registry struct {
	mu      sync.RWMutex
	baseURL string
	blobs   map[string]entity.Blob
	handles map[entity.ResourceHandle]string
}

// NewRegistry creates a registry. With a non-empty baseURL (the blob server
// address, e.g. http://127.0.0.1:17321) handles are URLs under /blobs/;
// otherwise they use the blob:reportctl/ scheme.
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimRight(baseURL, "/"),
		blobs:   make(map[string]entity.Blob),
		handles: make(map[entity.ResourceHandle]string),
	}
}

// Allocate stores a copy of blob and returns its handle
func (r *Registry) Allocate(ctx context.Context, blob entity.Blob) (entity.ResourceHandle, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	blob.Data = append([]byte(nil), blob.Data...)
	if blob.ContentType == "" {
		blob.ContentType = "application/octet-stream"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	handle := r.handleFor(id)
	r.blobs[id] = blob
	r.handles[handle] = id
	metrics.BlobAllocated()
	return handle, nil
}

// Release frees handle. Unknown or already released handles yield a
// NOT_FOUND error.
func (r *Registry) Release(_ context.Context, handle entity.ResourceHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.handles[handle]
	if !ok {
		return domain.NewNotFoundError("blob", string(handle))
	}
	delete(r.handles, handle)
	delete(r.blobs, id)
	metrics.BlobReleased()
	return nil
}

// Open returns the payload stored under id
func (r *Registry) Open(id string) (entity.Blob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blob, ok := r.blobs[id]
	if !ok {
		return entity.Blob{}, domain.NewNotFoundError("blob", id)
	}
	return blob, nil
}

// OpenHandle returns the payload referenced by handle
func (r *Registry) OpenHandle(handle entity.ResourceHandle) (entity.Blob, error) {
	r.mu.RLock()
	id, ok := r.handles[handle]
	r.mu.RUnlock()
	if !ok {
		return entity.Blob{}, domain.NewNotFoundError("blob", string(handle))
	}
	return r.Open(id)
}

// Len returns the number of live blobs
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

func (r *Registry) handleFor(id string) entity.ResourceHandle {
	if r.baseURL == "" {
		return entity.ResourceHandle(Scheme + id)
	}
	return entity.ResourceHandle(r.baseURL + BlobPath + id)
}
