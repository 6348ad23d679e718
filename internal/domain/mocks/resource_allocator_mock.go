package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

// MockResourceAllocator is a mock implementation of domain.ResourceAllocator.
// It hands out blob:mock/N handles and counts releases per handle.
type MockResourceAllocator struct {
	AllocateFunc func(ctx context.Context, blob entity.Blob) (entity.ResourceHandle, error)
	ReleaseFunc  func(ctx context.Context, handle entity.ResourceHandle) error

	mu        sync.Mutex
	next      int
	allocated map[entity.ResourceHandle]entity.Blob
	releases  map[entity.ResourceHandle]int
}

// Allocate mocks the Allocate method
func (m *MockResourceAllocator) Allocate(ctx context.Context, blob entity.Blob) (entity.ResourceHandle, error) {
	if m.AllocateFunc != nil {
		return m.AllocateFunc(ctx, blob)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.next++
	handle := entity.ResourceHandle(fmt.Sprintf("blob:mock/%d", m.next))
	m.allocated[handle] = blob
	return handle, nil
}

// Release mocks the Release method. Every call is counted, including
// releases of unknown handles, so double releases stay visible.
func (m *MockResourceAllocator) Release(ctx context.Context, handle entity.ResourceHandle) error {
	m.mu.Lock()
	m.init()
	m.releases[handle]++
	m.mu.Unlock()

	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, handle)
	}
	if m.ReleaseCount(handle) > 1 {
		return domain.NewNotFoundError("blob", string(handle))
	}
	return nil
}

// ReleaseCount returns how many times handle was released
func (m *MockResourceAllocator) ReleaseCount(handle entity.ResourceHandle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases[handle]
}

// Allocated returns every handle handed out so far
func (m *MockResourceAllocator) Allocated() []entity.ResourceHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.ResourceHandle, 0, len(m.allocated))
	for h := range m.allocated {
		out = append(out, h)
	}
	return out
}

// Live returns the number of allocated handles that were never released
func (m *MockResourceAllocator) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	live := 0
	for h := range m.allocated {
		if m.releases[h] == 0 {
			live++
		}
	}
	return live
}

func (m *MockResourceAllocator) init() {
	if m.allocated == nil {
		m.allocated = make(map[entity.ResourceHandle]entity.Blob)
	}
	if m.releases == nil {
		m.releases = make(map[entity.ResourceHandle]int)
	}
}
