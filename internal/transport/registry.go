// internal/transport/registry.go
package transport

import (
	"context"
	"fmt"
	"sync"
)

// Registry maps peer addresses to the network location serving them.
type Registry interface {
	// Claim binds id to addr, failing with ErrAddressInUse if id is taken.
	Claim(ctx context.Context, id, addr string) error
	// Resolve returns the location for id or ErrPeerNotFound.
	Resolve(ctx context.Context, id string) (string, error)
	Release(ctx context.Context, id string) error
}

// MemoryRegistry keeps claims in process. Useful for tests and for several
// peers sharing one binary.
type MemoryRegistry struct {
	mu    sync.Mutex
	peers map[string]string
}

// NewMemoryRegistry returns an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{peers: make(map[string]string)}
}

func (r *MemoryRegistry) Claim(_ context.Context, id, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.peers[id]; ok {
		return fmt.Errorf("%w: %s", ErrAddressInUse, id)
	}
	r.peers[id] = addr
	return nil
}

func (r *MemoryRegistry) Resolve(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr, ok := r.peers[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrPeerNotFound, id)
	}
	return addr, nil
}

func (r *MemoryRegistry) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, id)
	return nil
}

// StaticRegistry resolves every id to one fixed location. Claims always
// succeed, so address conflicts go undetected; meant for LAN play where the
// joiner is told the host's address directly.
type StaticRegistry struct {
	Addr string
}

func (r StaticRegistry) Claim(context.Context, string, string) error { return nil }

func (r StaticRegistry) Resolve(_ context.Context, id string) (string, error) {
	if r.Addr == "" {
		return "", fmt.Errorf("%w: %s (no host address configured)", ErrPeerNotFound, id)
	}
	return r.Addr, nil
}

func (r StaticRegistry) Release(context.Context, string) error { return nil }
