package vault

import (
	"context"
	"fmt"
	"sync"
)

// Payload is the resolved asset content behind a soft reference.
type Payload struct {
	// Path is the asset path the payload was resolved for.
	Path string
	// FilePath is the backing file on disk, when the resolver is
	// filesystem-based.
	FilePath string
	// Data is the raw asset content.
	Data []byte
}

// Resolver loads the payload behind an asset path. Resolution may be
// expensive; callers must never assume it is free.
type Resolver interface {
	Resolve(ctx context.Context, path string) (*Payload, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, path string) (*Payload, error)

func (f ResolverFunc) Resolve(ctx context.Context, path string) (*Payload, error) {
	return f(ctx, path)
}

// SoftReference is a lazy two-state handle to an asset payload:
// unresolved (path only) or resolved (payload cached).
type SoftReference struct {
	path string

	mu      sync.Mutex
	payload *Payload
}

// NewSoftReference returns an unresolved reference to the given asset path.
func NewSoftReference(path string) *SoftReference {
	return &SoftReference{path: path}
}

// Path returns the referenced asset path.
func (r *SoftReference) Path() string {
	return r.path
}

// Resolved reports whether the payload has been loaded.
func (r *SoftReference) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payload != nil
}

// Resolve loads the payload through the resolver, caching the result.
// Subsequent calls return the cached payload without touching the resolver.
func (r *SoftReference) Resolve(ctx context.Context, res Resolver) (*Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.payload != nil {
		return r.payload, nil
	}
	if res == nil {
		return nil, fmt.Errorf("resolve %s: no resolver", r.path)
	}

	p, err := res.Resolve(ctx, r.path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", r.path, err)
	}
	r.payload = p
	return p, nil
}

// Invalidate drops the cached payload, returning the reference to the
// unresolved state.
func (r *SoftReference) Invalidate() {
	r.mu.Lock()
	r.payload = nil
	r.mu.Unlock()
}
