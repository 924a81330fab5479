// Package thumbcache manages a bounded cache of rendered material thumbnails
// with asynchronous population.
//
// Resolution and rendering run on background workers; results are handed
// back over a channel drained by a single owner goroutine, which is the only
// writer applying inserts and evictions.
package thumbcache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/metrics"
	"github.com/materialvault/materialvault/internal/vault"
)

// DefaultMaxEntries bounds the cache when no maximum is configured.
const DefaultMaxEntries = 1000

// Key identifies one cached artifact: an asset path at a thumbnail size.
type Key struct {
	Path string
	Size int
}

type entry struct {
	key        Key
	artifact   *Artifact
	lastAccess time.Time
}

type job struct {
	key Key
	ref *vault.SoftReference
}

type result struct {
	key      Key
	artifact *Artifact
	err      error
}

// Config holds cache construction parameters.
type Config struct {
	MaxEntries int
	Workers    int
	Resolver   vault.Resolver
	Renderer   Renderer
	// OnInsert is invoked after an artifact lands in the cache, outside the
	// cache lock. Used to trigger presentation refreshes.
	OnInsert func(Key)
}

// Cache is the bounded thumbnail cache.
type Cache struct {
	maxEntries int
	workers    int
	resolver   vault.Resolver
	renderer   Renderer
	onInsert   func(Key)

	mu      sync.Mutex
	entries map[Key]*entry
	// pending tracks in-flight population by asset path only; a second
	// request for any size of the same asset is a no-op.
	pending map[string]struct{}

	jobs    chan job
	results chan result
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	defaultArtifact *Artifact
	errorArtifact   *Artifact

	now func() time.Time
}

// New creates a cache. Placeholder artifacts are rendered eagerly so Get can
// always return something without blocking.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NewSwatchRenderer()
	}
	return &Cache{
		maxEntries:      cfg.MaxEntries,
		workers:         cfg.Workers,
		resolver:        cfg.Resolver,
		renderer:        cfg.Renderer,
		onInsert:        cfg.OnInsert,
		entries:         make(map[Key]*entry),
		pending:         make(map[string]struct{}),
		jobs:            make(chan job, 256),
		results:         make(chan result, 256),
		defaultArtifact: placeholderArtifact(placeholderDefault),
		errorArtifact:   placeholderArtifact(placeholderError),
		now:             time.Now,
	}
}

// Start launches the population workers and the owner loop.
func (c *Cache) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx)
	}
	c.wg.Add(1)
	go c.ownerLoop(ctx)
	logging.Info("thumbnail cache started",
		zap.Int("workers", c.workers), zap.Int("max_entries", c.maxEntries))
}

// Stop cancels in-flight work and waits for workers to finish.
func (c *Cache) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	logging.Info("thumbnail cache stopped")
}

// Get returns the cached artifact for the item at the given size, refreshing
// its last-access time. On a miss it schedules population and returns the
// default placeholder immediately; the caller never blocks.
func (c *Cache) Get(item *vault.Item, size int) *Artifact {
	if item == nil {
		return c.errorArtifact
	}
	key := Key{Path: item.Path, Size: size}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.lastAccess = c.now()
		c.mu.Unlock()
		return e.artifact
	}
	c.mu.Unlock()

	c.RequestPopulate(item, size)
	return c.defaultArtifact
}

// RequestPopulate schedules asynchronous population for the item unless a
// population for the same asset path is already in flight.
func (c *Cache) RequestPopulate(item *vault.Item, size int) {
	if item == nil {
		return
	}

	c.mu.Lock()
	if _, inFlight := c.pending[item.Path]; inFlight {
		c.mu.Unlock()
		return
	}
	c.pending[item.Path] = struct{}{}
	c.mu.Unlock()

	select {
	case c.jobs <- job{key: Key{Path: item.Path, Size: size}, ref: item.Ref}:
	default:
		// Queue full: drop the request and let a later Get retry.
		c.clearPending(item.Path)
		logging.Warn("thumbnail queue full, dropping", zap.String("path", item.Path))
	}
}

// Invalidate removes every cached artifact for the asset path, across all
// sizes.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	for key := range c.entries {
		if key.Path == path {
			delete(c.entries, key)
		}
	}
	n := len(c.entries)
	c.mu.Unlock()
	metrics.SetThumbCacheEntries(n)
}

// Clear drops all entries and pending markers.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.pending = make(map[string]struct{})
	c.mu.Unlock()
	metrics.SetThumbCacheEntries(0)
}

// Len returns the number of cached artifacts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PendingCount returns the number of in-flight populations.
func (c *Cache) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// DefaultArtifact returns the placeholder shown while a thumbnail renders.
func (c *Cache) DefaultArtifact() *Artifact {
	return c.defaultArtifact
}

func (c *Cache) worker(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-c.jobs:
			c.results <- c.populate(ctx, j)
		}
	}
}

// populate resolves the soft reference and renders the artifact off the
// owner goroutine. Failures abandon the job; the pending marker is cleared
// by the owner loop either way so a later request can retry.
func (c *Cache) populate(ctx context.Context, j job) result {
	payload, err := j.ref.Resolve(ctx, c.resolver)
	if err != nil {
		logging.Debug("thumbnail resolve failed, abandoning",
			zap.String("path", j.key.Path), zap.Error(err))
		return result{key: j.key, err: err}
	}

	art, err := RenderArtifact(ctx, c.renderer, payload, j.key.Size)
	if err != nil {
		logging.Debug("thumbnail render failed, abandoning",
			zap.String("path", j.key.Path), zap.Error(err))
		return result{key: j.key, err: err}
	}
	return result{key: j.key, artifact: art}
}

// ownerLoop is the single writer applying population results to the cache.
func (c *Cache) ownerLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-c.results:
			c.apply(r)
		}
	}
}

func (c *Cache) apply(r result) {
	c.clearPending(r.key.Path)
	if r.err != nil {
		metrics.RecordThumbPopulation(false)
		return
	}

	c.mu.Lock()
	c.entries[r.key] = &entry{key: r.key, artifact: r.artifact, lastAccess: c.now()}
	evicted := c.trimLocked()
	n := len(c.entries)
	c.mu.Unlock()

	metrics.RecordThumbPopulation(true)
	metrics.SetThumbCacheEntries(n)
	if evicted > 0 {
		metrics.RecordThumbEvictions(evicted)
	}
	if c.onInsert != nil {
		c.onInsert(r.key)
	}
}

// trimLocked evicts least-recently-accessed entries until the bound holds.
// Must be called with the lock held. Returns the number of evictions.
func (c *Cache) trimLocked() int {
	excess := len(c.entries) - c.maxEntries
	if excess <= 0 {
		return 0
	}

	sorted := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		sorted = append(sorted, e)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].lastAccess.Before(sorted[j].lastAccess)
	})

	for i := 0; i < excess; i++ {
		delete(c.entries, sorted[i].key)
	}
	return excess
}

func (c *Cache) clearPending(path string) {
	c.mu.Lock()
	delete(c.pending, path)
	c.mu.Unlock()
}
