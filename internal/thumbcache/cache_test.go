package thumbcache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/materialvault/materialvault/internal/vault"
)

func testItem(n int) *vault.Item {
	name := fmt.Sprintf("Mat%02d", n)
	return vault.NewItem(vault.Record{
		Path:        "/Game/Mats/" + name + "." + name,
		PackageName: "/Game/Mats/" + name,
		PackagePath: "/Game/Mats",
		Name:        name,
		Type:        vault.TypeMaterial,
	})
}

func testResolver() vault.Resolver {
	return vault.ResolverFunc(func(_ context.Context, path string) (*vault.Payload, error) {
		return &vault.Payload{Path: path, Data: []byte("swatch")}, nil
	})
}

// fakeClock drives lastAccess deterministically.
type fakeClock struct{ t time.Time }

func (f *fakeClock) tick() time.Time {
	f.t = f.t.Add(time.Second)
	return f.t
}

func newTestCache(max int) (*Cache, *fakeClock) {
	c := New(Config{MaxEntries: max, Resolver: testResolver()})
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c.now = clock.tick
	return c, clock
}

// insert applies a successful population result directly, bypassing the
// worker pool.
func insert(c *Cache, item *vault.Item, size int) {
	c.pending[item.Path] = struct{}{}
	c.apply(result{
		key:      Key{Path: item.Path, Size: size},
		artifact: &Artifact{Data: []byte("img"), Width: size, Height: size},
	})
}

func TestGetMissReturnsPlaceholder(t *testing.T) {
	c, _ := newTestCache(10)
	item := testItem(1)

	art := c.Get(item, 128)
	if art != c.DefaultArtifact() {
		t.Error("miss did not return the default placeholder")
	}
	if c.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1", c.PendingCount())
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestGetHitAfterInsert(t *testing.T) {
	c, _ := newTestCache(10)
	item := testItem(1)

	insert(c, item, 128)

	art := c.Get(item, 128)
	if art == c.DefaultArtifact() {
		t.Fatal("hit returned the placeholder")
	}
	if string(art.Data) != "img" {
		t.Errorf("artifact data = %q", art.Data)
	}
	if c.PendingCount() != 0 {
		t.Errorf("pending = %d after insert, want 0", c.PendingCount())
	}
}

func TestRequestPopulateDedupByPath(t *testing.T) {
	c, _ := newTestCache(10)
	item := testItem(1)

	c.RequestPopulate(item, 128)
	c.RequestPopulate(item, 128)
	c.RequestPopulate(item, 256) // other size, same asset: still deduplicated

	if c.PendingCount() != 1 {
		t.Errorf("pending = %d, want 1", c.PendingCount())
	}
	if got := len(c.jobs); got != 1 {
		t.Errorf("queued jobs = %d, want 1", got)
	}
}

func TestFailedPopulationClearsPending(t *testing.T) {
	c, _ := newTestCache(10)
	item := testItem(1)

	c.pending[item.Path] = struct{}{}
	c.apply(result{key: Key{Path: item.Path, Size: 128}, err: context.DeadlineExceeded})

	if c.PendingCount() != 0 {
		t.Error("failed population left the pending marker")
	}
	if c.Len() != 0 {
		t.Error("failed population inserted an entry")
	}

	// A later request can retry.
	c.RequestPopulate(item, 128)
	if c.PendingCount() != 1 {
		t.Error("retry after failure was not scheduled")
	}
}

func TestEvictionBoundAndOrder(t *testing.T) {
	const max = 5
	c, _ := newTestCache(max)

	items := make([]*vault.Item, 8)
	for i := range items {
		items[i] = testItem(i)
		insert(c, items[i], 128)
	}

	if c.Len() != max {
		t.Fatalf("Len = %d, want %d", c.Len(), max)
	}

	// The most recently inserted entries survive.
	for i := 3; i < 8; i++ {
		if got := c.Get(items[i], 128); got == c.DefaultArtifact() {
			t.Errorf("recent entry %d was evicted", i)
		}
	}
	for i := 0; i < 3; i++ {
		c.mu.Lock()
		_, ok := c.entries[Key{Path: items[i].Path, Size: 128}]
		c.mu.Unlock()
		if ok {
			t.Errorf("oldest entry %d survived eviction", i)
		}
	}
}

func TestGetRefreshesLastAccess(t *testing.T) {
	const max = 3
	c, _ := newTestCache(max)

	items := make([]*vault.Item, 4)
	for i := 0; i < 3; i++ {
		items[i] = testItem(i)
		insert(c, items[i], 128)
	}

	// Touch the oldest entry so it outlives the next eviction.
	c.Get(items[0], 128)

	items[3] = testItem(3)
	insert(c, items[3], 128)

	c.mu.Lock()
	_, oldestSurvived := c.entries[Key{Path: items[0].Path, Size: 128}]
	_, secondSurvived := c.entries[Key{Path: items[1].Path, Size: 128}]
	c.mu.Unlock()

	if !oldestSurvived {
		t.Error("recently accessed entry was evicted")
	}
	if secondSurvived {
		t.Error("least recently accessed entry survived")
	}
}

func TestInvalidateAllSizes(t *testing.T) {
	c, _ := newTestCache(10)
	item := testItem(1)
	other := testItem(2)

	insert(c, item, 64)
	insert(c, item, 128)
	insert(c, other, 128)

	c.Invalidate(item.Path)

	if c.Len() != 1 {
		t.Errorf("Len = %d after invalidate, want 1", c.Len())
	}
	if got := c.Get(other, 128); got == c.DefaultArtifact() {
		t.Error("invalidate removed an unrelated entry")
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache(10)
	insert(c, testItem(1), 128)
	c.RequestPopulate(testItem(2), 128)

	c.Clear()

	if c.Len() != 0 || c.PendingCount() != 0 {
		t.Errorf("Clear left entries=%d pending=%d", c.Len(), c.PendingCount())
	}
}

func TestOnInsertCallback(t *testing.T) {
	var keys []Key
	c := New(Config{
		MaxEntries: 10,
		Resolver:   testResolver(),
		OnInsert:   func(k Key) { keys = append(keys, k) },
	})

	item := testItem(1)
	insert(c, item, 128)

	if len(keys) != 1 || keys[0] != (Key{Path: item.Path, Size: 128}) {
		t.Errorf("OnInsert keys = %v", keys)
	}
}

func TestWorkerEndToEnd(t *testing.T) {
	c := New(Config{MaxEntries: 10, Workers: 1, Resolver: testResolver()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	defer c.Stop()

	item := testItem(1)
	c.RequestPopulate(item, 64)

	deadline := time.After(5 * time.Second)
	for c.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("population never completed")
		case <-time.After(10 * time.Millisecond):
		}
	}

	art := c.Get(item, 64)
	if art == c.DefaultArtifact() {
		t.Fatal("populated entry not returned")
	}
	if art.Width != 64 || art.Height != 64 {
		t.Errorf("artifact size = %dx%d, want 64x64", art.Width, art.Height)
	}
}
