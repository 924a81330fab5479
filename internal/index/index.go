// Package index maintains the in-memory asset index keyed by asset path.
package index

import (
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/materialvault/materialvault/internal/vault"
)

// MetadataLoader populates an item's metadata when it is first indexed.
type MetadataLoader func(item *vault.Item)

// Index maps asset paths to item records. Items are owned by the index;
// callers hold paths and look items up on demand.
type Index struct {
	mu       sync.RWMutex
	items    map[string]*vault.Item
	loadMeta MetadataLoader
}

// New creates an empty index. loadMeta may be nil.
func New(loadMeta MetadataLoader) *Index {
	return &Index{
		items:    make(map[string]*vault.Item),
		loadMeta: loadMeta,
	}
}

// Upsert inserts a new item for the record's path or refreshes the existing
// one in place. Metadata is loaded only when the item is first created.
func (ix *Index) Upsert(rec vault.Record) *vault.Item {
	ix.mu.Lock()
	item, ok := ix.items[rec.Path]
	if ok {
		item.Refresh(rec)
		ix.mu.Unlock()
		return item
	}
	item = vault.NewItem(rec)
	ix.items[rec.Path] = item
	ix.mu.Unlock()

	if ix.loadMeta != nil {
		ix.loadMeta(item)
	}
	return item
}

// Remove deletes the item for the path. No-op if absent.
func (ix *Index) Remove(path string) {
	ix.mu.Lock()
	delete(ix.items, path)
	ix.mu.Unlock()
}

// Get returns the item for the path.
func (ix *Index) Get(path string) (*vault.Item, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	item, ok := ix.items[path]
	return item, ok
}

// Len returns the number of indexed items.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.items)
}

// All produces a sequence over all items. Iteration order is unspecified and
// the sequence is not a snapshot against concurrent mutation.
func (ix *Index) All() iter.Seq[*vault.Item] {
	return func(yield func(*vault.Item) bool) {
		ix.mu.RLock()
		items := make([]*vault.Item, 0, len(ix.items))
		for _, item := range ix.items {
			items = append(items, item)
		}
		ix.mu.RUnlock()

		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Clear drops all items.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.items = make(map[string]*vault.Item)
	ix.mu.Unlock()
}

// Search returns items whose display name or package path contains the term,
// case-insensitively, sorted by the given mode. An empty term matches nothing.
func (ix *Index) Search(term string, mode vault.SortMode) []*vault.Item {
	if term == "" {
		return nil
	}
	lower := strings.ToLower(term)

	var results []*vault.Item
	for item := range ix.All() {
		name := strings.ToLower(item.DisplayName)
		pkg := strings.ToLower(item.PackagePath)
		if strings.Contains(name, lower) || strings.Contains(pkg, lower) {
			results = append(results, item)
		}
	}

	Sort(results, mode)
	return results
}

// FilterByTag returns items whose tag list contains the exact tag,
// sorted by the given mode.
func (ix *Index) FilterByTag(tag string, mode vault.SortMode) []*vault.Item {
	var results []*vault.Item
	for item := range ix.All() {
		if item.Metadata.HasTag(tag) {
			results = append(results, item)
		}
	}

	Sort(results, mode)
	return results
}

// Sort orders items by the given mode: display name ascending, last-modified
// descending, or asset type name ascending. Other modes leave the slice as is.
func Sort(items []*vault.Item, mode vault.SortMode) {
	switch mode {
	case vault.SortName:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DisplayName < items[j].DisplayName
		})
	case vault.SortDateModified:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Metadata.LastModified.After(items[j].Metadata.LastModified)
		})
	case vault.SortType:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Type < items[j].Type
		})
	}
}
