// Package category derives the flat category and tag views from the folder
// tree. The view is rebuilt on demand, never incrementally maintained.
package category

import (
	"sort"

	"go.uber.org/zap"

	"github.com/materialvault/materialvault/internal/foldertree"
	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/vault"
)

// Bucket names with fixed meaning.
const (
	// All is the synthetic union bucket containing every item.
	All = "All"
	// Uncategorized collects items whose metadata category is empty.
	Uncategorized = "Uncategorized"
)

// Node is one flat category bucket.
type Node struct {
	Name string
	// Items holds member asset paths; the bucket does not own the items.
	Items []string
}

// ItemSource looks up indexed items by path.
type ItemSource interface {
	Get(path string) (*vault.Item, bool)
}

// Saver persists item metadata.
type Saver interface {
	Save(rec vault.Record, md vault.Metadata) error
}

// Index is the category/tag view over the asset index.
type Index struct {
	items ItemSource
	saver Saver

	categories map[string]*Node
}

// New creates an empty category index.
func New(items ItemSource, saver Saver) *Index {
	return &Index{
		items:      items,
		saver:      saver,
		categories: make(map[string]*Node),
	}
}

// Rebuild recomputes every bucket by walking the folder tree transitively.
// Items reachable from several folders are counted once.
func (cx *Index) Rebuild(tree *foldertree.Tree) {
	cx.categories = make(map[string]*Node)

	all := &Node{Name: All}
	cx.categories[All] = all

	for _, item := range cx.collect(tree) {
		all.Items = append(all.Items, item.Path)

		name := item.Metadata.Category
		if name == "" {
			name = Uncategorized
		}
		bucket, ok := cx.categories[name]
		if !ok {
			bucket = &Node{Name: name}
			cx.categories[name] = bucket
		}
		bucket.Items = append(bucket.Items, item.Path)
	}
}

// Get returns a bucket by name.
func (cx *Index) Get(name string) (*Node, bool) {
	n, ok := cx.categories[name]
	return n, ok
}

// Categories returns all buckets, the All bucket first and the rest sorted
// by name.
func (cx *Index) Categories() []*Node {
	nodes := make([]*Node, 0, len(cx.categories))
	for _, n := range cx.categories {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Name == All {
			return true
		}
		if nodes[j].Name == All {
			return false
		}
		return nodes[i].Name < nodes[j].Name
	})
	return nodes
}

// Tags gathers the distinct non-empty tags across the tree's items, sorted
// lexicographically.
func (cx *Index) Tags(tree *foldertree.Tree) []string {
	set := make(map[string]struct{})
	for _, item := range cx.collect(tree) {
		for _, tag := range item.Metadata.Tags {
			if tag != "" {
				set[tag] = struct{}{}
			}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// DeleteCategory moves every member item to Uncategorized and persists each
// change. At-least-effort: a failed save is logged and the remaining items
// are still processed. The All and Uncategorized buckets cannot be deleted.
func (cx *Index) DeleteCategory(tree *foldertree.Tree, name string) int {
	if name == All || name == Uncategorized {
		return 0
	}
	bucket, ok := cx.categories[name]
	if !ok {
		return 0
	}

	moved := 0
	for _, path := range bucket.Items {
		item, ok := cx.items.Get(path)
		if !ok {
			continue
		}
		item.Metadata.Category = Uncategorized
		item.Metadata.Touch()
		if err := cx.saver.Save(item.Record, item.Metadata); err != nil {
			logging.Warn("category move not persisted",
				zap.String("path", path), zap.Error(err))
		}
		moved++
	}

	cx.Rebuild(tree)
	return moved
}

// DeleteTag removes the tag from every item that carries it, persisting each
// change. At-least-effort, like DeleteCategory.
func (cx *Index) DeleteTag(tree *foldertree.Tree, tag string) int {
	changed := 0
	for _, item := range cx.collect(tree) {
		if !item.Metadata.RemoveTag(tag) {
			continue
		}
		if err := cx.saver.Save(item.Record, item.Metadata); err != nil {
			logging.Warn("tag removal not persisted",
				zap.String("path", item.Path), zap.Error(err))
		}
		changed++
	}
	return changed
}

// collect walks the folder tree and resolves member paths to items,
// de-duplicated by path.
func (cx *Index) collect(tree *foldertree.Tree) []*vault.Item {
	if tree == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var items []*vault.Item
	tree.Walk(func(n *foldertree.Node) {
		for _, path := range n.Items {
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			if item, ok := cx.items.Get(path); ok {
				items = append(items, item)
			}
		}
	})
	return items
}
