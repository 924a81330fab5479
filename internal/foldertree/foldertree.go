// Package foldertree derives the synthetic folder hierarchy from flat asset
// package paths. The tree is rebuilt from scratch on every refresh; rebuild
// cost is linear in asset count.
package foldertree

import (
	"iter"
	"path"
	"strings"

	"github.com/materialvault/materialvault/internal/vault"
)

// Branch roots of the synthetic hierarchy.
const (
	RootPath    = "/"
	ContentRoot = "/Game"
	EngineRoot  = "/Engine"
	PluginsRoot = "/Plugins"
)

// excludedPluginNames are first path components that never denote a plugin.
var excludedPluginNames = []string{"Engine", "Game", "Script", "Temp", "Memory"}

// Node is one folder in the synthetic hierarchy. Parent links are stored as
// path keys; child nodes are owned by their parent.
type Node struct {
	Name     string
	Path     string
	Parent   string
	Children []*Node
	// Items holds member asset paths. The nodes do not own the items.
	Items []string
	// Expanded is UI state carried for the presentation layer.
	Expanded bool
}

// Tree is a folder hierarchy with nodes addressed by full path.
type Tree struct {
	root  *Node
	nodes map[string]*Node
}

// NewTree creates a tree holding only the synthetic root and its three
// fixed branches.
func NewTree() *Tree {
	t := &Tree{
		root:  &Node{Name: "Root", Path: RootPath},
		nodes: make(map[string]*Node),
	}
	t.nodes[RootPath] = t.root

	t.addChild(t.root, "Content", ContentRoot)
	t.addChild(t.root, "Engine", EngineRoot)
	t.addChild(t.root, "Plugins", PluginsRoot)

	return t
}

// Root returns the synthetic root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Find returns the node for the given folder path.
func (t *Tree) Find(folderPath string) (*Node, bool) {
	n, ok := t.nodes[folderPath]
	return n, ok
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Walk visits every node depth-first starting at the root.
func (t *Tree) Walk(visit func(*Node)) {
	var rec func(*Node)
	rec = func(n *Node) {
		visit(n)
		for _, c := range n.Children {
			rec(c)
		}
	}
	rec(t.root)
}

// Attach classifies the item's package path and appends the item's asset
// path to the matching folder node, creating parent chains on demand.
// Items with an empty package path are skipped.
func (t *Tree) Attach(item *vault.Item) {
	organized := Classify(item.PackagePath)
	if organized == "" {
		return
	}
	node := t.getOrCreate(organized)
	node.Items = append(node.Items, item.Path)
}

// Build constructs a fresh tree from the given items.
func Build(items iter.Seq[*vault.Item]) *Tree {
	t := NewTree()
	for item := range items {
		t.Attach(item)
	}
	return t
}

func (t *Tree) addChild(parent *Node, name, nodePath string) *Node {
	n := &Node{Name: name, Path: nodePath, Parent: parent.Path}
	parent.Children = append(parent.Children, n)
	t.nodes[nodePath] = n
	return n
}

// getOrCreate returns the node for the path, creating it and its parent
// chain if needed. Creation is memoized by full path.
func (t *Tree) getOrCreate(folderPath string) *Node {
	if n, ok := t.nodes[folderPath]; ok {
		return n
	}

	name := vault.BaseName(folderPath)
	if name == "" {
		name = "Root"
	}

	parentPath := path.Dir(folderPath)
	var parent *Node
	if parentPath == "" || parentPath == "." || parentPath == folderPath || parentPath == RootPath {
		parent = t.root
	} else {
		parent = t.getOrCreate(parentPath)
	}

	return t.addChild(parent, name, folderPath)
}

// Classify maps a package path onto the synthetic hierarchy. It is a pure
// function: project content and engine content keep their paths; anything
// whose first component is not a reserved name is treated as plugin content
// and rewritten under /Plugins; reserved script/temp/memory paths and paths
// mentioning "engine" are rewritten under /Engine; everything else falls
// back to /Game. Empty paths classify to "".
func Classify(packagePath string) string {
	if packagePath == "" {
		return ""
	}
	if strings.HasPrefix(packagePath, ContentRoot) {
		return packagePath
	}
	if strings.HasPrefix(packagePath, EngineRoot) {
		return packagePath
	}

	components := splitPath(packagePath)
	if len(components) > 0 && !isExcludedPluginName(components[0]) {
		return PluginsRoot + packagePath
	}

	if strings.HasPrefix(packagePath, "/Script") ||
		strings.HasPrefix(packagePath, "/Temp") ||
		strings.HasPrefix(packagePath, "/Memory") ||
		containsFold(packagePath, "Engine") {
		return EngineRoot + packagePath
	}

	return ContentRoot + packagePath
}

func splitPath(p string) []string {
	var parts []string
	for _, c := range strings.Split(p, "/") {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return parts
}

func isExcludedPluginName(name string) bool {
	for _, excluded := range excludedPluginNames {
		if strings.EqualFold(name, excluded) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
