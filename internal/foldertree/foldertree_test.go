package foldertree

import (
	"slices"
	"testing"

	"github.com/materialvault/materialvault/internal/vault"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/Game/Mats", "/Game/Mats"},
		{"/Game", "/Game"},
		{"/Engine/Content", "/Engine/Content"},
		{"/MyPlugin/Stuff", "/Plugins/MyPlugin/Stuff"},
		{"/WaterSystem", "/Plugins/WaterSystem"},
		{"/Script/Core", "/Engine/Script/Core"},
		{"/Temp/Autosave", "/Engine/Temp/Autosave"},
		{"/Memory/Scratch", "/Engine/Memory/Scratch"},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewTreeBranches(t *testing.T) {
	tree := NewTree()

	root := tree.Root()
	if root.Path != RootPath || len(root.Children) != 3 {
		t.Fatalf("root has %d children, want 3", len(root.Children))
	}
	for _, p := range []string{ContentRoot, EngineRoot, PluginsRoot} {
		n, ok := tree.Find(p)
		if !ok {
			t.Fatalf("branch %s missing", p)
		}
		if n.Parent != RootPath {
			t.Errorf("branch %s parent = %q, want %q", p, n.Parent, RootPath)
		}
	}
	if tree.Len() != 4 {
		t.Errorf("Len = %d, want 4", tree.Len())
	}
}

func TestBuildShape(t *testing.T) {
	items := []*vault.Item{
		item("Rock", "/Game/Mats"),
		item("Gravel", "/Game/Mats"),
		item("Wood", "/MyPlugin/Mats"),
		item("Default", "/Script/Engine"),
		item("Ghost", ""),
	}

	tree := Build(slices.Values(items))

	mats, ok := tree.Find("/Game/Mats")
	if !ok {
		t.Fatal("/Game/Mats not created")
	}
	if len(mats.Items) != 2 {
		t.Errorf("/Game/Mats items = %v", mats.Items)
	}
	if mats.Parent != "/Game" {
		t.Errorf("/Game/Mats parent = %q", mats.Parent)
	}

	plug, ok := tree.Find("/Plugins/MyPlugin/Mats")
	if !ok {
		t.Fatal("plugin folder not rewritten under /Plugins")
	}
	if len(plug.Items) != 1 || plug.Items[0] != "/MyPlugin/Mats/Wood.Wood" {
		t.Errorf("plugin folder items = %v", plug.Items)
	}

	eng, ok := tree.Find("/Engine/Script/Engine")
	if !ok {
		t.Fatal("script folder not rewritten under /Engine")
	}
	if len(eng.Items) != 1 {
		t.Errorf("engine folder items = %v", eng.Items)
	}

	// The empty package path attaches nowhere.
	var total int
	tree.Walk(func(n *Node) { total += len(n.Items) })
	if total != 4 {
		t.Errorf("attached items = %d, want 4", total)
	}
}

func TestGetOrCreateParentChain(t *testing.T) {
	tree := NewTree()
	tree.Attach(item("Deep", "/Game/A/B/C"))

	for _, p := range []string{"/Game/A", "/Game/A/B", "/Game/A/B/C"} {
		if _, ok := tree.Find(p); !ok {
			t.Errorf("intermediate folder %s missing", p)
		}
	}

	c, _ := tree.Find("/Game/A/B/C")
	b, _ := tree.Find("/Game/A/B")
	if c.Parent != "/Game/A/B" {
		t.Errorf("parent of C = %q", c.Parent)
	}
	if len(b.Children) != 1 || b.Children[0] != c {
		t.Error("child link from B to C missing")
	}
}

func item(name, pkgPath string) *vault.Item {
	pkg := pkgPath + "/" + name
	return vault.NewItem(vault.Record{
		Path:        pkg + "." + name,
		PackageName: pkg,
		PackagePath: pkgPath,
		Name:        name,
		Type:        vault.TypeMaterial,
	})
}
