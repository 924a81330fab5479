package vault

import (
	"testing"
	"time"
)

func rockRecord() Record {
	return Record{
		Path:        "/Game/Mats/Rock.Rock",
		PackageName: "/Game/Mats/Rock",
		PackagePath: "/Game/Mats",
		Name:        "Rock",
		Type:        TypeMaterial,
	}
}

func TestTrackedType(t *testing.T) {
	for _, tt := range []string{TypeMaterial, TypeMaterialInstance, TypeMaterialInstanceConstant} {
		if !TrackedType(tt) {
			t.Errorf("TrackedType(%q) = false", tt)
		}
	}
	if TrackedType("Texture2D") {
		t.Error("TrackedType(Texture2D) = true")
	}
	if TrackedType("") {
		t.Error("TrackedType(empty) = true")
	}
}

func TestNewItemDefaults(t *testing.T) {
	it := NewItem(rockRecord())

	if it.DisplayName != "Rock" {
		t.Errorf("DisplayName = %q, want Rock", it.DisplayName)
	}
	if it.Ref == nil || it.Ref.Path() != "/Game/Mats/Rock.Rock" {
		t.Error("soft reference not set to asset path")
	}
	if it.Ref.Resolved() {
		t.Error("fresh soft reference reports resolved")
	}
	if it.Metadata.MaterialName != "Rock" {
		t.Errorf("Metadata.MaterialName = %q, want Rock", it.Metadata.MaterialName)
	}
	if it.Metadata.Location != "/Game/Mats/Rock" {
		t.Errorf("Metadata.Location = %q", it.Metadata.Location)
	}
}

func TestItemRefreshKeepsMetadata(t *testing.T) {
	it := NewItem(rockRecord())
	it.Metadata.Category = "Stone"
	it.Metadata.AddTag("rough")

	rec := rockRecord()
	rec.Path = "/Game/Mats/Rock2.Rock2"
	rec.Name = "Rock2"
	it.Refresh(rec)

	if it.DisplayName != "Rock2" {
		t.Errorf("DisplayName = %q, want Rock2", it.DisplayName)
	}
	if it.Metadata.Category != "Stone" || !it.Metadata.HasTag("rough") {
		t.Error("refresh clobbered metadata")
	}
	if it.Ref.Path() != "/Game/Mats/Rock2.Rock2" {
		t.Error("refresh did not update the soft reference")
	}
}

func TestAddTag(t *testing.T) {
	var md Metadata

	if !md.AddTag("rough") {
		t.Fatal("adding a new tag returned false")
	}
	if md.AddTag("rough") {
		t.Error("adding a duplicate tag returned true")
	}
	if !md.AddTag("  stone  ") {
		t.Fatal("adding a padded tag returned false")
	}
	if md.AddTag("stone") {
		t.Error("duplicate of trimmed tag returned true")
	}
	if md.AddTag("   ") {
		t.Error("whitespace-only tag returned true")
	}

	if len(md.Tags) != 2 || md.Tags[0] != "rough" || md.Tags[1] != "stone" {
		t.Errorf("Tags = %v, want [rough stone]", md.Tags)
	}
}

func TestAddTagTouches(t *testing.T) {
	var md Metadata
	before := md.LastModified

	md.AddTag("rough")
	if !md.LastModified.After(before) {
		t.Error("AddTag did not update LastModified")
	}

	stamp := md.LastModified
	time.Sleep(time.Millisecond)
	md.AddTag("rough")
	if !md.LastModified.Equal(stamp) {
		t.Error("no-op AddTag updated LastModified")
	}
}

func TestRemoveTag(t *testing.T) {
	md := Metadata{Tags: []string{"a", "b", "a"}}

	if !md.RemoveTag("a") {
		t.Fatal("removing an existing tag returned false")
	}
	if len(md.Tags) != 1 || md.Tags[0] != "b" {
		t.Errorf("Tags = %v, want [b]", md.Tags)
	}
	if md.RemoveTag("a") {
		t.Error("removing an absent tag returned true")
	}
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"/Game/Mats/Rock": "Rock",
		"/Game":           "Game",
		"/":               "",
		"":                "",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
