package index

import (
	"testing"
	"time"

	"github.com/materialvault/materialvault/internal/vault"
)

func record(name, pkgPath, assetType string) vault.Record {
	pkg := pkgPath + "/" + name
	return vault.Record{
		Path:        pkg + "." + name,
		PackageName: pkg,
		PackagePath: pkgPath,
		Name:        name,
		Type:        assetType,
	}
}

func TestUpsertLoadsMetadataOnce(t *testing.T) {
	loads := 0
	ix := New(func(item *vault.Item) {
		loads++
		item.Metadata.Category = "Stone"
	})

	rec := record("Rock", "/Game/Mats", vault.TypeMaterial)
	first := ix.Upsert(rec)
	if loads != 1 {
		t.Fatalf("loads = %d after first upsert, want 1", loads)
	}
	if first.Metadata.Category != "Stone" {
		t.Error("loader did not run on first upsert")
	}

	first.Metadata.AddTag("rough")

	second := ix.Upsert(rec)
	if second != first {
		t.Error("re-upsert created a new item")
	}
	if loads != 1 {
		t.Errorf("loads = %d after re-upsert, want 1", loads)
	}
	if !second.Metadata.HasTag("rough") || second.Metadata.Category != "Stone" {
		t.Error("re-upsert lost metadata")
	}
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}
}

func TestRemoveIdempotent(t *testing.T) {
	ix := New(nil)
	ix.Upsert(record("Rock", "/Game/Mats", vault.TypeMaterial))

	ix.Remove("/Game/Mats/Rock.Rock")
	ix.Remove("/Game/Mats/Rock.Rock")
	ix.Remove("/Game/Never/Was.Was")

	if ix.Len() != 0 {
		t.Errorf("Len = %d, want 0", ix.Len())
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	ix := New(nil)
	ix.Upsert(record("BrickWall", "/Game/Materials/Walls", vault.TypeMaterial))
	ix.Upsert(record("WoodFloor", "/Game/Materials/Floors", vault.TypeMaterial))
	ix.Upsert(record("Concrete", "/Game/Materials/Walls", vault.TypeMaterial))

	got := ix.Search("BRICK", vault.SortName)
	if len(got) != 1 || got[0].DisplayName != "BrickWall" {
		t.Fatalf("Search(BRICK) = %v", names(got))
	}

	// Package paths match too.
	got = ix.Search("walls", vault.SortName)
	if len(got) != 2 {
		t.Fatalf("Search(walls) = %v, want 2 items", names(got))
	}
	if got[0].DisplayName != "BrickWall" || got[1].DisplayName != "Concrete" {
		t.Errorf("Search(walls) order = %v", names(got))
	}

	if got := ix.Search("", vault.SortName); got != nil {
		t.Errorf("Search(empty) = %v, want nil", names(got))
	}
	if got := ix.Search("granite", vault.SortName); len(got) != 0 {
		t.Errorf("Search(granite) = %v, want none", names(got))
	}
}

func TestFilterByTagExact(t *testing.T) {
	ix := New(nil)
	a := ix.Upsert(record("Rock", "/Game/Mats", vault.TypeMaterial))
	b := ix.Upsert(record("Sand", "/Game/Mats", vault.TypeMaterial))
	ix.Upsert(record("Wood", "/Game/Mats", vault.TypeMaterial))

	a.Metadata.AddTag("rough")
	b.Metadata.AddTag("roughness")

	got := ix.FilterByTag("rough", vault.SortName)
	if len(got) != 1 || got[0].DisplayName != "Rock" {
		t.Errorf("FilterByTag(rough) = %v, want [Rock]", names(got))
	}
}

func TestSortModes(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	ix := New(nil)
	wood := ix.Upsert(record("Wood", "/Game/Mats", vault.TypeMaterialInstance))
	rock := ix.Upsert(record("Rock", "/Game/Mats", vault.TypeMaterial))
	wood.Metadata.LastModified = newer
	rock.Metadata.LastModified = older

	items := func() []*vault.Item {
		var out []*vault.Item
		for item := range ix.All() {
			out = append(out, item)
		}
		return out
	}

	byName := items()
	Sort(byName, vault.SortName)
	if byName[0].DisplayName != "Rock" {
		t.Errorf("SortName order = %v", names(byName))
	}

	byDate := items()
	Sort(byDate, vault.SortDateModified)
	if byDate[0].DisplayName != "Wood" {
		t.Errorf("SortDateModified order = %v, want newest first", names(byDate))
	}

	byType := items()
	Sort(byType, vault.SortType)
	if byType[0].Type != vault.TypeMaterial {
		t.Errorf("SortType order = %v", names(byType))
	}

	// Unknown modes leave the slice untouched.
	fixed := []*vault.Item{wood, rock}
	Sort(fixed, vault.SortSize)
	if fixed[0] != wood || fixed[1] != rock {
		t.Error("SortSize reordered the slice")
	}
}

func names(items []*vault.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.DisplayName
	}
	return out
}
