// Package vault contains the shared data types of the asset browser core.
package vault

import (
	"path"
	"strings"
	"time"
)

// Asset type names tracked by the browser.
const (
	TypeMaterial                 = "Material"
	TypeMaterialInstance         = "MaterialInstance"
	TypeMaterialInstanceConstant = "MaterialInstanceConstant"
)

// TrackedType reports whether an asset type belongs to the tracked set.
func TrackedType(assetType string) bool {
	switch assetType {
	case TypeMaterial, TypeMaterialInstance, TypeMaterialInstanceConstant:
		return true
	}
	return false
}

// Record is the asset-identity record carried by lifecycle events.
type Record struct {
	// Path uniquely identifies the asset, e.g. "/Game/Mats/Rock.Rock".
	Path string
	// PackageName is the asset's package, e.g. "/Game/Mats/Rock".
	PackageName string
	// PackagePath is the package directory used for folder classification,
	// e.g. "/Game/Mats".
	PackagePath string
	// Name is the asset's base name, e.g. "Rock".
	Name string
	// Type is the declared asset type name.
	Type string
}

// Item is one indexed asset. Items are owned exclusively by the asset index;
// other components refer to them by path.
type Item struct {
	Record

	DisplayName string
	Ref         *SoftReference
	Metadata    Metadata

	// TextureDependencies holds dependent asset paths. Empty until
	// explicitly computed.
	TextureDependencies []string
}

// NewItem builds an item from an identity record.
func NewItem(rec Record) *Item {
	it := &Item{
		Record:      rec,
		DisplayName: rec.Name,
		Ref:         NewSoftReference(rec.Path),
	}
	it.Metadata.MaterialName = rec.Name
	it.Metadata.Location = rec.PackageName
	return it
}

// Refresh updates identity fields in place from a newer record.
// Metadata is left untouched.
func (it *Item) Refresh(rec Record) {
	it.Record = rec
	it.DisplayName = rec.Name
	it.Ref = NewSoftReference(rec.Path)
}

// ViewMode selects the presentation layout.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// SortMode selects the ordering applied to query results.
type SortMode string

const (
	SortName         SortMode = "name"
	SortDateModified SortMode = "date"
	SortSize         SortMode = "size"
	SortType         SortMode = "type"
)

// Settings is the browser settings struct broadcast on change.
type Settings struct {
	ViewMode        ViewMode `toml:"view_mode"`
	SortMode        SortMode `toml:"sort_mode"`
	ThumbnailSize   int      `toml:"thumbnail_size"`
	ShowMetadata    bool     `toml:"show_metadata"`
	ShowFolderTree  bool     `toml:"show_folder_tree"`
	RootFolder      string   `toml:"root_folder"`
	AutoRefresh     bool     `toml:"auto_refresh"`
	RefreshInterval float64  `toml:"refresh_interval"`
}

// DefaultSettings returns the settings used before any are applied.
func DefaultSettings() Settings {
	return Settings{
		ViewMode:        ViewGrid,
		SortMode:        SortName,
		ThumbnailSize:   128,
		ShowMetadata:    true,
		ShowFolderTree:  true,
		RootFolder:      "/Game",
		AutoRefresh:     true,
		RefreshInterval: 5.0,
	}
}

// Metadata is the per-asset user-editable record persisted to a sidecar file.
type Metadata struct {
	MaterialName string
	Location     string
	Author       string
	LastModified time.Time
	Notes        string
	Category     string
	Tags         []string
}

// Touch updates the last-modified timestamp.
func (m *Metadata) Touch() {
	m.LastModified = time.Now()
}

// HasTag reports whether the tag is present.
func (m *Metadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag unless it is already present or empty.
// Returns true if the tag list changed.
func (m *Metadata) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || m.HasTag(tag) {
		return false
	}
	m.Tags = append(m.Tags, tag)
	m.Touch()
	return true
}

// RemoveTag removes every occurrence of the tag.
// Returns true if the tag list changed.
func (m *Metadata) RemoveTag(tag string) bool {
	kept := m.Tags[:0]
	removed := false
	for _, t := range m.Tags {
		if t == tag {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if removed {
		m.Tags = kept
		m.Touch()
	}
	return removed
}

// BaseName returns the last segment of an asset or package path.
func BaseName(p string) string {
	name := path.Base(p)
	if name == "/" || name == "." {
		return ""
	}
	return name
}
